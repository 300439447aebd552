package web

import (
	"encoding/json"
	"net/http"
)

// SpendingChart is the payload for the spending chart API: six months
// of income/expense/net series, oldest first.
type SpendingChart struct {
	Labels   []string  `json:"labels"`
	Income   []float64 `json:"income"`
	Expenses []float64 `json:"expenses"`
	Net      []float64 `json:"net"`
}

// handleAPISummary serves the current month's summary as JSON. A month
// query parameter (YYYY-MM) selects a different month.
func (s *WebServer) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.Summary(r.URL.Query().Get("month"))
	if err != nil {
		s.serverError(w, "load summary", err)
		return
	}
	s.writeJSON(w, summary)
}

// handleAPIBudgetAlerts serves the current month's budget alerts.
func (s *WebServer) handleAPIBudgetAlerts(w http.ResponseWriter, r *http.Request) {
	report, err := s.store.BudgetStatus(r.URL.Query().Get("month"))
	if err != nil {
		s.serverError(w, "load budget status", err)
		return
	}
	s.writeJSON(w, report.Alerts)
}

// handleAPISpendingChart serves the six-month income/expense series.
func (s *WebServer) handleAPISpendingChart(w http.ResponseWriter, r *http.Request) {
	chart := SpendingChart{
		Labels:   []string{},
		Income:   []float64{},
		Expenses: []float64{},
		Net:      []float64{},
	}

	now := s.now()
	for i := 5; i >= 0; i-- {
		month := now.AddDate(0, -i, 0)
		summary, err := s.store.Summary(month.Format("2006-01"))
		if err != nil {
			s.serverError(w, "load monthly summary", err)
			return
		}
		chart.Labels = append(chart.Labels, month.Format("Jan 2006"))
		chart.Income = append(chart.Income, summary.TotalIncome)
		chart.Expenses = append(chart.Expenses, summary.TotalExpenses)
		chart.Net = append(chart.Net, summary.NetIncome)
	}

	s.writeJSON(w, chart)
}

func (s *WebServer) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response failed", "error", err)
	}
}
