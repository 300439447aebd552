package web

import (
	"net/http"
	"strconv"

	"github.com/dkoh12/agenticai/internal/events"
	"github.com/dkoh12/agenticai/internal/finance"
)

// DashboardData is the template context for the dashboard page.
type DashboardData struct {
	ActiveNav string
	Summary   *finance.Summary
	Recent    []finance.Transaction
	Alerts    []finance.Alert
	Goals     []finance.Goal
}

// handleDashboard renders the overview page at "/". Only exact "/"
// requests get the dashboard; all other paths return 404.
func (s *WebServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	summary, err := s.store.Summary("")
	if err != nil {
		s.serverError(w, "load summary", err)
		return
	}
	recent, err := s.store.Transactions(finance.TransactionFilter{Limit: 5})
	if err != nil {
		s.serverError(w, "load transactions", err)
		return
	}
	report, err := s.store.BudgetStatus("")
	if err != nil {
		s.serverError(w, "load budget status", err)
		return
	}
	goals, err := s.store.Goals()
	if err != nil {
		s.serverError(w, "load goals", err)
		return
	}

	s.render(w, r, "dashboard.html", DashboardData{
		ActiveNav: "dashboard",
		Summary:   summary,
		Recent:    recent,
		Alerts:    report.Alerts,
		Goals:     goals,
	})
}

// TransactionsData is the template context for the transactions page.
type TransactionsData struct {
	ActiveNav    string
	Transactions []finance.Transaction
	Categories   []finance.Category
	Filter       string
}

// handleTransactions renders the transaction list, optionally filtered
// by the category query parameter.
func (s *WebServer) handleTransactions(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("category")
	txns, err := s.store.Transactions(finance.TransactionFilter{Limit: 50, Category: filter})
	if err != nil {
		s.serverError(w, "load transactions", err)
		return
	}
	categories, err := s.store.Categories()
	if err != nil {
		s.serverError(w, "load categories", err)
		return
	}

	s.render(w, r, "transactions.html", TransactionsData{
		ActiveNav:    "transactions",
		Transactions: txns,
		Categories:   categories,
		Filter:       filter,
	})
}

// BudgetsData is the template context for the budgets page.
type BudgetsData struct {
	ActiveNav string
	Lines     []finance.BudgetLine
	Alerts    []finance.Alert
}

// handleBudgets renders per-category budget utilization for the
// current month.
func (s *WebServer) handleBudgets(w http.ResponseWriter, r *http.Request) {
	report, err := s.store.BudgetStatus("")
	if err != nil {
		s.serverError(w, "load budget status", err)
		return
	}

	s.render(w, r, "budgets.html", BudgetsData{
		ActiveNav: "budgets",
		Lines:     report.Lines,
		Alerts:    report.Alerts,
	})
}

// MonthlySummary is one month's summary row on the reports page.
type MonthlySummary struct {
	MonthName string
	Summary   *finance.Summary
}

// ReportsData is the template context for the reports page.
type ReportsData struct {
	ActiveNav string
	Spending  []finance.SpendingRow
	Monthly   []MonthlySummary
	Goals     []finance.Goal
}

// handleReports renders the 30-day spending report and summaries for
// the last six months.
func (s *WebServer) handleReports(w http.ResponseWriter, r *http.Request) {
	spending, err := s.store.SpendingReport(30)
	if err != nil {
		s.serverError(w, "load spending report", err)
		return
	}

	var monthly []MonthlySummary
	now := s.now()
	for i := 0; i < 6; i++ {
		month := now.AddDate(0, -i, 0)
		summary, err := s.store.Summary(month.Format("2006-01"))
		if err != nil {
			s.serverError(w, "load monthly summary", err)
			return
		}
		monthly = append(monthly, MonthlySummary{
			MonthName: month.Format("January 2006"),
			Summary:   summary,
		})
	}

	goals, err := s.store.Goals()
	if err != nil {
		s.serverError(w, "load goals", err)
		return
	}

	s.render(w, r, "reports.html", ReportsData{
		ActiveNav: "reports",
		Spending:  spending,
		Monthly:   monthly,
		Goals:     goals,
	})
}

// handleAddTransaction accepts the add-transaction form and redirects
// back to the dashboard.
func (s *WebServer) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	amount, err := strconv.ParseFloat(r.PostFormValue("amount"), 64)
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}

	txn := finance.Transaction{
		Amount:      amount,
		Category:    r.PostFormValue("category"),
		Description: r.PostFormValue("description"),
		Type:        r.PostFormValue("type"),
		Date:        r.PostFormValue("date"),
	}
	if _, err := s.store.AddTransaction(txn); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.bus.Publish(events.Event{
		Source: events.SourceWeb,
		Kind:   events.KindTransactionAdded,
		Data:   map[string]any{"amount": txn.Amount, "category": txn.Category, "type": txn.Type},
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleUpdateBudget accepts the budget form and redirects back to the
// budgets page.
func (s *WebServer) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	amount, err := strconv.ParseFloat(r.PostFormValue("budget_amount"), 64)
	if err != nil {
		http.Error(w, "invalid budget amount", http.StatusBadRequest)
		return
	}
	if err := s.store.SetBudget(r.PostFormValue("category"), amount); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/budgets", http.StatusSeeOther)
}

func (s *WebServer) serverError(w http.ResponseWriter, what string, err error) {
	s.logger.Error(what+" failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
