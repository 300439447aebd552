package web

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dkoh12/agenticai/internal/company"
	"github.com/dkoh12/agenticai/internal/events"
	"github.com/dkoh12/agenticai/internal/finance"
)

// newTestServer creates a WebServer over fresh stores in a temp dir.
func newTestServer(t *testing.T) (*WebServer, *finance.Store) {
	t.Helper()
	dir := t.TempDir()

	store, err := finance.Open(filepath.Join(dir, "finance.db"))
	if err != nil {
		t.Fatalf("open finance store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	docs, err := company.NewDocStore(filepath.Join(dir, "docs"))
	if err != nil {
		t.Fatalf("new doc store: %v", err)
	}

	return NewWebServer(Config{
		Store:  store,
		Docs:   docs,
		Bus:    events.New(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}), store
}

func get(t *testing.T, ws *WebServer, path string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	ws.RegisterRoutes(mux)
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func postForm(t *testing.T, ws *WebServer, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	ws.RegisterRoutes(mux)
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func addTxn(t *testing.T, store *finance.Store, txn finance.Transaction) {
	t.Helper()
	if _, err := store.AddTransaction(txn); err != nil {
		t.Fatalf("add transaction: %v", err)
	}
}

func TestDashboardFullPage(t *testing.T) {
	ws, store := newTestServer(t)
	addTxn(t, store, finance.Transaction{Amount: 3000, Category: "Salary", Type: "income"})
	addTxn(t, store, finance.Transaction{Amount: 45.5, Category: "Food & Dining", Description: "groceries"})

	w := get(t, ws, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("GET / status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"<!DOCTYPE html>", "<nav", "$3000.00", "$45.50", "groceries"} {
		if !strings.Contains(body, want) {
			t.Errorf("GET / response missing %q", want)
		}
	}
}

func TestDashboardHtmxPartial(t *testing.T) {
	ws, _ := newTestServer(t)

	mux := http.NewServeMux()
	ws.RegisterRoutes(mux)
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("HX-Request", "true")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET / (htmx) status = %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("htmx partial should not contain <!DOCTYPE html>")
	}
	if strings.Contains(body, "<nav") {
		t.Error("htmx partial should not contain <nav>")
	}
	if !strings.Contains(body, "Recent Transactions") {
		t.Error("htmx partial missing dashboard content")
	}
}

func TestDashboardSubpathNotFound(t *testing.T) {
	ws, _ := newTestServer(t)
	if w := get(t, ws, "/nonexistent"); w.Code != http.StatusNotFound {
		t.Errorf("GET /nonexistent status = %d, want 404", w.Code)
	}
}

func TestDashboardShowsBudgetAlerts(t *testing.T) {
	ws, store := newTestServer(t)
	// Education's default budget is $50; $60 is over.
	addTxn(t, store, finance.Transaction{Amount: 60, Category: "Education"})

	body := get(t, ws, "/").Body.String()
	if !strings.Contains(body, "OVER BUDGET") || !strings.Contains(body, "Education") {
		t.Errorf("dashboard missing over-budget alert:\n%s", body)
	}
}

func TestTransactionsPageAndFilter(t *testing.T) {
	ws, store := newTestServer(t)
	addTxn(t, store, finance.Transaction{Amount: 10, Category: "Food & Dining", Description: "lunch"})
	addTxn(t, store, finance.Transaction{Amount: 20, Category: "Shopping", Description: "socks"})

	body := get(t, ws, "/transactions").Body.String()
	if !strings.Contains(body, "lunch") || !strings.Contains(body, "socks") {
		t.Errorf("transactions page missing rows:\n%s", body)
	}

	filtered := get(t, ws, "/transactions?category=Shopping").Body.String()
	if !strings.Contains(filtered, "socks") {
		t.Error("filtered page missing matching transaction")
	}
	if strings.Contains(filtered, "lunch") {
		t.Error("filtered page includes non-matching transaction")
	}
}

func TestAddTransactionFormRedirects(t *testing.T) {
	ws, store := newTestServer(t)

	w := postForm(t, ws, "/add_transaction", url.Values{
		"amount":      {"12.75"},
		"category":    {"Entertainment"},
		"description": {"movie night"},
		"type":        {"expense"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("POST /add_transaction status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("redirect location = %q", loc)
	}

	txns, err := store.Transactions(finance.TransactionFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txns) != 1 || txns[0].Description != "movie night" {
		t.Fatalf("stored = %+v", txns)
	}
}

func TestAddTransactionRejectsBadInput(t *testing.T) {
	ws, _ := newTestServer(t)

	if w := postForm(t, ws, "/add_transaction", url.Values{"amount": {"abc"}}); w.Code != http.StatusBadRequest {
		t.Errorf("bad amount status = %d, want 400", w.Code)
	}
	if w := postForm(t, ws, "/add_transaction", url.Values{"amount": {"-5"}, "category": {"Food & Dining"}}); w.Code != http.StatusBadRequest {
		t.Errorf("negative amount status = %d, want 400", w.Code)
	}
	if w := get(t, ws, "/add_transaction"); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", w.Code)
	}
}

func TestUpdateBudget(t *testing.T) {
	ws, store := newTestServer(t)

	w := postForm(t, ws, "/update_budget", url.Values{
		"category":      {"Shopping"},
		"budget_amount": {"250"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("POST /update_budget status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/budgets" {
		t.Errorf("redirect location = %q", loc)
	}

	categories, err := store.Categories()
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	var found bool
	for _, c := range categories {
		if c.Name == "Shopping" && c.BudgetAmount == 250 {
			found = true
		}
	}
	if !found {
		t.Error("Shopping budget not updated to 250")
	}

	// Income categories cannot be budgeted.
	if w := postForm(t, ws, "/update_budget", url.Values{
		"category":      {"Salary"},
		"budget_amount": {"100"},
	}); w.Code != http.StatusBadRequest {
		t.Errorf("income budget status = %d, want 400", w.Code)
	}
}

func TestBudgetsPage(t *testing.T) {
	ws, store := newTestServer(t)
	addTxn(t, store, finance.Transaction{Amount: 450, Category: "Food & Dining"})

	body := get(t, ws, "/budgets").Body.String()
	if !strings.Contains(body, "Food & Dining") || !strings.Contains(body, "$450.00") {
		t.Errorf("budgets page missing utilization:\n%s", body)
	}
	if !strings.Contains(body, "WARNING") {
		t.Errorf("budgets page missing 90%% warning:\n%s", body)
	}
}

func TestReportsPage(t *testing.T) {
	ws, store := newTestServer(t)
	addTxn(t, store, finance.Transaction{Amount: 30, Category: "Transportation", Description: "gas"})

	w := get(t, ws, "/reports")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /reports status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Transportation") {
		t.Errorf("reports page missing spending row:\n%s", body)
	}
	if strings.Count(body, "<td>") < 6*5 {
		t.Error("reports page missing monthly summary rows")
	}
}

func TestAPISummary(t *testing.T) {
	ws, store := newTestServer(t)
	addTxn(t, store, finance.Transaction{Amount: 1000, Category: "Salary", Type: "income"})
	addTxn(t, store, finance.Transaction{Amount: 100, Category: "Shopping"})

	w := get(t, ws, "/api/summary")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/summary status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var summary finance.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if summary.TotalIncome != 1000 || summary.TotalExpenses != 100 || summary.NetIncome != 900 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestAPIBudgetAlerts(t *testing.T) {
	ws, store := newTestServer(t)
	addTxn(t, store, finance.Transaction{Amount: 60, Category: "Education"})

	w := get(t, ws, "/api/budget_alerts")
	var alerts []finance.Alert
	if err := json.Unmarshal(w.Body.Bytes(), &alerts); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Level != "over" || alerts[0].Category != "Education" {
		t.Errorf("alerts = %+v", alerts)
	}
}

func TestAPISpendingChart(t *testing.T) {
	ws, store := newTestServer(t)
	addTxn(t, store, finance.Transaction{Amount: 500, Category: "Salary", Type: "income"})

	w := get(t, ws, "/api/spending_chart")
	var chart SpendingChart
	if err := json.Unmarshal(w.Body.Bytes(), &chart); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(chart.Labels) != 6 || len(chart.Income) != 6 {
		t.Fatalf("chart series length = %d labels, %d income", len(chart.Labels), len(chart.Income))
	}
	// Current month is last; it carries the income.
	if chart.Income[5] != 500 {
		t.Errorf("current month income = %v", chart.Income[5])
	}
	if chart.Income[0] != 0 {
		t.Errorf("oldest month income = %v, want 0", chart.Income[0])
	}
}

func TestDocsPages(t *testing.T) {
	ws, _ := newTestServer(t)

	body := get(t, ws, "/docs").Body.String()
	for _, want := range []string{"company_policy.md", "project_status.md", "team_handbook.md"} {
		if !strings.Contains(body, want) {
			t.Errorf("docs list missing %q", want)
		}
	}

	w := get(t, ws, "/docs/company_policy.md")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /docs/company_policy.md status = %d", w.Code)
	}
	// Markdown heading rendered to HTML.
	if !strings.Contains(w.Body.String(), "<h1") {
		t.Error("document not rendered as HTML")
	}

	if w := get(t, ws, "/docs/missing.md"); w.Code != http.StatusNotFound {
		t.Errorf("missing doc status = %d, want 404", w.Code)
	}
}
