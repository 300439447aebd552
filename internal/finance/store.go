// Package finance provides the personal finance store: transactions,
// category budgets, and savings goals backed by SQLite.
package finance

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Transaction types.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Budget alert thresholds, percent of budget spent.
const (
	AlertWarningPct = 80
	AlertOverPct    = 100
)

// Transaction is a single income or expense entry.
type Transaction struct {
	ID          int64   `json:"id"`
	Date        string  `json:"date"` // YYYY-MM-DD
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Type        string  `json:"type"` // income or expense
	Account     string  `json:"account"`
	CreatedAt   string  `json:"created_at"`
}

// Category is a transaction category with an optional monthly budget.
type Category struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	BudgetAmount float64 `json:"budget_amount"`
	Color        string  `json:"color"`
}

// Goal is a savings goal with progress tracking.
type Goal struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	TargetAmount    float64 `json:"target_amount"`
	CurrentAmount   float64 `json:"current_amount"`
	TargetDate      string  `json:"target_date,omitempty"`
	Status          string  `json:"status"` // active, completed, paused
	CreatedAt       string  `json:"created_at"`
	ProgressPercent float64 `json:"progress_percent"`
}

// CategoryTotal pairs a category with a spending total.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// Summary reports income vs expenses for one month.
type Summary struct {
	Period             string          `json:"period"` // YYYY-MM
	TotalIncome        float64         `json:"total_income"`
	TotalExpenses      float64         `json:"total_expenses"`
	NetIncome          float64         `json:"net_income"`
	SavingsRate        float64         `json:"savings_rate"` // percent of income kept
	ExpensesByCategory []CategoryTotal `json:"expenses_by_category"`
}

// BudgetLine is one category's budget vs actual for the month.
type BudgetLine struct {
	Category   string  `json:"category"`
	Budget     float64 `json:"budget"`
	Spent      float64 `json:"spent"`
	Remaining  float64 `json:"remaining"`
	Percentage float64 `json:"percentage"`
}

// Alert flags a category that crossed a budget threshold.
type Alert struct {
	Category   string  `json:"category"`
	Level      string  `json:"level"` // warning or over
	Percentage float64 `json:"percentage"`
	Message    string  `json:"message"`
}

// BudgetReport is the full budget picture for one month.
type BudgetReport struct {
	Month  string       `json:"month"`
	Lines  []BudgetLine `json:"budget_status"`
	Alerts []Alert      `json:"alerts"`
}

// SpendingRow aggregates expenses for one category over a period.
type SpendingRow struct {
	Category     string  `json:"category"`
	Transactions int     `json:"transactions"`
	Total        float64 `json:"total"`
	Average      float64 `json:"average"`
}

// TransactionFilter narrows a Transactions query. Zero values mean "any".
type TransactionFilter struct {
	Limit    int
	Category string
	Month    string // YYYY-MM
}

// Store is the SQLite-backed finance database.
type Store struct {
	db  *sql.DB
	now func() time.Time // injectable clock for tests
}

// Open opens (or creates) the finance database at dbPath, applies the
// schema, and seeds the default categories.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := s.seedCategories(); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed categories: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		amount REAL NOT NULL,
		category TEXT NOT NULL,
		description TEXT,
		type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
		account TEXT DEFAULT 'checking',
		created_at TEXT DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
	CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category);

	CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL,
		type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
		budget_amount REAL DEFAULT 0,
		color TEXT DEFAULT '#3498db'
	);

	CREATE TABLE IF NOT EXISTS goals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		target_amount REAL NOT NULL,
		current_amount REAL DEFAULT 0,
		target_date TEXT,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP,
		status TEXT DEFAULT 'active' CHECK (status IN ('active', 'completed', 'paused'))
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// defaultCategories are created on first open so budgets work out of
// the box.
var defaultCategories = []Category{
	{Name: "Food & Dining", Type: TypeExpense, BudgetAmount: 500, Color: "#e74c3c"},
	{Name: "Transportation", Type: TypeExpense, BudgetAmount: 300, Color: "#f39c12"},
	{Name: "Shopping", Type: TypeExpense, BudgetAmount: 200, Color: "#9b59b6"},
	{Name: "Entertainment", Type: TypeExpense, BudgetAmount: 150, Color: "#e67e22"},
	{Name: "Bills & Utilities", Type: TypeExpense, BudgetAmount: 400, Color: "#34495e"},
	{Name: "Healthcare", Type: TypeExpense, BudgetAmount: 100, Color: "#16a085"},
	{Name: "Education", Type: TypeExpense, BudgetAmount: 50, Color: "#2980b9"},
	{Name: "Salary", Type: TypeIncome, BudgetAmount: 0, Color: "#27ae60"},
	{Name: "Freelance", Type: TypeIncome, BudgetAmount: 0, Color: "#f1c40f"},
	{Name: "Investments", Type: TypeIncome, BudgetAmount: 0, Color: "#8e44ad"},
}

func (s *Store) seedCategories() error {
	for _, c := range defaultCategories {
		_, err := s.db.Exec(`
			INSERT OR IGNORE INTO categories (name, type, budget_amount, color)
			VALUES (?, ?, ?, ?)
		`, c.Name, c.Type, c.BudgetAmount, c.Color)
		if err != nil {
			return err
		}
	}
	return nil
}

// SeedDemoData inserts a handful of sample transactions if the table is
// empty. Returns true if data was inserted.
func (s *Store) SeedDemoData() (bool, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	today := s.now().Format("2006-01-02")
	demo := []Transaction{
		{Date: today, Amount: 3500.00, Category: "Salary", Description: "Monthly salary", Type: TypeIncome},
		{Date: today, Amount: 85.50, Category: "Food & Dining", Description: "Groceries", Type: TypeExpense},
		{Date: today, Amount: 45.00, Category: "Transportation", Description: "Gas", Type: TypeExpense},
		{Date: today, Amount: 12.99, Category: "Entertainment", Description: "Netflix subscription", Type: TypeExpense},
	}
	for _, t := range demo {
		if _, err := s.AddTransaction(t); err != nil {
			return false, err
		}
	}
	return true, nil
}

// AddTransaction validates and inserts a transaction, returning its ID.
// Date defaults to today, account to "checking", type to "expense".
func (s *Store) AddTransaction(t Transaction) (int64, error) {
	if t.Amount <= 0 {
		return 0, fmt.Errorf("amount must be positive, got %v", t.Amount)
	}
	if t.Category == "" {
		return 0, fmt.Errorf("category is required")
	}
	if t.Type == "" {
		t.Type = TypeExpense
	}
	if t.Type != TypeIncome && t.Type != TypeExpense {
		return 0, fmt.Errorf("type must be %q or %q, got %q", TypeIncome, TypeExpense, t.Type)
	}
	if t.Date == "" {
		t.Date = s.now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", t.Date); err != nil {
		return 0, fmt.Errorf("date must be YYYY-MM-DD, got %q", t.Date)
	}
	if t.Account == "" {
		t.Account = "checking"
	}

	res, err := s.db.Exec(`
		INSERT INTO transactions (date, amount, category, description, type, account)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.Date, t.Amount, t.Category, t.Description, t.Type, t.Account)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return res.LastInsertId()
}

// Transactions returns transactions matching the filter, most recent
// first. Limit defaults to 10.
func (s *Store) Transactions(f TransactionFilter) ([]Transaction, error) {
	if f.Limit <= 0 {
		f.Limit = 10
	}

	query := `SELECT id, date, amount, category, COALESCE(description, ''), type, account, created_at
		FROM transactions WHERE 1=1`
	var params []any

	if f.Category != "" {
		query += ` AND category = ?`
		params = append(params, f.Category)
	}
	if f.Month != "" {
		query += ` AND date LIKE ?`
		params = append(params, f.Month+"-%")
	}
	query += ` ORDER BY date DESC, id DESC LIMIT ?`
	params = append(params, f.Limit)

	rows, err := s.db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Date, &t.Amount, &t.Category, &t.Description, &t.Type, &t.Account, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Summary computes income, expenses, and the per-category expense
// breakdown for a month (YYYY-MM). Empty month means the current month.
func (s *Store) Summary(month string) (*Summary, error) {
	if month == "" {
		month = s.now().Format("2006-01")
	}
	pattern := month + "-%"

	var income, expenses float64
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE type = 'income' AND date LIKE ?
	`, pattern).Scan(&income)
	if err != nil {
		return nil, fmt.Errorf("sum income: %w", err)
	}

	err = s.db.QueryRow(`
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE type = 'expense' AND date LIKE ?
	`, pattern).Scan(&expenses)
	if err != nil {
		return nil, fmt.Errorf("sum expenses: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT category, SUM(amount) AS total FROM transactions
		WHERE type = 'expense' AND date LIKE ?
		GROUP BY category ORDER BY total DESC
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("expenses by category: %w", err)
	}
	defer rows.Close()

	var byCategory []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, err
		}
		ct.Total = round2(ct.Total)
		byCategory = append(byCategory, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	net := income - expenses
	var savingsRate float64
	if income > 0 {
		savingsRate = round1(net / income * 100)
	}

	return &Summary{
		Period:             month,
		TotalIncome:        round2(income),
		TotalExpenses:      round2(expenses),
		NetIncome:          round2(net),
		SavingsRate:        savingsRate,
		ExpensesByCategory: byCategory,
	}, nil
}

// Categories returns all categories, expense categories first.
func (s *Store) Categories() ([]Category, error) {
	rows, err := s.db.Query(`
		SELECT id, name, type, budget_amount, color
		FROM categories ORDER BY type DESC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.BudgetAmount, &c.Color); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetBudget updates the monthly budget for an expense category.
func (s *Store) SetBudget(category string, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("budget must not be negative, got %v", amount)
	}
	res, err := s.db.Exec(`
		UPDATE categories SET budget_amount = ? WHERE name = ? AND type = 'expense'
	`, amount, category)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("unknown expense category %q", category)
	}
	return nil
}

// AddGoal creates a savings goal and returns its ID. Target date is
// optional (YYYY-MM-DD).
func (s *Store) AddGoal(name string, targetAmount float64, targetDate string) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("goal name is required")
	}
	if targetAmount <= 0 {
		return 0, fmt.Errorf("target amount must be positive, got %v", targetAmount)
	}
	if targetDate != "" {
		if _, err := time.Parse("2006-01-02", targetDate); err != nil {
			return 0, fmt.Errorf("target date must be YYYY-MM-DD, got %q", targetDate)
		}
	}

	res, err := s.db.Exec(`
		INSERT INTO goals (name, target_amount, target_date)
		VALUES (?, ?, ?)
	`, name, targetAmount, sql.NullString{String: targetDate, Valid: targetDate != ""})
	if err != nil {
		return 0, fmt.Errorf("insert goal: %w", err)
	}
	return res.LastInsertId()
}

// Goals returns all goals, newest first, with progress computed.
func (s *Store) Goals() ([]Goal, error) {
	rows, err := s.db.Query(`
		SELECT id, name, target_amount, current_amount, COALESCE(target_date, ''), status, created_at
		FROM goals ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var out []Goal
	for rows.Next() {
		var g Goal
		if err := rows.Scan(&g.ID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.TargetDate, &g.Status, &g.CreatedAt); err != nil {
			return nil, err
		}
		if g.TargetAmount > 0 {
			g.ProgressPercent = round1(g.CurrentAmount / g.TargetAmount * 100)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// UpdateGoalProgress sets a goal's current amount. Reaching the target
// marks the goal completed.
func (s *Store) UpdateGoalProgress(id int64, currentAmount float64) error {
	if currentAmount < 0 {
		return fmt.Errorf("current amount must not be negative, got %v", currentAmount)
	}
	res, err := s.db.Exec(`
		UPDATE goals SET
			current_amount = ?,
			status = CASE WHEN ? >= target_amount THEN 'completed' ELSE status END
		WHERE id = ?
	`, currentAmount, currentAmount, id)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("unknown goal %d", id)
	}
	return nil
}

// BudgetStatus reports budget vs actual for every budgeted expense
// category in a month, with alerts at 80% and 100% of budget. Empty
// month means the current month.
func (s *Store) BudgetStatus(month string) (*BudgetReport, error) {
	if month == "" {
		month = s.now().Format("2006-01")
	}

	rows, err := s.db.Query(`
		SELECT c.name, c.budget_amount, COALESCE(SUM(t.amount), 0) AS spent
		FROM categories c
		LEFT JOIN transactions t
			ON t.category = c.name AND t.type = 'expense' AND t.date LIKE ?
		WHERE c.type = 'expense' AND c.budget_amount > 0
		GROUP BY c.name, c.budget_amount
		ORDER BY c.name
	`, month+"-%")
	if err != nil {
		return nil, fmt.Errorf("query budget status: %w", err)
	}
	defer rows.Close()

	report := &BudgetReport{Month: month}
	for rows.Next() {
		var line BudgetLine
		if err := rows.Scan(&line.Category, &line.Budget, &line.Spent); err != nil {
			return nil, err
		}
		line.Spent = round2(line.Spent)
		line.Remaining = round2(line.Budget - line.Spent)
		if line.Budget > 0 {
			line.Percentage = round1(line.Spent / line.Budget * 100)
		}
		report.Lines = append(report.Lines, line)

		switch {
		case line.Percentage >= AlertOverPct:
			report.Alerts = append(report.Alerts, Alert{
				Category:   line.Category,
				Level:      "over",
				Percentage: line.Percentage,
				Message:    fmt.Sprintf("OVER BUDGET: %s (%.1f%%)", line.Category, line.Percentage),
			})
		case line.Percentage >= AlertWarningPct:
			report.Alerts = append(report.Alerts, Alert{
				Category:   line.Category,
				Level:      "warning",
				Percentage: line.Percentage,
				Message:    fmt.Sprintf("WARNING: %s (%.1f%%)", line.Category, line.Percentage),
			})
		}
	}
	return report, rows.Err()
}

// SpendingReport aggregates expenses by category over the last N days.
func (s *Store) SpendingReport(days int) ([]SpendingRow, error) {
	if days <= 0 {
		days = 30
	}
	since := s.now().AddDate(0, 0, -days).Format("2006-01-02")

	rows, err := s.db.Query(`
		SELECT category, COUNT(*) AS transactions, SUM(amount) AS total, AVG(amount) AS average
		FROM transactions
		WHERE type = 'expense' AND date >= ?
		GROUP BY category ORDER BY total DESC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("query spending report: %w", err)
	}
	defer rows.Close()

	var out []SpendingRow
	for rows.Next() {
		var r SpendingRow
		if err := rows.Scan(&r.Category, &r.Transactions, &r.Total, &r.Average); err != nil {
			return nil, err
		}
		r.Total = round2(r.Total)
		r.Average = round2(r.Average)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ExportCSV writes all transactions to w in CSV form, newest first.
// Returns the number of records written.
func (s *Store) ExportCSV(w io.Writer) (int, error) {
	rows, err := s.db.Query(`
		SELECT date, amount, category, COALESCE(description, ''), type
		FROM transactions ORDER BY date DESC, id DESC
	`)
	if err != nil {
		return 0, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Amount", "Category", "Description", "Type"}); err != nil {
		return 0, err
	}

	count := 0
	for rows.Next() {
		var date, category, description, typ string
		var amount float64
		if err := rows.Scan(&date, &amount, &category, &description, &typ); err != nil {
			return count, err
		}
		record := []string{date, strconv.FormatFloat(amount, 'f', 2, 64), category, description, typ}
		if err := cw.Write(record); err != nil {
			return count, err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, err
	}

	cw.Flush()
	return count, cw.Error()
}

func round2(v float64) float64 {
	return float64(int64(v*100+sign(v)*0.5)) / 100
}

func round1(v float64) float64 {
	return float64(int64(v*10+sign(v)*0.5)) / 10
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
