package agent

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/dkoh12/agenticai/internal/events"
	"github.com/dkoh12/agenticai/internal/finance"
)

// FinanceRouter answers natural-language finance requests with keyword
// routing instead of a model call. It covers the common cases ("I spent
// $25 on lunch", "show me recent transactions") deterministically and
// offline; anything it cannot classify gets a usage hint.
type FinanceRouter struct {
	store  *finance.Store
	logger *slog.Logger
	bus    *events.Bus
}

// NewFinanceRouter creates a router backed by the given store.
func NewFinanceRouter(store *finance.Store, logger *slog.Logger, bus *events.Bus) *FinanceRouter {
	return &FinanceRouter{store: store, logger: logger, bus: bus}
}

// amountPattern matches a dollar amount like "$25", "25", or "25.50".
var amountPattern = regexp.MustCompile(`\$?(\d+(?:\.\d{1,2})?)`)

// Keyword tables for intent and category classification. Matched in
// order: expense before income means "paid" wins over "paid me", which
// is acceptable for a demo-grade router.
var (
	expenseWords = []string{"spent", "bought", "paid", "expense", "cost"}
	incomeWords  = []string{"earned", "income", "salary", "received"}
	summaryWords = []string{"summary", "overview", "total", "how much"}
	recentWords  = []string{"recent", "last", "transactions", "history"}
	reportWords  = []string{"report", "analysis", "categories", "breakdown"}

	expenseCategories = []struct {
		category string
		words    []string
	}{
		{"Food & Dining", []string{"food", "lunch", "dinner", "coffee", "restaurant", "grocery", "groceries"}},
		{"Transportation", []string{"gas", "uber", "taxi", "bus", "train", "car"}},
		{"Shopping", []string{"clothes", "shopping", "store", "amazon", "bought"}},
		{"Entertainment", []string{"movie", "game", "entertainment", "show"}},
		{"Bills & Utilities", []string{"rent", "utility", "bill", "electric", "internet"}},
	}

	incomeCategories = []struct {
		category string
		words    []string
	}{
		{"Salary", []string{"salary", "paycheck", "job"}},
		{"Freelance", []string{"freelance", "consulting", "contract"}},
		{"Investments", []string{"investment", "dividend", "stock"}},
	}
)

const routerHelp = `I can help you with:
- Adding expenses: "I spent $25 on groceries"
- Adding income: "I earned $500 from freelancing"
- Getting summaries: "Show me my monthly summary"
- Viewing transactions: "Show me recent transactions"
- Spending reports: "Give me a spending breakdown"`

// Handle classifies the input and executes the matching store
// operation. Unclassified input gets the usage hint.
func (r *FinanceRouter) Handle(input string) string {
	reply, ok := r.Route(input)
	if !ok {
		return routerHelp
	}
	return reply
}

// Route classifies the input and executes the matching store
// operation. The second return is false when no intent matched, so
// callers can fall back to something smarter.
func (r *FinanceRouter) Route(input string) (string, bool) {
	lower := strings.ToLower(input)

	switch {
	case containsAny(lower, expenseWords):
		return r.addTransaction(input, lower, finance.TypeExpense), true
	case containsAny(lower, incomeWords):
		return r.addTransaction(input, lower, finance.TypeIncome), true
	case containsAny(lower, summaryWords):
		return r.summary(), true
	case containsAny(lower, recentWords):
		return r.recentTransactions(10), true
	case containsAny(lower, reportWords):
		return r.spendingReport(30), true
	default:
		return "", false
	}
}

func (r *FinanceRouter) addTransaction(input, lower, txnType string) string {
	m := amountPattern.FindStringSubmatch(input)
	if m == nil {
		if txnType == finance.TypeIncome {
			return "I couldn't find an amount. Please specify how much you earned."
		}
		return "I couldn't find an amount. Please specify how much you spent (e.g., '$25' or '25')"
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return fmt.Sprintf("Error: could not parse amount %q", m[1])
	}

	category := classifyCategory(lower, txnType)
	description := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(input, "$", ""), m[1], ""))

	id, err := r.store.AddTransaction(finance.Transaction{
		Amount:      amount,
		Category:    category,
		Description: description,
		Type:        txnType,
	})
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	r.logger.Info("transaction added via router", "id", id, "amount", amount, "category", category, "type", txnType)
	r.bus.Publish(events.Event{
		Source: events.SourceAgent,
		Kind:   events.KindTransactionAdded,
		Data:   map[string]any{"amount": amount, "category": category, "type": txnType},
	})

	if txnType == finance.TypeIncome {
		return fmt.Sprintf("Added income: $%.2f from %s", amount, category)
	}
	return fmt.Sprintf("Added expense: $%.2f for %s", amount, category)
}

func (r *FinanceRouter) summary() string {
	s, err := r.store.Summary("")
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Financial Summary for %s:\n", s.Period)
	fmt.Fprintf(&b, "- Income: $%.2f\n", s.TotalIncome)
	fmt.Fprintf(&b, "- Expenses: $%.2f\n", s.TotalExpenses)
	fmt.Fprintf(&b, "- Net Income: $%.2f\n", s.NetIncome)
	fmt.Fprintf(&b, "- Savings Rate: %.1f%%\n", s.SavingsRate)
	if len(s.ExpensesByCategory) > 0 {
		b.WriteString("\nTop Spending Categories:\n")
		for i, c := range s.ExpensesByCategory {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "- %s: $%.2f\n", c.Category, c.Total)
		}
	}
	return b.String()
}

func (r *FinanceRouter) recentTransactions(limit int) string {
	txns, err := r.store.Transactions(finance.TransactionFilter{Limit: limit})
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if len(txns) == 0 {
		return "No transactions recorded yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Last %d transactions:\n", len(txns))
	for _, t := range txns {
		fmt.Fprintf(&b, "- %s: $%.2f - %s (%s)\n", t.Date, t.Amount, t.Category, t.Type)
		if t.Description != "" {
			fmt.Fprintf(&b, "  %s\n", t.Description)
		}
	}
	return b.String()
}

func (r *FinanceRouter) spendingReport(days int) string {
	rows, err := r.store.SpendingReport(days)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if len(rows) == 0 {
		return fmt.Sprintf("No spending recorded in the last %d days.", days)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Spending Report (Last %d days):\n", days)
	for _, row := range rows {
		fmt.Fprintf(&b, "- %s: $%.2f (%d transactions)\n", row.Category, row.Total, row.Transactions)
		fmt.Fprintf(&b, "  Average: $%.2f per transaction\n", row.Average)
	}
	return b.String()
}

func classifyCategory(lower, txnType string) string {
	if txnType == finance.TypeIncome {
		for _, c := range incomeCategories {
			if containsAny(lower, c.words) {
				return c.category
			}
		}
		return "Income"
	}
	for _, c := range expenseCategories {
		if containsAny(lower, c.words) {
			return c.category
		}
	}
	return "Other"
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
