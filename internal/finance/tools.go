package finance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dkoh12/agenticai/internal/events"
	"github.com/dkoh12/agenticai/internal/tools"
)

// RegisterTools exposes the finance store to the agent through the tool
// registry. Results are JSON so the model can quote exact figures.
func RegisterTools(r *tools.Registry, store *Store, bus *events.Bus) {
	r.Register(&tools.Tool{
		Name:        "add_transaction",
		Description: "Add a new financial transaction (income or expense). Amount must be positive.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"amount": map[string]any{
					"type":        "number",
					"description": "Transaction amount (positive number)",
				},
				"category": map[string]any{
					"type":        "string",
					"description": "Category name (e.g., 'Food & Dining', 'Salary')",
				},
				"description": map[string]any{
					"type":        "string",
					"description": "Optional description of the transaction",
				},
				"transaction_type": map[string]any{
					"type":        "string",
					"description": "Either 'income' or 'expense' (default: expense)",
				},
				"date": map[string]any{
					"type":        "string",
					"description": "Date in YYYY-MM-DD format (defaults to today)",
				},
			},
			"required": []string{"amount", "category"},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			t := Transaction{
				Amount:      floatArg(args, "amount"),
				Category:    stringArg(args, "category"),
				Description: stringArg(args, "description"),
				Type:        stringArg(args, "transaction_type"),
				Date:        stringArg(args, "date"),
			}
			id, err := store.AddTransaction(t)
			if err != nil {
				return "", err
			}
			bus.Publish(events.Event{
				Timestamp: time.Now(),
				Source:    events.SourceAgent,
				Kind:      events.KindTransactionAdded,
				Data: map[string]any{
					"amount":   t.Amount,
					"category": t.Category,
					"type":     t.Type,
				},
			})
			return asJSON(map[string]any{
				"success":        true,
				"transaction_id": id,
				"message":        fmt.Sprintf("Added %s of $%.2f in %s", orDefault(t.Type, TypeExpense), t.Amount, t.Category),
			})
		},
	})

	r.Register(&tools.Tool{
		Name:        "get_transactions",
		Description: "Get recent transactions with optional filtering by category or month.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of transactions to return (default 10)",
				},
				"category": map[string]any{
					"type":        "string",
					"description": "Filter by category name",
				},
				"month": map[string]any{
					"type":        "string",
					"description": "Filter by month in YYYY-MM format",
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			txns, err := store.Transactions(TransactionFilter{
				Limit:    intArg(args, "limit"),
				Category: stringArg(args, "category"),
				Month:    stringArg(args, "month"),
			})
			if err != nil {
				return "", err
			}
			return asJSON(map[string]any{
				"success":      true,
				"transactions": txns,
				"count":        len(txns),
			})
		},
	})

	r.Register(&tools.Tool{
		Name:        "get_financial_summary",
		Description: "Get income, expenses, net income, savings rate, and category breakdown for a month.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"month": map[string]any{
					"type":        "string",
					"description": "Month in YYYY-MM format (defaults to current month)",
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			summary, err := store.Summary(stringArg(args, "month"))
			if err != nil {
				return "", err
			}
			return asJSON(summary)
		},
	})

	r.Register(&tools.Tool{
		Name:        "add_financial_goal",
		Description: "Add a new savings goal with a target amount and optional target date.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"goal_name": map[string]any{
					"type":        "string",
					"description": "Name of the financial goal",
				},
				"target_amount": map[string]any{
					"type":        "number",
					"description": "Target amount to save",
				},
				"target_date": map[string]any{
					"type":        "string",
					"description": "Target date in YYYY-MM-DD format (optional)",
				},
			},
			"required": []string{"goal_name", "target_amount"},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			name := stringArg(args, "goal_name")
			target := floatArg(args, "target_amount")
			id, err := store.AddGoal(name, target, stringArg(args, "target_date"))
			if err != nil {
				return "", err
			}
			return asJSON(map[string]any{
				"success": true,
				"goal_id": id,
				"message": fmt.Sprintf("Added goal: %s ($%.2f)", name, target),
			})
		},
	})

	r.Register(&tools.Tool{
		Name:        "update_goal_progress",
		Description: "Update the amount saved so far toward a financial goal.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"goal_id": map[string]any{
					"type":        "integer",
					"description": "ID of the goal to update",
				},
				"current_amount": map[string]any{
					"type":        "number",
					"description": "Amount saved so far",
				},
			},
			"required": []string{"goal_id", "current_amount"},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			id := int64(intArg(args, "goal_id"))
			amount := floatArg(args, "current_amount")
			if err := store.UpdateGoalProgress(id, amount); err != nil {
				return "", err
			}
			return asJSON(map[string]any{
				"success": true,
				"message": fmt.Sprintf("Goal %d progress set to $%.2f", id, amount),
			})
		},
	})

	r.Register(&tools.Tool{
		Name:        "get_budget_status",
		Description: "Get current month budget status per category with overspending alerts.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			report, err := store.BudgetStatus("")
			if err != nil {
				return "", err
			}
			for _, a := range report.Alerts {
				bus.Publish(events.Event{
					Timestamp: time.Now(),
					Source:    events.SourceAgent,
					Kind:      events.KindBudgetAlert,
					Data: map[string]any{
						"category": a.Category,
						"level":    a.Level,
						"pct":      a.Percentage,
					},
				})
			}
			return asJSON(report)
		},
	})

	r.Register(&tools.Tool{
		Name:        "spending_report",
		Description: "Analyze spending patterns by category over the last N days.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"days": map[string]any{
					"type":        "integer",
					"description": "Number of days to analyze (default 30)",
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			report, err := store.SpendingReport(intArg(args, "days"))
			if err != nil {
				return "", err
			}
			return asJSON(map[string]any{
				"success":         true,
				"spending_report": report,
			})
		},
	})
}

func asJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(b), nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func floatArg(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		var f float64
		fmt.Sscanf(v, "%f", &f)
		return f
	}
	return 0
}

func intArg(args map[string]any, key string) int {
	return int(floatArg(args, key))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
