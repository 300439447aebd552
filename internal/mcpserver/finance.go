package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/dkoh12/agenticai/internal/finance"
)

var validate = validator.New()

// FinanceTools builds the tool set for the personal finance MCP server.
func FinanceTools(store *finance.Store) []server.ServerTool {
	return []server.ServerTool{
		newServerTool(addTransactionTool(store)),
		newServerTool(getTransactionsTool(store)),
		newServerTool(financialSummaryTool(store)),
		newServerTool(addGoalTool(store)),
		newServerTool(budgetStatusTool(store)),
		newServerTool(spendingReportTool(store)),
	}
}

func addTransactionTool(store *finance.Store) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool(
			"add_transaction",
			mcp.WithDescription("Add a new financial transaction (income or expense)"),
			mcp.WithNumber("amount", mcp.Required(), mcp.Description("Transaction amount (positive number)")),
			mcp.WithString("category", mcp.Required(), mcp.Description("Category name (e.g., 'Food & Dining', 'Salary')")),
			mcp.WithString("description", mcp.Description("Optional description of the transaction")),
			mcp.WithString("transaction_type", mcp.Description("Either 'income' or 'expense' (default: expense)")),
			mcp.WithString("date", mcp.Description("Date in YYYY-MM-DD format (defaults to today)")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type toolArguments struct {
				Amount          float64 `json:"amount" validate:"required,gt=0"`
				Category        string  `json:"category" validate:"required"`
				Description     string  `json:"description"`
				TransactionType string  `json:"transaction_type" validate:"omitempty,oneof=income expense"`
				Date            string  `json:"date"`
			}
			var args toolArguments
			if err := mapstructure.Decode(req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := validate.StructCtx(ctx, args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			id, err := store.AddTransaction(finance.Transaction{
				Amount:      args.Amount,
				Category:    args.Category,
				Description: args.Description,
				Type:        args.TransactionType,
				Date:        args.Date,
			})
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			return resultJSON(map[string]any{
				"success":        true,
				"transaction_id": id,
				"message":        fmt.Sprintf("Added transaction of $%.2f in %s", args.Amount, args.Category),
			})
		}
}

func getTransactionsTool(store *finance.Store) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool(
			"get_transactions",
			mcp.WithDescription("Get recent transactions with optional filtering"),
			mcp.WithNumber("limit", mcp.Description("Maximum number of transactions to return (default 10)")),
			mcp.WithString("category", mcp.Description("Filter by category name")),
			mcp.WithString("month", mcp.Description("Filter by month in YYYY-MM format")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type toolArguments struct {
				Limit    int    `json:"limit"`
				Category string `json:"category"`
				Month    string `json:"month"`
			}
			var args toolArguments
			if err := mapstructure.Decode(req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			txns, err := store.Transactions(finance.TransactionFilter{
				Limit:    args.Limit,
				Category: args.Category,
				Month:    args.Month,
			})
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			return resultJSON(map[string]any{
				"success":      true,
				"transactions": txns,
				"count":        len(txns),
			})
		}
}

func financialSummaryTool(store *finance.Store) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool(
			"get_financial_summary",
			mcp.WithDescription("Get income, expenses, net income, and category breakdown for a month"),
			mcp.WithString("month", mcp.Description("Month in YYYY-MM format (defaults to current month)")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type toolArguments struct {
				Month string `json:"month"`
			}
			var args toolArguments
			if err := mapstructure.Decode(req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			summary, err := store.Summary(args.Month)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return resultJSON(summary)
		}
}

func addGoalTool(store *finance.Store) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool(
			"add_financial_goal",
			mcp.WithDescription("Add a new savings goal"),
			mcp.WithString("goal_name", mcp.Required(), mcp.Description("Name of the financial goal")),
			mcp.WithNumber("target_amount", mcp.Required(), mcp.Description("Target amount to save")),
			mcp.WithString("target_date", mcp.Description("Target date in YYYY-MM-DD format (optional)")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type toolArguments struct {
				GoalName     string  `json:"goal_name" validate:"required"`
				TargetAmount float64 `json:"target_amount" validate:"required,gt=0"`
				TargetDate   string  `json:"target_date"`
			}
			var args toolArguments
			if err := mapstructure.Decode(req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := validate.StructCtx(ctx, args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			id, err := store.AddGoal(args.GoalName, args.TargetAmount, args.TargetDate)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			return resultJSON(map[string]any{
				"success": true,
				"goal_id": id,
				"message": fmt.Sprintf("Added goal: %s ($%.2f)", args.GoalName, args.TargetAmount),
			})
		}
}

func budgetStatusTool(store *finance.Store) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool(
			"get_budget_status",
			mcp.WithDescription("Get current budget status per category with overspending alerts"),
			mcp.WithString("month", mcp.Description("Month in YYYY-MM format (defaults to current month)")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type toolArguments struct {
				Month string `json:"month"`
			}
			var args toolArguments
			if err := mapstructure.Decode(req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			report, err := store.BudgetStatus(args.Month)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return resultJSON(report)
		}
}

func spendingReportTool(store *finance.Store) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool(
			"spending_report",
			mcp.WithDescription("Analyze spending patterns by category over the last N days"),
			mcp.WithNumber("days", mcp.Description("Number of days to analyze (default 30)")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type toolArguments struct {
				Days int `json:"days"`
			}
			var args toolArguments
			if err := mapstructure.Decode(req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			report, err := store.SpendingReport(args.Days)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return resultJSON(map[string]any{
				"success":         true,
				"spending_report": report,
			})
		}
}

// resultJSON marshals v and wraps it as a text tool result.
func resultJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
