package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkoh12/agenticai/internal/company"
	"github.com/dkoh12/agenticai/internal/finance"
	"github.com/dkoh12/agenticai/internal/mcpserver"
)

var (
	mcpCmd = &cobra.Command{
		Use:   "mcp",
		Short: "Serve data stores over MCP stdio",
		Long: `Run one of the built-in MCP servers on stdin/stdout. Point any MCP
host, including the chat command itself, at "agenticai mcp finance"
or "agenticai mcp company".`,
	}

	mcpFinanceCmd = &cobra.Command{
		Use:   "finance",
		Short: "Serve the personal finance store over MCP",
		RunE:  runMCPFinance,
	}

	mcpCompanyCmd = &cobra.Command{
		Use:   "company",
		Short: "Serve the company database and documents over MCP",
		RunE:  runMCPCompany,
	}
)

func init() {
	mcpCmd.AddCommand(mcpFinanceCmd, mcpCompanyCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPFinance(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// Logs go to stderr; stdout carries the MCP stream.
	if _, err := setupLogger(cfg); err != nil {
		return err
	}
	if err := ensureDataDir(cfg); err != nil {
		return err
	}

	store, err := finance.Open(cfg.Finance.DBPath)
	if err != nil {
		return fmt.Errorf("open finance store: %w", err)
	}
	defer store.Close()

	return mcpserver.New("finance-mcp-server", mcpserver.FinanceTools(store)...).Run()
}

func runMCPCompany(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := setupLogger(cfg); err != nil {
		return err
	}
	if err := ensureDataDir(cfg); err != nil {
		return err
	}

	store, err := company.Open(cfg.Company.DBPath)
	if err != nil {
		return fmt.Errorf("open company store: %w", err)
	}
	defer store.Close()

	docs, err := company.NewDocStore(cfg.Company.DocsDir)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}

	return mcpserver.New("company-data-server", mcpserver.CompanyTools(store, docs)...).Run()
}
