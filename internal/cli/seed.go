package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkoh12/agenticai/internal/company"
	"github.com/dkoh12/agenticai/internal/finance"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create demo data for the finance and company stores",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
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

	store, err := finance.Open(cfg.Finance.DBPath)
	if err != nil {
		return fmt.Errorf("open finance store: %w", err)
	}
	defer store.Close()

	seeded, err := store.SeedDemoData()
	if err != nil {
		return fmt.Errorf("seed finance data: %w", err)
	}
	if seeded {
		fmt.Printf("Seeded finance demo data in %s\n", cfg.Finance.DBPath)
	} else {
		fmt.Printf("Finance store already has data, skipping (%s)\n", cfg.Finance.DBPath)
	}

	// The company store and document directory seed themselves on
	// first open.
	cstore, err := company.Open(cfg.Company.DBPath)
	if err != nil {
		return fmt.Errorf("open company store: %w", err)
	}
	defer cstore.Close()

	docs, err := company.NewDocStore(cfg.Company.DocsDir)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}
	names, err := docs.List()
	if err != nil {
		return err
	}

	fmt.Printf("Company store ready in %s\n", cfg.Company.DBPath)
	fmt.Printf("Documents in %s: %d\n", docs.Dir(), len(names))
	return nil
}
