package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkoh12/agenticai/internal/finance"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export all transactions as CSV",
	Long:  "Write every stored transaction as CSV to the given file, or to stdout when no file is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := setupLogger(cfg); err != nil {
		return err
	}

	store, err := finance.Open(cfg.Finance.DBPath)
	if err != nil {
		return fmt.Errorf("open finance store: %w", err)
	}
	defer store.Close()

	out := os.Stdout
	if len(args) == 1 {
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	n, err := store.ExportCSV(out)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		fmt.Fprintf(os.Stderr, "Exported %d transactions to %s\n", n, args[0])
	}
	return nil
}
