package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available on the Ollama server",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	client := newLLMClient(cfg, logger)
	if err := client.Ping(cmd.Context()); err != nil {
		return fmt.Errorf("ollama not reachable at %s: %w", cfg.Ollama.URL, err)
	}

	models, err := client.ListModels(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Ollama at %s (%d models):\n", cfg.Ollama.URL, len(models))
	for _, m := range models {
		marker := " "
		if m == cfg.Ollama.Model {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, m)
	}
	return nil
}
