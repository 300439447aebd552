// Package cli implements the agenticai command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dkoh12/agenticai/internal/buildinfo"
	"github.com/dkoh12/agenticai/internal/config"
	"github.com/dkoh12/agenticai/internal/llm"
)

var (
	// Persistent flags
	configFlag   string
	logLevelFlag string
	modelFlag    string
	ollamaFlag   string

	rootCmd = &cobra.Command{
		Use:           "agenticai",
		Short:         "Local agent demos backed by Ollama",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `agenticai is a collection of agent patterns that run entirely against
a local Ollama server: agent-to-agent conversations, sequential crews,
graph workflows, MCP servers and clients, and a personal finance
assistant with a web dashboard.`,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Run: func(cmd *cobra.Command, args []string) {
			for k, v := range buildinfo.Info() {
				fmt.Printf("%s: %s\n", k, v)
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "Ollama model to use")
	rootCmd.PersistentFlags().StringVar(&ollamaFlag, "ollama-url", "", "Ollama server URL")
	rootCmd.AddCommand(versionCmd)
}

// Run executes the CLI.
func Run() error {
	return rootCmd.Execute()
}

// loadConfig resolves the effective configuration: the config file if
// one exists, defaults otherwise, with command-line flags applied on
// top.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config

	path, err := config.FindConfig(configFlag)
	switch {
	case err == nil:
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	case configFlag != "":
		// An explicit -config that does not exist is an error.
		return nil, err
	default:
		cfg = config.Default()
	}

	if ollamaFlag != "" {
		cfg.Ollama.URL = ollamaFlag
	}
	if modelFlag != "" {
		cfg.Ollama.Model = modelFlag
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	return cfg, nil
}

// setupLogger builds the process logger from config and installs it as
// the slog default. Logs go to stderr so stdout stays clean for
// command output (and for MCP stdio framing).
func setupLogger(cfg *config.Config) (*slog.Logger, error) {
	level := slog.LevelInfo
	if cfg.LogLevel != "" {
		parsed, err := config.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: config.ReplaceLogLevelNames,
	}))
	slog.SetDefault(logger)
	return logger, nil
}

func newLLMClient(cfg *config.Config, logger *slog.Logger) *llm.OllamaClient {
	return llm.NewOllamaClient(cfg.Ollama.URL,
		llm.WithTemperature(cfg.Ollama.Temperature),
		llm.WithOllamaLogger(logger.With("component", "ollama")),
	)
}

// ensureDataDir creates the data directory (and any parents) so the
// SQLite stores can open their files.
func ensureDataDir(cfg *config.Config) error {
	for _, dir := range []string{cfg.DataDir, filepath.Dir(cfg.Finance.DBPath), filepath.Dir(cfg.Company.DBPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	return nil
}
