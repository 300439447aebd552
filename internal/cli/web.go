package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dkoh12/agenticai/internal/company"
	"github.com/dkoh12/agenticai/internal/events"
	"github.com/dkoh12/agenticai/internal/finance"
	"github.com/dkoh12/agenticai/internal/web"
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Run the finance dashboard web server",
	RunE:  runWeb,
}

func init() {
	rootCmd.AddCommand(webCmd)
}

func runWeb(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	if err := ensureDataDir(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := finance.Open(cfg.Finance.DBPath)
	if err != nil {
		return fmt.Errorf("open finance store: %w", err)
	}
	defer store.Close()

	docs, err := company.NewDocStore(cfg.Company.DocsDir)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}

	bus := events.New()
	server := web.NewWebServer(web.Config{
		Store:  store,
		Docs:   docs,
		Bus:    bus,
		Logger: logger.With("component", "web"),
	})

	addr := cfg.ListenAddr()
	logger.Info("starting dashboard", "addr", addr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Serve(ctx, addr)
	})
	g.Go(func() error {
		return logEvents(ctx, bus, logger)
	})
	return g.Wait()
}

// logEvents mirrors bus traffic into the log until the context ends.
func logEvents(ctx context.Context, bus *events.Bus, logger *slog.Logger) error {
	ch := bus.Subscribe(64)
	defer bus.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-ch:
			logger.Debug("event", "kind", e.Kind, "source", e.Source)
		}
	}
}
