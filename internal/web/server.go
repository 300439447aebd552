// Package web provides the finance dashboard: HTML pages over the
// finance store, JSON APIs for charts and alerts, rendered company
// documents, and a WebSocket stream of the event bus.
package web

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/yuin/goldmark"

	"github.com/dkoh12/agenticai/internal/company"
	"github.com/dkoh12/agenticai/internal/events"
	"github.com/dkoh12/agenticai/internal/finance"
)

// Config carries the dependencies for a WebServer.
type Config struct {
	Store  *finance.Store
	Docs   *company.DocStore
	Bus    *events.Bus
	Logger *slog.Logger
}

// WebServer serves the finance dashboard.
type WebServer struct {
	store     *finance.Store
	docs      *company.DocStore
	bus       *events.Bus
	logger    *slog.Logger
	templates map[string]*template.Template
	markdown  goldmark.Markdown
	now       func() time.Time
}

// NewWebServer creates a WebServer from the given config.
func NewWebServer(cfg Config) *WebServer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WebServer{
		store:     cfg.Store,
		docs:      cfg.Docs,
		bus:       cfg.Bus,
		logger:    logger,
		templates: loadTemplates(),
		markdown:  goldmark.New(),
		now:       time.Now,
	}
}

// RegisterRoutes adds all dashboard routes to the mux.
func (s *WebServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", s.handleDashboard)
	mux.HandleFunc("/transactions", s.handleTransactions)
	mux.HandleFunc("/budgets", s.handleBudgets)
	mux.HandleFunc("/reports", s.handleReports)

	mux.HandleFunc("/add_transaction", s.handleAddTransaction)
	mux.HandleFunc("/update_budget", s.handleUpdateBudget)

	mux.HandleFunc("/api/summary", s.handleAPISummary)
	mux.HandleFunc("/api/budget_alerts", s.handleAPIBudgetAlerts)
	mux.HandleFunc("/api/spending_chart", s.handleAPISpendingChart)

	mux.HandleFunc("/docs", s.handleDocs)
	mux.HandleFunc("/docs/", s.handleDoc)

	mux.HandleFunc("/ws", s.handleWS)
}

// Serve runs the server on addr until the context is canceled, then
// shuts down gracefully.
func (s *WebServer) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
