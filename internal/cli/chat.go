package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkoh12/agenticai/internal/agent"
	"github.com/dkoh12/agenticai/internal/config"
	"github.com/dkoh12/agenticai/internal/events"
	"github.com/dkoh12/agenticai/internal/finance"
	"github.com/dkoh12/agenticai/internal/mcp"
	"github.com/dkoh12/agenticai/internal/memory"
	"github.com/dkoh12/agenticai/internal/tools"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive finance assistant",
	Long: `Start an interactive chat session. Finance phrases ("I spent $25 on
lunch", "show me a summary") are handled by fast keyword routing
against the local store; everything else goes to the model with the
full tool catalog, including any configured MCP servers.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
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

	ctx := cmd.Context()
	client := newLLMClient(cfg, logger)
	bus := events.New()

	store, err := finance.Open(cfg.Finance.DBPath)
	if err != nil {
		return fmt.Errorf("open finance store: %w", err)
	}
	defer store.Close()

	mem, err := memory.NewSQLiteStore(filepath.Join(cfg.DataDir, "memory.db"), 50)
	if err != nil {
		return fmt.Errorf("open memory store: %w", err)
	}
	defer mem.Close()

	registry := tools.NewRegistry()
	tools.RegisterBuiltins(registry)

	// The finance tools come in over MCP: the chat session spawns its
	// own binary as a stdio server and bridges the tools, which is the
	// same path any external MCP host would use. If the subprocess
	// cannot be started, register the tools in-process instead.
	servers := cfg.MCPServers
	if self, err := selfFinanceServer(); err == nil {
		servers = append([]config.MCPServerConfig{self}, servers...)
	} else {
		logger.Warn("cannot spawn finance mcp server, using in-process tools", "error", err)
		finance.RegisterTools(registry, store, bus)
	}

	clients := attachMCPServers(ctx, servers, registry, logger)
	defer func() {
		for _, c := range clients {
			c.Close()
		}
	}()

	router := agent.NewFinanceRouter(store, logger, bus)
	loop := agent.NewLoop(logger, mem, client, registry, cfg.Ollama.Model,
		agent.WithEventBus(bus))

	fmt.Println("Finance assistant ready. Type 'quit' to exit.")
	fmt.Printf("Tools available: %s\n\n", strings.Join(registry.Names(), ", "))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			break
		}

		if reply, ok := router.Route(input); ok {
			fmt.Println(reply)
			fmt.Println()
			continue
		}

		resp, err := loop.Run(ctx, &agent.Request{
			Messages:       []memory.Message{{Role: "user", Content: input}},
			ConversationID: "chat",
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(resp.Content)
		fmt.Println()
	}
	return scanner.Err()
}

// selfFinanceServer describes an MCP server config that runs this
// same binary with "mcp finance".
func selfFinanceServer() (config.MCPServerConfig, error) {
	exe, err := os.Executable()
	if err != nil {
		return config.MCPServerConfig{}, err
	}
	sc := config.MCPServerConfig{
		Name:    "finance",
		Command: exe,
		Args:    []string{"mcp", "finance"},
	}
	if configFlag != "" {
		sc.Args = append(sc.Args, "--config", configFlag)
	}
	return sc, nil
}

// attachMCPServers connects every given MCP server and bridges its
// tools into the registry. Failures are logged and skipped so a dead
// server does not take down the chat session.
func attachMCPServers(ctx context.Context, servers []config.MCPServerConfig, registry *tools.Registry, logger *slog.Logger) []*mcp.Client {
	var clients []*mcp.Client
	for _, sc := range servers {
		client, err := connectMCPServer(ctx, sc, logger)
		if err != nil {
			logger.Warn("mcp server unavailable", "server", sc.Name, "error", err)
			continue
		}
		n, err := mcp.BridgeTools(ctx, client, sc.Name, registry, sc.Include, sc.Exclude, logger)
		if err != nil {
			logger.Warn("mcp tool bridge failed", "server", sc.Name, "error", err)
			client.Close()
			continue
		}
		logger.Info("mcp server attached", "server", sc.Name, "tools", n)
		clients = append(clients, client)
	}
	return clients
}

func connectMCPServer(ctx context.Context, sc config.MCPServerConfig, logger *slog.Logger) (*mcp.Client, error) {
	var transport mcp.Transport
	switch {
	case sc.Command != "":
		transport = mcp.NewStdioTransport(mcp.StdioConfig{
			Command: sc.Command,
			Args:    sc.Args,
			Env:     sc.Env,
			Logger:  logger,
		})
	case sc.URL != "":
		transport = mcp.NewHTTPTransport(mcp.HTTPConfig{
			URL:     sc.URL,
			Headers: sc.Headers,
			Logger:  logger,
		})
	default:
		return nil, fmt.Errorf("server %q has neither command nor url", sc.Name)
	}

	client := mcp.NewClient(sc.Name, transport, logger)
	if err := client.Initialize(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
