// Agenticai is a collection of local-first agent demos: agent-to-agent
// conversations, sequential crews, graph workflows, MCP servers, and a
// personal finance assistant with a web dashboard. Everything runs
// against a local Ollama server.
//
// Usage:
//
//	agenticai chat               Interactive finance assistant
//	agenticai web                Finance dashboard web server
//	agenticai mcp finance        Serve the finance store over MCP stdio
//	agenticai mcp company        Serve the company data over MCP stdio
//	agenticai a2a duet           Two-agent collaboration demo
//	agenticai crew [topic]       Research/write/review crew demo
//	agenticai workflow           Analyze-then-recommend workflow demo
//	agenticai pipeline           Classify/specialist/review pipeline demo
//	agenticai chain [topic...]   Prompt-chain explanation demo
//	agenticai seed               Create demo data
//	agenticai models             List Ollama models
package main

import (
	"fmt"
	"os"

	"github.com/dkoh12/agenticai/internal/cli"
)

func main() {
	if err := cli.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}
