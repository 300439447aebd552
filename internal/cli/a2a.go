package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkoh12/agenticai/internal/a2a"
)

var (
	a2aCmd = &cobra.Command{
		Use:   "a2a",
		Short: "Agent-to-agent conversation demos",
	}

	a2aDuetCmd = &cobra.Command{
		Use:   "duet",
		Short: "Researcher and writer collaborate on an article",
		RunE:  runDuet,
	}

	a2aGroupCmd = &cobra.Command{
		Use:   "group",
		Short: "Researcher, writer, and critic collaborate in a group chat",
		RunE:  runGroup,
	}

	a2aNegotiateCmd = &cobra.Command{
		Use:   "negotiate",
		Short: "Buyer and seller negotiate a laptop price",
		RunE:  runNegotiate,
	}
)

func init() {
	a2aCmd.AddCommand(a2aDuetCmd, a2aGroupCmd, a2aNegotiateCmd)
	rootCmd.AddCommand(a2aCmd)
}

var (
	researcherAgent = a2a.Agent{
		Name: "researcher",
		SystemPrompt: "You are a research specialist. Your job is to:\n" +
			"1. Research topics thoroughly\n" +
			"2. Provide factual information\n" +
			"3. Ask clarifying questions when needed\n" +
			"4. Collaborate with writers to create content\n\n" +
			"Keep responses concise but informative.",
	}

	writerAgent = a2a.Agent{
		Name: "writer",
		SystemPrompt: "You are a content writer. Your job is to:\n" +
			"1. Take research and turn it into engaging content\n" +
			"2. Ask researchers for specific information you need\n" +
			"3. Create well-structured, readable content\n" +
			"4. Collaborate to produce the best final product\n\n" +
			"Keep responses concise but creative.",
	}

	criticAgent = a2a.Agent{
		Name:         "critic",
		SystemPrompt: "You are a content critic. Review and suggest improvements to written content.",
	}

	buyerAgent = a2a.Agent{
		Name: "buyer",
		SystemPrompt: "You are a buyer trying to get the best price for a laptop.\n" +
			"- Your budget is $1000 maximum\n" +
			"- You want good performance for the price\n" +
			"- Negotiate firmly but respectfully\n" +
			"- Try to get additional perks (warranty, accessories)",
	}

	sellerAgent = a2a.Agent{
		Name: "seller",
		SystemPrompt: "You are a laptop seller trying to make a good sale.\n" +
			"- Your laptop normally costs $1200\n" +
			"- Your minimum acceptable price is $950\n" +
			"- You can offer some perks to close the deal\n" +
			"- Be persuasive but fair",
	}
)

func runDuet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	duet := &a2a.Duet{
		Client:    newLLMClient(cfg, logger),
		Model:     cfg.Ollama.Model,
		A:         researcherAgent,
		B:         writerAgent,
		Terminate: a2a.TerminateMarker,
		Observer:  printTurn,
	}

	opening := "I need help creating content about artificial intelligence. " +
		"Researcher, please gather key information about AI, then work with the writer " +
		"to create a brief article. When you're done, end with 'TERMINATE'."
	_, err = duet.Run(cmd.Context(), opening)
	return err
}

func runGroup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	group := &a2a.GroupChat{
		Client:    newLLMClient(cfg, logger),
		Model:     cfg.Ollama.Model,
		Agents:    []a2a.Agent{researcherAgent, writerAgent, criticAgent},
		Terminate: a2a.TerminateMarker,
		Observer:  printTurn,
	}

	task := "Create a short article about machine learning.\n" +
		"Researcher: gather information\n" +
		"Writer: create the article\n" +
		"Critic: review and suggest improvements\n" +
		"Collaborate until you have a good final product. End with 'TERMINATE'."
	_, err = group.Run(cmd.Context(), task)
	return err
}

func runNegotiate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	duet := a2a.NewNegotiation(newLLMClient(cfg, logger), cfg.Ollama.Model, buyerAgent, sellerAgent)
	duet.Observer = printTurn

	opening := "You want to buy a laptop. Start negotiating with the seller. " +
		"Try to reach a mutually acceptable deal. When you reach agreement or decide " +
		"no deal is possible, end with 'TERMINATE'."
	_, err = duet.Run(cmd.Context(), opening)
	return err
}

func printTurn(t a2a.Turn) {
	fmt.Printf("[%d] %s:\n%s\n\n", t.Round, t.Agent, t.Content)
}
