package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkoh12/agenticai/internal/chain"
	"github.com/dkoh12/agenticai/internal/crew"
	"github.com/dkoh12/agenticai/internal/workflow"
)

var (
	chainCmd = &cobra.Command{
		Use:   "chain [topic...]",
		Short: "Explain topics with a simple prompt chain",
		RunE:  runChain,
	}

	workflowCmd = &cobra.Command{
		Use:   "workflow [problem...]",
		Short: "Run the analyze-then-recommend workflow",
		RunE:  runWorkflow,
	}

	pipelineCmd = &cobra.Command{
		Use:   "pipeline [task...]",
		Short: "Route tasks through the classify/specialist/review pipeline",
		RunE:  runPipeline,
	}

	crewCmd = &cobra.Command{
		Use:   "crew [topic]",
		Short: "Run the research, write, review content crew",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCrew,
	}

	debateCmd = &cobra.Command{
		Use:   "debate",
		Short: "Run the remote-vs-office work debate crew",
		RunE:  runDebate,
	}
)

// Demo inputs used when no arguments are given.
var (
	demoProblems = []string{
		"I want to start learning machine learning but don't know where to begin.",
		"My team is having communication issues during remote work.",
		"I need to choose between Python and JavaScript for my next project.",
	}

	demoTasks = []string{
		"Write a short story about a robot learning to paint",
		"Explain how to implement a binary search algorithm in Python",
		"Analyze the pros and cons of remote work vs office work",
		"What's the weather like today?",
	}
)

func init() {
	rootCmd.AddCommand(chainCmd, workflowCmd, pipelineCmd, crewCmd, debateCmd)
}

func runChain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := setupLogger(cfg); err != nil {
		return err
	}

	explainer, err := chain.New(cfg.Ollama.URL, cfg.Ollama.Model)
	if err != nil {
		return err
	}

	topics := args
	if len(topics) == 0 {
		topics = chain.Topics
	}

	for _, topic := range topics {
		printHeading("Topic: " + topic)
		answer, err := explainer.Explain(cmd.Context(), topic)
		if err != nil {
			return err
		}
		fmt.Println(answer)
		fmt.Println()
	}
	return nil
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	client := newLLMClient(cfg, logger)
	app, err := workflow.NewAnalysisWorkflow(client, cfg.Ollama.Model)
	if err != nil {
		return err
	}

	problems := args
	if len(problems) == 0 {
		problems = demoProblems
	}

	for _, problem := range problems {
		printHeading("Problem: " + problem)
		state, err := app.Invoke(cmd.Context(), workflow.State{"input": problem})
		if err != nil {
			return err
		}
		fmt.Printf("Analysis:\n%s\n\n", state["analysis"])
		fmt.Printf("Recommendations:\n%s\n\n", state["recommendation"])
	}
	return nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	client := newLLMClient(cfg, logger)
	app, err := workflow.NewPipelineWorkflow(client, cfg.Ollama.Model)
	if err != nil {
		return err
	}

	tasks := args
	if len(tasks) == 0 {
		tasks = demoTasks
	}

	for _, task := range tasks {
		printHeading("Task: " + task)
		state, err := app.Invoke(cmd.Context(), workflow.State{"input": task})
		if err != nil {
			return err
		}
		fmt.Printf("Routed to: %s (revisions: %v)\n\n", state["task_type"], state["iterations"])
		fmt.Printf("%s\n\n", state["final_output"])
	}
	return nil
}

func runCrew(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	topic := "the future of AI in everyday life"
	if len(args) == 1 {
		topic = args[0]
	}

	client := newLLMClient(cfg, logger)
	c := crew.NewContentCrew(client, cfg.Ollama.Model, topic)
	return runCrewWithOutput(cmd, c)
}

func runDebate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	client := newLLMClient(cfg, logger)
	c := crew.NewDebateCrew(client, cfg.Ollama.Model)
	return runCrewWithOutput(cmd, c)
}

func runCrewWithOutput(cmd *cobra.Command, c *crew.Crew) error {
	c.Observer = func(tr crew.TaskResult) {
		printHeading(tr.Agent)
		fmt.Println(tr.Output)
		fmt.Println()
	}

	result, err := c.Kickoff(cmd.Context())
	if err != nil {
		return err
	}
	printHeading("Final result")
	fmt.Println(result.Final)
	return nil
}

func printHeading(s string) {
	fmt.Println(s)
	fmt.Println(strings.Repeat("=", min(len(s), 60)))
}
