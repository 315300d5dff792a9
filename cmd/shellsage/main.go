package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/shellsage/shellsage/agent"
	"github.com/shellsage/shellsage/agent/terminal"
	"github.com/shellsage/shellsage/config"
	"github.com/shellsage/shellsage/executor"
	"github.com/shellsage/shellsage/expert"
	"github.com/shellsage/shellsage/input"
	"github.com/shellsage/shellsage/llm"
	"github.com/shellsage/shellsage/session"
)

func main() {
	urlFlag := flag.String("url", "", "LLM server URL (overrides config)")
	modelFlag := flag.String("model", "", "Model name")
	providerFlag := flag.String("provider", "", "Backend: openai, ollama, anthropic or mock")
	expertFlag := flag.String("expert", "", "Expert mode: linux, python, devops, database or general")
	responseFlag := flag.String("response", "", "Response mode: quick or full")
	autoFlag := flag.Bool("auto-continue", false, "Send command results back to the model automatically")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %+v\n", err)
		os.Exit(1)
	}

	provider := cfg.Provider
	if *providerFlag != "" {
		provider = *providerFlag
	}

	url, model := *urlFlag, *modelFlag
	if url == "" || model == "" {
		server, pickedModel, err := chooseServer(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error selecting server: %+v\n", err)
			os.Exit(1)
		}
		if url == "" {
			url = server.URL
		}
		if model == "" {
			model = pickedModel
		}
	}

	registry := expert.DefaultRegistry()
	mode, err := chooseExpert(registry, *expertFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	response, err := chooseResponse(*responseFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	client, err := llm.ForProvider(provider, url, model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing LLM client: %+v\n", err)
		os.Exit(1)
	}

	sess := session.New(registry, mode, response)
	exec := executor.New(cfg.CommandTimeout(), cfg.Executor.Shell)

	a := agent.New(cfg, sess, client, exec, model)
	a.AutoContinue = cfg.AutoContinue || *autoFlag

	files := input.NewHandler(cfg.Files.Hidden)
	initialPrompt := strings.Join(flag.Args(), " ")

	term := terminal.New(a, files)
	if err := term.Run(initialPrompt); err != nil {
		fmt.Fprintf(os.Stderr, "Session stopped with an error: %+v\n", err)
		os.Exit(1)
	}
}
