package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/shellsage/shellsage/api"
	"github.com/shellsage/shellsage/config"
	"github.com/shellsage/shellsage/llm"
)

func main() {
	urlFlag := flag.String("url", "", "LLM server URL (overrides config)")
	modelFlag := flag.String("model", "", "Model name")
	providerFlag := flag.String("provider", "", "Backend: openai, ollama, anthropic or mock")
	hostFlag := flag.String("host", "", "Listen host (overrides config)")
	portFlag := flag.Int("port", 0, "Listen port (overrides config)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %+v\n", err)
		os.Exit(1)
	}
	if *hostFlag != "" {
		cfg.API.Host = *hostFlag
	}
	if *portFlag > 0 {
		cfg.API.Port = *portFlag
	}

	provider := cfg.Provider
	if *providerFlag != "" {
		provider = *providerFlag
	}

	url, model := *urlFlag, *modelFlag
	if url == "" || model == "" {
		server, err := cfg.DefaultServer()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error selecting server: %+v\n", err)
			os.Exit(1)
		}
		if url == "" {
			url = server.URL
		}
		if model == "" && len(server.Models) > 0 {
			model = server.Models[0]
		}
	}

	client, err := llm.ForProvider(provider, url, model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing LLM client: %+v\n", err)
		os.Exit(1)
	}

	srv := api.NewServer(cfg, client, model)
	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Server stopped: %+v\n", err)
		os.Exit(1)
	}
}
