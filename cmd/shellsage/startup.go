package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shellsage/shellsage/config"
	"github.com/shellsage/shellsage/expert"
)

var stdin = bufio.NewReader(os.Stdin)

func readLine(prompt string) string {
	fmt.Print(prompt)
	line, err := stdin.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

// chooseServer picks a server and model, prompting only when the configuration
// leaves a real choice.
func chooseServer(cfg *config.Config) (*config.Server, string, error) {
	server, err := cfg.DefaultServer()
	if err != nil {
		return nil, "", err
	}

	if len(cfg.Servers) > 1 {
		fmt.Println("Available servers:")
		for i, s := range cfg.Servers {
			fmt.Printf("  %d. %s (%s)\n", i+1, s.Name, s.URL)
		}
		if n, err := strconv.Atoi(readLine(fmt.Sprintf("Server [1-%d, default 1]: ", len(cfg.Servers)))); err == nil && n >= 1 && n <= len(cfg.Servers) {
			server = &cfg.Servers[n-1]
		}
		if server.URL == "" {
			return nil, "", fmt.Errorf("server %q has no URL configured", server.Name)
		}
	}

	model := ""
	switch len(server.Models) {
	case 0:
		model = readLine("Model name: ")
		if model == "" {
			return nil, "", fmt.Errorf("no model configured for server %q", server.Name)
		}
	case 1:
		model = server.Models[0]
	default:
		fmt.Println("Available models:")
		for i, m := range server.Models {
			fmt.Printf("  %d. %s\n", i+1, m)
		}
		model = server.Models[0]
		if n, err := strconv.Atoi(readLine(fmt.Sprintf("Model [1-%d, default 1]: ", len(server.Models)))); err == nil && n >= 1 && n <= len(server.Models) {
			model = server.Models[n-1]
		}
	}

	return server, model, nil
}

// chooseExpert resolves the expert mode from the flag, or interactively.
func chooseExpert(registry expert.Registry, flagValue string) (expert.Mode, error) {
	if flagValue != "" {
		return registry.ParseMode(flagValue)
	}

	modes := registry.Modes()
	fmt.Println("Expert modes:")
	for i, m := range modes {
		p, _ := registry.Profile(m)
		fmt.Printf("  %d. %s - %s\n", i+1, p.Name, p.Description)
	}
	if n, err := strconv.Atoi(readLine(fmt.Sprintf("Expert [1-%d, default 1]: ", len(modes)))); err == nil && n >= 1 && n <= len(modes) {
		return modes[n-1], nil
	}
	return modes[0], nil
}

// chooseResponse resolves the response mode from the flag, or interactively.
func chooseResponse(flagValue string) (expert.ResponseMode, error) {
	if flagValue != "" {
		return expert.ParseResponseMode(flagValue)
	}

	answer := readLine("Response mode [quick/full, default quick]: ")
	if answer == "" {
		return expert.Quick, nil
	}
	return expert.ParseResponseMode(answer)
}
