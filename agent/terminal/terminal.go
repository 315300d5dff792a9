// Package terminal is the interactive frontend: a liner-based REPL that wires
// user input, streamed model output, the candidate menu and command results to
// the agent loop.
package terminal

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/peterh/liner"

	"github.com/shellsage/shellsage/agent"
	"github.com/shellsage/shellsage/executor"
	"github.com/shellsage/shellsage/expert"
	"github.com/shellsage/shellsage/input"
	"github.com/shellsage/shellsage/parser"
)

// Terminal runs the interactive session.
type Terminal struct {
	Agent *agent.Agent
	Files *input.Handler

	line        *liner.State
	historyFile string
	start       time.Time
}

// New creates a terminal bound to an agent. History is kept under
// ~/.shellsage/history.
func New(a *agent.Agent, files *input.Handler) *Terminal {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		dir := filepath.Join(home, ".shellsage")
		if err := os.MkdirAll(dir, 0o755); err == nil {
			historyFile = filepath.Join(dir, "history")
		}
	}

	t := &Terminal{
		Agent:       a,
		Files:       files,
		line:        line,
		historyFile: historyFile,
		start:       time.Now(),
	}
	t.loadHistory()
	t.bindCallbacks()
	return t
}

func (t *Terminal) loadHistory() {
	if t.historyFile == "" {
		return
	}
	if f, err := os.Open(t.historyFile); err == nil {
		t.line.ReadHistory(f)
		f.Close()
	}
}

func (t *Terminal) saveHistory() {
	if t.historyFile == "" {
		return
	}
	f, err := os.OpenFile(t.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	t.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (t *Terminal) Close() {
	t.saveHistory()
	t.line.Close()
}

// bindCallbacks connects agent events to the screen.
func (t *Terminal) bindCallbacks() {
	t.Agent.Callbacks = agent.Callbacks{
		OnChunk: func(text string) {
			fmt.Print(text)
		},
		OnCandidates: func(candidates []parser.Candidate) {
			fmt.Print(renderCandidates(candidates))
		},
		ReadSelection: func() (string, error) {
			s, err := t.line.Prompt(promptStyle.Render("run? "))
			if err != nil {
				// Ctrl+C or EOF at the gate means skip.
				return "0", nil
			}
			return s, nil
		},
		ReadCommand: func(initial string) (string, error) {
			s, err := t.line.PromptWithSuggestion(promptStyle.Render("command: "), initial, len(initial))
			if err != nil {
				return "", nil
			}
			return s, nil
		},
		OnExecutionStart: func(command string) {
			fmt.Printf("\n%s %s\n", infoStyle.Render("[Running]"), commandStyle.Render(command))
		},
		OnResult: func(result executor.Result) {
			fmt.Print(renderResult(result))
		},
		OnWarning: func(msg string) {
			fmt.Println(warnStyle.Render("[!] " + msg))
		},
		OnInterrupted: func(partial string) {
			fmt.Println("\n" + warnStyle.Render("[Interrupted]"))
		},
	}
}

// Run is the REPL. initial, when non-empty, is processed as the first message
// before the prompt is shown.
func (t *Terminal) Run(initial string) error {
	defer t.Close()
	t.printWelcome()

	if strings.TrimSpace(initial) != "" {
		t.processTurn(initial)
	}

	for {
		raw, err := t.line.Prompt(promptStyle.Render("you> "))
		if err == liner.ErrPromptAborted {
			fmt.Println(infoStyle.Render("(use !quit to exit)"))
			continue
		}
		if err != nil {
			// Ctrl+D or a closed terminal.
			fmt.Println()
			return nil
		}

		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		t.line.AppendHistory(text)

		if d, ok := input.Delimiter(text); ok {
			text = t.readMultiline(d)
			if strings.TrimSpace(text) == "" {
				continue
			}
		}

		if strings.HasPrefix(text, "!") {
			if quit := t.handleBang(text); quit {
				return nil
			}
			continue
		}

		t.processTurn(text)
	}
}

// processTurn ingests @file references, then runs one agent turn with a
// SIGINT-cancellable context so Ctrl+C interrupts the stream instead of
// killing the process.
func (t *Terminal) processTurn(text string) {
	if t.Files != nil {
		processed, loads := t.Files.Ingest(text)
		for _, l := range loads {
			if l.Err != nil {
				fmt.Println(warnStyle.Render(fmt.Sprintf("[!] %v", l.Err)))
				for _, s := range l.Suggestions {
					fmt.Println(infoStyle.Render("    did you mean @" + s + "?"))
				}
				continue
			}
			fmt.Println(infoStyle.Render(fmt.Sprintf("[+] loaded %s (%d chars)", l.Path, l.Chars)))
		}
		text = processed
	}

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sig:
			cancel()
		case <-ctx.Done():
		}
	}()
	defer func() {
		signal.Stop(sig)
		cancel()
	}()

	fmt.Println()
	if err := t.Agent.ProcessTurn(ctx, text); err != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("[Error] %v", err)))
	}
	fmt.Println()
}

// readMultiline collects lines until the closing delimiter (or EOF).
func (t *Terminal) readMultiline(delim string) string {
	fmt.Println(infoStyle.Render(fmt.Sprintf("multiline mode, end with %s", delim)))
	var lines []string
	for {
		raw, err := t.line.Prompt(infoStyle.Render("... "))
		if err != nil {
			break
		}
		if strings.TrimSpace(raw) == delim {
			break
		}
		lines = append(lines, raw)
	}
	return strings.Join(lines, "\n")
}

// handleBang processes ! commands. It reports whether the session should end.
func (t *Terminal) handleBang(text string) bool {
	fields := strings.Fields(text)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "!quit", "!exit", "!q":
		fmt.Println(infoStyle.Render("Goodbye!"))
		return true

	case "!help", "!h":
		fmt.Print(renderHelp())

	case "!clear":
		t.Agent.Session.Clear()
		fmt.Println(commandStyle.Render("[Conversation cleared]"))

	case "!status":
		t.printStatus()

	case "!mode":
		if len(args) == 0 {
			fmt.Println(infoStyle.Render("response mode: " + string(t.Agent.Session.Response)))
			break
		}
		rm, err := expert.ParseResponseMode(args[0])
		if err != nil {
			fmt.Println(warnStyle.Render("[!] " + err.Error()))
			break
		}
		t.Agent.SwitchResponse(rm)
		fmt.Println(commandStyle.Render("[Response mode: " + string(rm) + "]"))

	case "!expert":
		if len(args) == 0 {
			fmt.Println(infoStyle.Render("expert: " + string(t.Agent.Session.Expert)))
			break
		}
		m, err := expert.DefaultRegistry().ParseMode(args[0])
		if err != nil {
			fmt.Println(warnStyle.Render("[!] " + err.Error()))
			break
		}
		t.Agent.SwitchExpert(m)
		fmt.Println(commandStyle.Render("[Expert: " + t.Agent.Session.Profile().Name + ", history cleared]"))

	case "!multiline":
		text := t.readMultiline(`"""`)
		if strings.TrimSpace(text) != "" {
			t.processTurn(text)
		}

	default:
		// Anything else after ! is a direct shell command.
		direct := strings.TrimSpace(strings.TrimPrefix(text, "!"))
		if direct == "" {
			break
		}
		t.Agent.RunDirect(context.Background(), direct)
	}
	return false
}

func (t *Terminal) printWelcome() {
	fmt.Println()
	fmt.Println(bannerStyle.Render("shellsage"))
	fmt.Println(rule(30))
	fmt.Printf("%s %s\n", infoStyle.Render("Model:"), commandStyle.Render(t.Agent.Model))
	fmt.Printf("%s %s\n", infoStyle.Render("Expert:"), commandStyle.Render(t.Agent.Session.Profile().Name))
	fmt.Printf("%s %s\n", infoStyle.Render("Response:"), commandStyle.Render(string(t.Agent.Session.Response)))
	fmt.Println()
	fmt.Println(infoStyle.Render("Type a message, or !help for commands."))
	fmt.Println()
}

func (t *Terminal) printStatus() {
	fmt.Println()
	fmt.Println(headerStyle.Render("Session status"))
	fmt.Println(rule(20))
	fmt.Printf("  %s %s\n", infoStyle.Render("Model:"), commandStyle.Render(t.Agent.Model))
	fmt.Printf("  %s %s\n", infoStyle.Render("Expert:"), commandStyle.Render(t.Agent.Session.Profile().Name))
	fmt.Printf("  %s %s\n", infoStyle.Render("Response:"), commandStyle.Render(string(t.Agent.Session.Response)))
	fmt.Printf("  %s %d messages\n", infoStyle.Render("History:"), t.Agent.Session.Len())
	fmt.Printf("  %s %s\n", infoStyle.Render("Uptime:"), time.Since(t.start).Round(time.Second))
	fmt.Println()
}
