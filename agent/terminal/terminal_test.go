package terminal

import (
	"strings"
	"testing"
	"time"

	"github.com/shellsage/shellsage/executor"
	"github.com/shellsage/shellsage/parser"
)

func TestRenderCandidates(t *testing.T) {
	out := renderCandidates([]parser.Candidate{
		{Text: "ls -la", Confidence: 0.8, Rationale: "prompt-marked"},
		{Text: "df -h", Confidence: 0.4, Rationale: `known command "df"`},
	})

	for _, want := range []string{"1.", "ls -la", "80%", "2.", "df -h", "40%", "0. skip", "m. modify"} {
		if !strings.Contains(out, want) {
			t.Errorf("menu missing %q:\n%s", want, out)
		}
	}
}

func TestRenderResult(t *testing.T) {
	out := renderResult(executor.Result{
		Command:  "echo hi",
		ExitCode: 0,
		Stdout:   "hi\n",
		Duration: 12 * time.Millisecond,
	})
	if !strings.Contains(out, "exit 0") || !strings.Contains(out, "hi") {
		t.Errorf("result rendering:\n%s", out)
	}
}

func TestRenderResultFailure(t *testing.T) {
	out := renderResult(executor.Result{
		Command:  "false",
		ExitCode: 1,
		Stderr:   "boom\n",
		Duration: time.Millisecond,
	})
	if !strings.Contains(out, "exit 1") || !strings.Contains(out, "boom") {
		t.Errorf("failure rendering:\n%s", out)
	}
}

func TestRenderHelpMentionsCommands(t *testing.T) {
	out := renderHelp()
	for _, want := range []string{"!quit", "!expert", "!mode", "!multiline"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q", want)
		}
	}
}
