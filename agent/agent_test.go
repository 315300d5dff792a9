package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shellsage/shellsage/config"
	"github.com/shellsage/shellsage/executor"
	"github.com/shellsage/shellsage/expert"
	"github.com/shellsage/shellsage/llm"
	"github.com/shellsage/shellsage/parser"
	"github.com/shellsage/shellsage/session"
)

// harness scripts UI interactions and records agent events.
type harness struct {
	agent *Agent

	selections []string
	modified   string

	chunks      strings.Builder
	candidates  []parser.Candidate
	executed    []string
	results     []executor.Result
	warnings    []string
	interrupted []string
}

func newHarness(t *testing.T, responses []string) *harness {
	t.Helper()
	h := &harness{}

	sess := session.New(expert.DefaultRegistry(), expert.Linux, expert.Quick)
	exec := executor.New(10*time.Second, "")
	h.agent = New(config.Default(), sess, &llm.MockClient{Responses: responses}, exec, "test-model")

	h.agent.Callbacks = Callbacks{
		OnChunk: func(text string) { h.chunks.WriteString(text) },
		OnCandidates: func(c []parser.Candidate) { h.candidates = c },
		ReadSelection: func() (string, error) {
			if len(h.selections) == 0 {
				return "0", nil
			}
			s := h.selections[0]
			h.selections = h.selections[1:]
			return s, nil
		},
		ReadCommand:      func(initial string) (string, error) { return h.modified, nil },
		OnExecutionStart: func(cmd string) { h.executed = append(h.executed, cmd) },
		OnResult:         func(r executor.Result) { h.results = append(h.results, r) },
		OnWarning:        func(msg string) { h.warnings = append(h.warnings, msg) },
		OnInterrupted:    func(partial string) { h.interrupted = append(h.interrupted, partial) },
	}
	return h
}

func TestProcessTurnNoCandidates(t *testing.T) {
	h := newHarness(t, []string{"Nothing to run here."})
	if err := h.agent.ProcessTurn(context.Background(), "hello"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}

	if h.chunks.String() != "Nothing to run here." {
		t.Errorf("streamed %q", h.chunks.String())
	}
	if len(h.candidates) != 0 || len(h.executed) != 0 {
		t.Errorf("unexpected extraction: %+v, %+v", h.candidates, h.executed)
	}
	if h.agent.State() != StateAwaitingInput {
		t.Errorf("state = %v, want awaiting_input", h.agent.State())
	}

	msgs := h.agent.Session.Messages()
	last := msgs[len(msgs)-1]
	if last.Role != "assistant" || last.Interrupted {
		t.Errorf("last message = %+v", last)
	}
}

func TestProcessTurnExecutesApprovedCommand(t *testing.T) {
	h := newHarness(t, []string{"Run this:\n\n$ echo approved"})
	h.selections = []string{"1"}

	if err := h.agent.ProcessTurn(context.Background(), "how do I greet?"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}

	if len(h.candidates) != 1 || h.candidates[0].Text != "echo approved" {
		t.Fatalf("candidates = %+v", h.candidates)
	}
	if len(h.executed) != 1 || h.executed[0] != "echo approved" {
		t.Fatalf("executed = %+v", h.executed)
	}
	if len(h.results) != 1 || strings.TrimSpace(h.results[0].Stdout) != "approved" {
		t.Fatalf("results = %+v", h.results)
	}
	if h.agent.State() != StateAwaitingFollowup {
		t.Errorf("state = %v, want awaiting_followup", h.agent.State())
	}

	// The observation lands in history as a tool turn.
	msgs := h.agent.Session.Messages()
	last := msgs[len(msgs)-1]
	if last.Role != "tool" || !strings.Contains(last.Content, "exit code: 0") {
		t.Errorf("observation = %+v", last)
	}
}

func TestProcessTurnSkip(t *testing.T) {
	h := newHarness(t, []string{"$ rm -rf /tmp/junk"})
	h.selections = []string{"0"}

	if err := h.agent.ProcessTurn(context.Background(), "clean up"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if len(h.executed) != 0 {
		t.Errorf("skip still executed: %+v", h.executed)
	}
	if h.agent.State() != StateAwaitingInput {
		t.Errorf("state = %v", h.agent.State())
	}
}

func TestProcessTurnInvalidSelectionReprompts(t *testing.T) {
	h := newHarness(t, []string{"$ echo ok"})
	h.selections = []string{"7", "abc", "1"}

	if err := h.agent.ProcessTurn(context.Background(), "go"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if len(h.warnings) != 2 {
		t.Errorf("warnings = %+v, want 2 re-prompts", h.warnings)
	}
	if len(h.executed) != 1 {
		t.Errorf("executed = %+v", h.executed)
	}
}

func TestProcessTurnModify(t *testing.T) {
	h := newHarness(t, []string{"$ echo original"})
	h.selections = []string{"m"}
	h.modified = "echo changed"

	if err := h.agent.ProcessTurn(context.Background(), "go"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if len(h.executed) != 1 || h.executed[0] != "echo changed" {
		t.Errorf("executed = %+v, want the modified command", h.executed)
	}
}

func TestProcessTurnModifyEmptyAborts(t *testing.T) {
	h := newHarness(t, []string{"$ echo original"})
	h.selections = []string{"m"}
	h.modified = "   "

	if err := h.agent.ProcessTurn(context.Background(), "go"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if len(h.executed) != 0 {
		t.Errorf("blank replacement still executed: %+v", h.executed)
	}
	if h.agent.State() != StateAwaitingInput {
		t.Errorf("state = %v", h.agent.State())
	}
}

func TestProcessTurnNonLinuxNeverExtracts(t *testing.T) {
	h := newHarness(t, []string{"$ echo hi\ncat x | grep y"})
	h.agent.SwitchExpert(expert.Python)

	if err := h.agent.ProcessTurn(context.Background(), "query"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if len(h.candidates) != 0 || len(h.executed) != 0 {
		t.Errorf("extraction ran outside Linux mode: %+v", h.candidates)
	}
}

func TestProcessTurnInterruptedKeepsPartial(t *testing.T) {
	h := newHarness(t, []string{"some long answer that will be cut off"})

	ctx, cancel := context.WithCancel(context.Background())
	h.agent.Callbacks.OnChunk = func(text string) {
		h.chunks.WriteString(text)
		cancel() // interrupt after the first chunk
	}

	if err := h.agent.ProcessTurn(ctx, "q"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}

	msgs := h.agent.Session.Messages()
	last := msgs[len(msgs)-1]
	if last.Role != "assistant" || !last.Interrupted {
		t.Fatalf("interrupted turn not recorded: %+v", last)
	}
	if last.Content == "" {
		t.Error("partial text lost")
	}
	if len(h.interrupted) != 1 {
		t.Errorf("OnInterrupted calls = %d", len(h.interrupted))
	}
	if h.agent.Session.LastCandidates != nil {
		t.Error("candidates extracted from an interrupted response")
	}
	if h.agent.State() != StateAwaitingInput {
		t.Errorf("state = %v", h.agent.State())
	}
}

func TestProcessTurnAutoContinue(t *testing.T) {
	h := newHarness(t, []string{"$ echo hi", "The command printed hi."})
	h.selections = []string{"1"}
	h.agent.AutoContinue = true

	if err := h.agent.ProcessTurn(context.Background(), "go"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}

	if !strings.Contains(h.chunks.String(), "The command printed hi.") {
		t.Errorf("follow-up not streamed: %q", h.chunks.String())
	}
	if h.agent.State() != StateAwaitingInput {
		t.Errorf("state = %v", h.agent.State())
	}

	msgs := h.agent.Session.Messages()
	last := msgs[len(msgs)-1]
	if last.Role != "assistant" || !strings.Contains(last.Content, "printed hi") {
		t.Errorf("follow-up not in history: %+v", last)
	}
}

func TestRunDirect(t *testing.T) {
	h := newHarness(t, nil)
	res := h.agent.RunDirect(context.Background(), "echo direct")
	if strings.TrimSpace(res.Stdout) != "direct" {
		t.Errorf("stdout = %q", res.Stdout)
	}
	msgs := h.agent.Session.Messages()
	if len(msgs) == 0 || msgs[len(msgs)-1].Role != "tool" {
		t.Errorf("direct run not recorded: %+v", msgs)
	}
}

func TestStateStrings(t *testing.T) {
	cases := map[State]string{
		StateAwaitingInput:     "awaiting_input",
		StateStreaming:         "streaming",
		StateAwaitingSelection: "awaiting_selection",
		StateExecuting:         "executing",
		StateAwaitingFollowup:  "awaiting_followup",
	}
	for s, want := range cases {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
