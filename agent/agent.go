// Package agent drives the conversation loop: send the user's message, stream
// the model's answer, extract command candidates, run the approval gate, and
// feed execution results back into the conversation. The agent is UI-agnostic;
// terminals and tests supply Callbacks.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/shellsage/shellsage/config"
	"github.com/shellsage/shellsage/errors"
	"github.com/shellsage/shellsage/executor"
	"github.com/shellsage/shellsage/expert"
	"github.com/shellsage/shellsage/gate"
	"github.com/shellsage/shellsage/llm"
	"github.com/shellsage/shellsage/parser"
	"github.com/shellsage/shellsage/session"
)

// State is the agent's position in the turn cycle.
type State int

const (
	// StateAwaitingInput is the rest state between turns.
	StateAwaitingInput State = iota
	// StateStreaming means a model response is arriving.
	StateStreaming
	// StateAwaitingSelection means candidates are on screen and the gate is
	// waiting for the user.
	StateAwaitingSelection
	// StateExecuting means an approved command is running.
	StateExecuting
	// StateAwaitingFollowup is the window after execution where results are
	// in history and the user decides what happens next.
	StateAwaitingFollowup
)

func (s State) String() string {
	switch s {
	case StateAwaitingInput:
		return "awaiting_input"
	case StateStreaming:
		return "streaming"
	case StateAwaitingSelection:
		return "awaiting_selection"
	case StateExecuting:
		return "executing"
	case StateAwaitingFollowup:
		return "awaiting_followup"
	}
	return "unknown"
}

// Callbacks connect the agent to its user interface. All of them may be nil;
// missing prompts behave like a skip.
type Callbacks struct {
	// OnChunk receives each streamed piece of the assistant response.
	OnChunk func(text string)
	// OnCandidates shows the extracted commands before selection.
	OnCandidates func(candidates []parser.Candidate)
	// ReadSelection asks for a gate decision ("0", "m", or an index).
	ReadSelection func() (string, error)
	// ReadCommand asks for a replacement command on the modify path. The
	// chosen candidate is passed as the starting point.
	ReadCommand func(initial string) (string, error)
	// OnExecutionStart fires just before a command runs.
	OnExecutionStart func(command string)
	// OnResult receives the execution outcome.
	OnResult func(result executor.Result)
	// OnWarning receives recoverable problems (invalid selection, stream
	// errors after partial output).
	OnWarning func(msg string)
	// OnInterrupted fires when a stream was cancelled; partial is what
	// arrived before the cut.
	OnInterrupted func(partial string)
}

// Agent wires one session to one model backend and one executor.
type Agent struct {
	Config   *config.Config
	Session  *session.Session
	Client   llm.Client
	Executor *executor.Executor
	Model    string

	// AutoContinue sends execution results back to the model for commentary
	// without waiting for the user.
	AutoContinue bool

	Callbacks Callbacks

	state State
}

// New assembles an agent from its parts.
func New(cfg *config.Config, sess *session.Session, client llm.Client, exec *executor.Executor, model string) *Agent {
	return &Agent{
		Config:   cfg,
		Session:  sess,
		Client:   client,
		Executor: exec,
		Model:    model,
		state:    StateAwaitingInput,
	}
}

// State returns the agent's current position in the turn cycle.
func (a *Agent) State() State { return a.state }

// SwitchExpert changes persona. The conversation restarts from scratch and
// the loop returns to its rest state.
func (a *Agent) SwitchExpert(m expert.Mode) {
	a.Session.SetExpert(m)
	a.state = StateAwaitingInput
}

// SwitchResponse changes the answer length mode, keeping history.
func (a *Agent) SwitchResponse(rm expert.ResponseMode) {
	a.Session.SetResponse(rm)
}

// ProcessTurn runs one full turn: user message in, assistant response
// streamed, candidates extracted and gated, approved command executed and its
// result recorded. Cancelling ctx during the stream keeps the partial text in
// history; cancelling at any other point aborts the turn.
func (a *Agent) ProcessTurn(ctx context.Context, input string) error {
	a.Session.AddUser(input)

	text, err := a.streamResponse(ctx)
	if err != nil {
		a.state = StateAwaitingInput
		return err
	}
	if ctx.Err() != nil {
		// Interrupted mid-stream: keep what arrived, tagged, and end the
		// turn without extraction.
		a.Session.AddInterrupted(text)
		a.Session.LastCandidates = nil
		if a.Callbacks.OnInterrupted != nil {
			a.Callbacks.OnInterrupted(text)
		}
		a.state = StateAwaitingInput
		return nil
	}
	a.Session.AddAssistant(text)

	candidates := parser.ClassifyAndExtract(text, a.Session.ExecutionMode())
	a.Session.LastCandidates = candidates
	if len(candidates) == 0 {
		a.state = StateAwaitingInput
		return nil
	}

	decision, err := a.selectCandidate(candidates)
	if err != nil {
		a.state = StateAwaitingInput
		return err
	}
	if decision.Skip {
		a.state = StateAwaitingInput
		return nil
	}

	command := ""
	if decision.Modify {
		initial := ""
		if len(candidates) == 1 {
			initial = candidates[0].Text
		}
		if a.Callbacks.ReadCommand == nil {
			a.state = StateAwaitingInput
			return nil
		}
		command, err = a.Callbacks.ReadCommand(initial)
		if err != nil {
			a.state = StateAwaitingInput
			return err
		}
		command = strings.TrimSpace(command)
		if command == "" {
			a.state = StateAwaitingInput
			return nil
		}
	} else {
		command = decision.Candidate.Text
	}

	result := a.execute(ctx, command)
	a.Session.AddObservation(formatResult(result))
	a.state = StateAwaitingFollowup

	if a.AutoContinue {
		return a.followUp(ctx)
	}
	return nil
}

// streamResponse streams one assistant answer, forwarding chunks to the UI
// and accumulating the full text. A cancellation mid-stream returns the
// partial text with a nil error; the caller checks ctx.
func (a *Agent) streamResponse(ctx context.Context) (string, error) {
	a.state = StateStreaming

	// The expert profile decides sampling; config generation defaults only
	// fill gaps.
	temp, maxTokens := a.Session.Generation()
	if a.Config != nil {
		if temp == 0 {
			temp = a.Config.Generation.Temperature
		}
		if maxTokens == 0 {
			maxTokens = a.Config.Generation.MaxTokens
		}
	}
	opts := llm.Options{Model: a.Model, Temperature: temp, MaxTokens: maxTokens}

	stream, err := a.Client.Stream(ctx, a.Session.Messages(), opts)
	if err != nil {
		return "", errors.Wrapf(err, "cannot start response stream")
	}

	var b strings.Builder
	for chunk := range stream {
		if chunk.Err != nil {
			if b.Len() > 0 {
				// Keep the partial answer; surface the failure and move on.
				if a.Callbacks.OnWarning != nil {
					a.Callbacks.OnWarning(fmt.Sprintf("stream ended early: %v", chunk.Err))
				}
				return b.String(), nil
			}
			return "", chunk.Err
		}
		b.WriteString(chunk.Text)
		if a.Callbacks.OnChunk != nil {
			a.Callbacks.OnChunk(chunk.Text)
		}
	}
	return b.String(), nil
}

// selectCandidate runs the approval gate, re-prompting on invalid input until
// the user produces a decision or the UI gives up.
func (a *Agent) selectCandidate(candidates []parser.Candidate) (gate.Decision, error) {
	a.state = StateAwaitingSelection
	if a.Callbacks.OnCandidates != nil {
		a.Callbacks.OnCandidates(candidates)
	}
	if a.Callbacks.ReadSelection == nil {
		return gate.Decision{Skip: true}, nil
	}

	for {
		input, err := a.Callbacks.ReadSelection()
		if err != nil {
			return gate.Decision{}, err
		}
		decision, err := gate.Select(candidates, input)
		if err == gate.ErrInvalidSelection {
			if a.Callbacks.OnWarning != nil {
				a.Callbacks.OnWarning(fmt.Sprintf("enter a number between 0 and %d, or m to modify", len(candidates)))
			}
			continue
		}
		return decision, err
	}
}

func (a *Agent) execute(ctx context.Context, command string) executor.Result {
	a.state = StateExecuting
	if a.Callbacks.OnExecutionStart != nil {
		a.Callbacks.OnExecutionStart(command)
	}
	result := a.Executor.Run(ctx, command, "")
	if a.Callbacks.OnResult != nil {
		a.Callbacks.OnResult(result)
	}
	return result
}

// followUp streams a model commentary on the execution result that is already
// in history.
func (a *Agent) followUp(ctx context.Context) error {
	text, err := a.streamResponse(ctx)
	if err != nil {
		a.state = StateAwaitingInput
		return err
	}
	if ctx.Err() != nil {
		a.Session.AddInterrupted(text)
		if a.Callbacks.OnInterrupted != nil {
			a.Callbacks.OnInterrupted(text)
		}
	} else {
		a.Session.AddAssistant(text)
	}
	a.state = StateAwaitingInput
	return nil
}

// RunDirect executes a command the user typed directly, bypassing the model
// entirely but keeping the result in conversation history.
func (a *Agent) RunDirect(ctx context.Context, command string) executor.Result {
	result := a.execute(ctx, command)
	a.Session.AddObservation(formatResult(result))
	a.state = StateAwaitingInput
	return result
}

// formatResult renders an execution result the way it enters history.
func formatResult(r executor.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "$ %s\nexit code: %d", r.Command, r.ExitCode)
	if out := strings.TrimRight(r.Stdout, "\n"); out != "" {
		fmt.Fprintf(&b, "\nstdout:\n%s", out)
	}
	if errOut := strings.TrimRight(r.Stderr, "\n"); errOut != "" {
		fmt.Fprintf(&b, "\nstderr:\n%s", errOut)
	}
	return b.String()
}
