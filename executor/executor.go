// Package executor runs approved shell commands as child processes with a
// bounded timeout. Execution is the system's only externally visible side
// effect and is reached exclusively through the approval gate.
package executor

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Sentinel exit codes. Timeout mirrors the convention of reporting -1 for a
// process that was killed rather than exited; spawn failures reuse the shell
// convention for "command not found".
const (
	TimeoutExitCode = -1
	SpawnExitCode   = 127
)

// Result captures everything about one command run. It is immutable once
// produced; failures are data here, never propagated errors.
type Result struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Dir      string
}

// Executor runs commands through a shell so that pipes, redirects and quoting
// in extracted candidates behave as the model intended.
type Executor struct {
	timeout time.Duration
	shell   string
}

// New creates an Executor. A zero timeout defaults to 30s, an empty shell to
// the platform default.
func New(timeout time.Duration, shell string) *Executor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if shell == "" {
		shell = defaultShell()
	}
	return &Executor{timeout: timeout, shell: shell}
}

// Timeout returns the configured per-command timeout.
func (e *Executor) Timeout() time.Duration { return e.timeout }

// Run executes one command in dir (current directory when empty), capturing
// stdout and stderr separately. On timeout the whole process group is killed
// and the result carries TimeoutExitCode. Spawn failures come back as results
// with SpawnExitCode and the OS error in stderr; Run never panics or returns
// an error past this boundary.
func (e *Executor) Run(ctx context.Context, command, dir string) Result {
	if dir == "" {
		dir, _ = os.Getwd()
	}
	res := Result{Command: command, Dir: dir}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := shellCommand(e.shell, command)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	configureProcess(cmd)

	if err := cmd.Start(); err != nil {
		res.ExitCode = SpawnExitCode
		res.Stderr = err.Error()
		res.Duration = time.Since(start)
		return res
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	select {
	case <-ctx.Done():
		// Negative-PGID kill takes the shell and anything it spawned.
		terminateProcess(cmd)
		<-done
		res.ExitCode = TimeoutExitCode
		res.Stdout = stdout.String()
		res.Stderr = appendLine(stderr.String(), "command timed out after "+e.timeout.String())
		res.Duration = time.Since(start)
		return res
	case waitErr = <-done:
	}

	res.Duration = time.Since(start)
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = SpawnExitCode
			res.Stderr = appendLine(res.Stderr, waitErr.Error())
		}
	}
	return res
}

func appendLine(s, line string) string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return line
	}
	return s + "\n" + line
}
