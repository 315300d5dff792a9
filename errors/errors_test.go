package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNewIncludesCallerLocation(t *testing.T) {
	err := New("something failed: %d", 42)
	msg := err.Error()
	if !strings.Contains(msg, "something failed: 42") {
		t.Errorf("message lost: %q", msg)
	}
	if !strings.Contains(msg, "errors_test.go:") {
		t.Errorf("caller location missing: %q", msg)
	}
}

func TestWrapfKeepsCause(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Wrapf(cause, "while doing %s", "work")
	msg := err.Error()
	if !strings.Contains(msg, "while doing work") {
		t.Errorf("context lost: %q", msg)
	}
	if !strings.Contains(msg, "root cause") {
		t.Errorf("cause lost: %q", msg)
	}
	if !stderrors.Is(err, cause) {
		t.Error("wrapped error does not unwrap to its cause")
	}
}
