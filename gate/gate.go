// Package gate implements the approval step between command extraction and
// execution. Nothing runs without an explicit, single, human-confirmed
// selection; there is deliberately no execute-all or auto-run path.
package gate

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shellsage/shellsage/parser"
)

// ErrInvalidSelection marks input that is neither a valid index, a skip, nor
// the modify shortcut. Callers re-prompt; the error is never fatal.
var ErrInvalidSelection = errors.New("invalid selection")

// Decision is the outcome of one selection attempt.
type Decision struct {
	// Candidate is the chosen command; nil on skip or modify.
	Candidate *parser.Candidate
	// Index is the zero-based position of the chosen candidate.
	Index int
	// Skip is set when the user declined every candidate (0 or blank).
	Skip bool
	// Modify is set when the user asked to type a replacement command.
	Modify bool
}

// Select maps one line of user input against the candidate list. "0" or
// blank input skips, "m" requests modification, a 1-based index picks exactly
// that candidate. Everything else is ErrInvalidSelection.
func Select(candidates []parser.Candidate, input string) (Decision, error) {
	input = strings.TrimSpace(input)

	if input == "" || input == "0" {
		return Decision{Skip: true}, nil
	}
	if strings.EqualFold(input, "m") {
		return Decision{Modify: true}, nil
	}

	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(candidates) {
		return Decision{}, ErrInvalidSelection
	}
	return Decision{Candidate: &candidates[n-1], Index: n - 1}, nil
}
