package gate

import (
	"testing"

	"github.com/shellsage/shellsage/parser"
)

func testCandidates() []parser.Candidate {
	return []parser.Candidate{
		{Text: "ls -la", Confidence: 0.8},
		{Text: "pwd", Confidence: 0.4},
		{Text: "df -h", Confidence: 0.3},
	}
}

func TestSelectValidIndex(t *testing.T) {
	d, err := Select(testCandidates(), "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Candidate == nil || d.Candidate.Text != "pwd" {
		t.Errorf("selected %+v, want pwd", d.Candidate)
	}
	if d.Index != 1 {
		t.Errorf("index = %d, want 1", d.Index)
	}
}

func TestSelectSkip(t *testing.T) {
	for _, input := range []string{"0", "", "   "} {
		d, err := Select(testCandidates(), input)
		if err != nil {
			t.Fatalf("Select(%q) error: %v", input, err)
		}
		if !d.Skip {
			t.Errorf("Select(%q) did not skip", input)
		}
		if d.Candidate != nil {
			t.Errorf("Select(%q) returned a candidate on skip", input)
		}
	}
}

func TestSelectModify(t *testing.T) {
	for _, input := range []string{"m", "M", " m "} {
		d, err := Select(testCandidates(), input)
		if err != nil {
			t.Fatalf("Select(%q) error: %v", input, err)
		}
		if !d.Modify {
			t.Errorf("Select(%q) did not request modify", input)
		}
	}
}

func TestSelectInvalid(t *testing.T) {
	for _, input := range []string{"4", "-1", "abc", "1.5", "99"} {
		_, err := Select(testCandidates(), input)
		if err != ErrInvalidSelection {
			t.Errorf("Select(%q) error = %v, want ErrInvalidSelection", input, err)
		}
	}
}

func TestSelectBoundsAreInclusive(t *testing.T) {
	cands := testCandidates()
	first, err := Select(cands, "1")
	if err != nil || first.Candidate.Text != "ls -la" {
		t.Errorf("Select(1) = %+v, %v", first, err)
	}
	last, err := Select(cands, "3")
	if err != nil || last.Candidate.Text != "df -h" {
		t.Errorf("Select(3) = %+v, %v", last, err)
	}
}
