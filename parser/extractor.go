package parser

import (
	"fmt"
	"strings"
)

// Candidate is a span of response text identified as a likely executable
// shell command. Confidence is display-only: candidates keep the order in
// which they appeared in the response.
type Candidate struct {
	Text       string
	Confidence float64
	Rationale  string
}

// Confidence signal weights. The exact values are heuristic; only the
// relative contributions matter since candidates are never sorted by score.
const (
	weightPromptEcho = 0.4 // the model explicitly showed a command line
	weightKnownVerb  = 0.3 // starts with a whitelisted command verb
	weightMetachars  = 0.2 // pipes, redirects or globs present
	weightSoloInPara = 0.1 // the only candidate in its paragraph
)

type pending struct {
	parts    []string
	fromEcho bool
	para     int
	open     bool // previous line ended in a backslash
}

func (p *pending) add(text string, continues bool) {
	text = StripPromptMarker(text)
	if continues {
		text = strings.TrimSpace(strings.TrimSuffix(text, `\`))
	}
	if text != "" {
		p.parts = append(p.parts, text)
	}
	p.open = continues
}

func (p *pending) text() string {
	return strings.TrimSpace(strings.Join(p.parts, " "))
}

// Extract consumes classified lines and produces the ordered candidate list:
// contiguous backslash continuations merged, confidence scored, exact
// duplicates (whitespace-collapsed, case-sensitive) removed keeping the
// first occurrence.
func Extract(lines []Line) []Candidate {
	var raw []struct {
		text     string
		fromEcho bool
		para     int
	}

	var cur *pending
	flush := func() {
		if cur == nil {
			return
		}
		if t := cur.text(); t != "" {
			raw = append(raw, struct {
				text     string
				fromEcho bool
				para     int
			}{t, cur.fromEcho, cur.para})
		}
		cur = nil
	}

	for _, line := range lines {
		switch {
		case cur != nil && cur.open:
			cur.add(line.Text, line.Continues)
		case line.Kind == KindPromptEcho || line.Kind == KindCandidate:
			flush()
			cur = &pending{fromEcho: line.Kind == KindPromptEcho, para: line.Para}
			cur.add(line.Text, line.Continues)
		default:
			flush()
		}
	}
	flush()

	perPara := make(map[int]int)
	for _, r := range raw {
		perPara[r.para]++
	}

	seen := make(map[string]bool)
	var out []Candidate
	for _, r := range raw {
		norm := strings.Join(strings.Fields(r.text), " ")
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true

		score := 0.0
		var why []string
		if r.fromEcho {
			score += weightPromptEcho
			why = append(why, "prompt-marked")
		}
		if verb := firstWord(norm); isKnownVerb(verb) {
			score += weightKnownVerb
			why = append(why, fmt.Sprintf("known command %q", verb))
		}
		if strings.ContainsAny(norm, "|<>*?") {
			score += weightMetachars
			why = append(why, "shell metacharacters")
		}
		if perPara[r.para] == 1 {
			score += weightSoloInPara
			why = append(why, "sole command in paragraph")
		}
		if score > 1 {
			score = 1
		}

		out = append(out, Candidate{
			Text:       norm,
			Confidence: score,
			Rationale:  strings.Join(why, "; "),
		})
	}
	return out
}

// ClassifyAndExtract runs the full pipeline: classify each line of the
// response under the given execution mode, then extract candidates. With any
// mode other than the Linux expert the result is always empty.
func ClassifyAndExtract(text string, mode ExecutionMode) []Candidate {
	return Extract(Classify(text, mode))
}
