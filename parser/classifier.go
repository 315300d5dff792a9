package parser

import (
	"regexp"
	"strings"
	"unicode"
)

// ExecutionMode gates extraction: commands are only ever surfaced in the
// Linux expert persona, every other persona classifies everything as prose.
type ExecutionMode int

const (
	ModeOther ExecutionMode = iota
	ModeLinuxExpert
)

// Kind labels a classified line.
type Kind int

const (
	// KindPromptEcho marks a line that starts with a shell prompt marker
	// ("$ ", "# ", "> "); the marker is stripped when the line is merged
	// into a candidate.
	KindPromptEcho Kind = iota
	// KindOutput marks lines that look like command output rather than a
	// command: indentation, permission strings, ls summaries and the like.
	KindOutput
	// KindProse marks explanatory sentences.
	KindProse
	// KindCandidate marks a likely shell command.
	KindCandidate
)

func (k Kind) String() string {
	switch k {
	case KindPromptEcho:
		return "prompt-echo"
	case KindOutput:
		return "output"
	case KindProse:
		return "prose"
	case KindCandidate:
		return "candidate"
	}
	return "unknown"
}

// Line is one classified line of response text. Para groups lines into
// paragraphs: blank lines and code-fence markers bump the paragraph counter
// without being emitted themselves.
type Line struct {
	Text      string
	Kind      Kind
	No        int
	Para      int
	Continues bool // trailing backslash: merge the following line
}

var (
	lsTotalRe    = regexp.MustCompile(`^total\s+\d+`)
	permStringRe = regexp.MustCompile(`^[bcdlps-][rwxsStT-]{9}\b`)
	barePathRe   = regexp.MustCompile(`^/[\w./-]+$`)
	// "name.ext: description" shapes, e.g. file(1) output. The first token
	// must look like a file or path so prose like "Note: ..." stays prose.
	fileDescRe = regexp.MustCompile(`^[\w-]*[./][\w./-]*:\s+\S`)
)

// rule pairs a kind with its predicate. Rules are evaluated in priority
// order against (raw, trimmed) forms of the line; the first match wins and
// anything unmatched defaults to prose.
type rule struct {
	kind  Kind
	match func(raw, trimmed string) bool
}

var classifyRules = []rule{
	{KindPromptEcho, func(raw, trimmed string) bool { return promptMarker(trimmed) != "" }},
	{KindOutput, isOutput},
	{KindProse, isProse},
	{KindCandidate, isCandidate},
}

// promptMarker returns the shell prompt prefix of a line, or "".
func promptMarker(s string) string {
	for _, m := range []string{"$ ", "# ", "> "} {
		if strings.HasPrefix(s, m) {
			return m
		}
	}
	return ""
}

// StripPromptMarker removes a leading shell prompt marker, if present.
func StripPromptMarker(s string) string {
	if m := promptMarker(s); m != "" {
		return strings.TrimSpace(s[len(m):])
	}
	return s
}

func isOutput(raw, trimmed string) bool {
	if raw != "" && (raw[0] == ' ' || raw[0] == '\t') {
		return true
	}
	if trimmed == "" {
		return false
	}
	if trimmed[0] >= '0' && trimmed[0] <= '9' {
		return true
	}
	return lsTotalRe.MatchString(trimmed) ||
		permStringRe.MatchString(trimmed) ||
		barePathRe.MatchString(trimmed) ||
		fileDescRe.MatchString(trimmed)
}

func isProse(raw, trimmed string) bool {
	if hasShellSignal(trimmed) {
		return false
	}
	// "sudo systemctl restart nginx" is all letters and four words, but the
	// leading verb gives it away as a command.
	if isKnownVerb(firstWord(trimmed)) {
		return false
	}
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return false
	}
	if strings.ContainsAny(string(trimmed[len(trimmed)-1]), ".!?:,") {
		return true
	}
	first := []rune(fields[0])
	if unicode.IsUpper(first[0]) && len(fields) >= 3 {
		return true
	}
	return letterRatio(trimmed) >= 0.9 && len(fields) >= 4
}

func isCandidate(raw, trimmed string) bool {
	if strings.HasSuffix(trimmed, `\`) {
		return true
	}
	if hasShellSignal(trimmed) {
		return true
	}
	return isKnownVerb(firstWord(trimmed))
}

// hasShellSignal reports whether a line carries shell-specific syntax:
// pipes, redirects, globs, flags, paths or command substitution.
func hasShellSignal(s string) bool {
	for _, tok := range []string{"|", ">", "<", "&&", ";", "$(", "*", "`"} {
		if strings.Contains(s, tok) {
			return true
		}
	}
	for _, f := range strings.Fields(s) {
		if strings.HasPrefix(f, "-") && len(f) > 1 {
			return true
		}
		if strings.Contains(f, "/") || strings.HasPrefix(f, "~") {
			return true
		}
	}
	return false
}

func letterRatio(s string) float64 {
	if s == "" {
		return 0
	}
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			letters++
		}
	}
	return float64(letters) / float64(len([]rune(s)))
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	if fields[0] == "sudo" && len(fields) > 1 {
		return fields[1]
	}
	return fields[0]
}

// isFenceMarker reports code-fence delimiter lines ("```", "```bash", ...).
// They carry no content of their own and act as paragraph boundaries.
func isFenceMarker(trimmed string) bool {
	return strings.HasPrefix(trimmed, "```")
}

// Classify labels every non-empty line of a response. When mode is not the
// Linux expert, every line comes back as prose and extraction yields nothing.
// Blank lines and fence markers are dropped; they terminate continuations and
// advance the paragraph counter.
func Classify(text string, mode ExecutionMode) []Line {
	var out []Line
	para := 0
	inBoundary := true
	continuing := false

	for no, raw := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || isFenceMarker(trimmed) {
			if !inBoundary {
				para++
			}
			inBoundary = true
			continuing = false
			continue
		}
		inBoundary = false

		line := Line{Text: trimmed, No: no + 1, Para: para}

		if mode != ModeLinuxExpert {
			line.Kind = KindProse
			out = append(out, line)
			continue
		}

		// A continuation line belongs to the candidate above it no matter
		// what it would classify as on its own.
		if continuing {
			line.Kind = KindCandidate
		} else {
			line.Kind = KindProse
			for _, r := range classifyRules {
				if r.match(raw, trimmed) {
					line.Kind = r.kind
					break
				}
			}
		}

		// A trailing backslash makes the line a candidate regardless of what
		// the rules said, and flags the next line for merging.
		if strings.HasSuffix(trimmed, `\`) {
			if line.Kind != KindPromptEcho {
				line.Kind = KindCandidate
			}
			line.Continues = true
		}
		continuing = line.Continues

		out = append(out, line)
	}
	return out
}
