// Package expert defines the persona presets that shape system prompts and
// generation parameters. The registry is a plain value handed to the session
// at construction: adding an expert is a table edit, not a code change.
package expert

import (
	"fmt"
	"strings"

	"github.com/shellsage/shellsage/errors"
)

// Mode names an expert persona.
type Mode string

const (
	Linux    Mode = "linux"
	Python   Mode = "python"
	DevOps   Mode = "devops"
	Database Mode = "database"
	General  Mode = "general"
)

// ResponseMode selects between terse and detailed answers.
type ResponseMode string

const (
	Quick ResponseMode = "quick"
	Full  ResponseMode = "full"
)

// Profile holds everything a persona needs: display strings, the persona
// prompt, a reminder line repeated at the end of the system prompt, and
// generation parameters per response mode.
type Profile struct {
	Name           string
	Description    string
	Prompt         string
	Reminder       string
	Temperature    float64
	MaxTokensQuick int
	MaxTokensFull  int
}

// Registry maps modes to profiles, preserving a display order.
type Registry struct {
	profiles map[Mode]Profile
	order    []Mode
}

// NewRegistry builds a registry from an ordered list of (mode, profile) pairs.
func NewRegistry(entries []struct {
	Mode    Mode
	Profile Profile
}) Registry {
	r := Registry{profiles: make(map[Mode]Profile)}
	for _, e := range entries {
		r.profiles[e.Mode] = e.Profile
		r.order = append(r.order, e.Mode)
	}
	return r
}

// DefaultRegistry returns the built-in persona table.
func DefaultRegistry() Registry {
	return NewRegistry([]struct {
		Mode    Mode
		Profile Profile
	}{
		{Linux, Profile{
			Name:        "Linux Expert",
			Description: "Shell, scripting, system administration",
			Prompt: "Linux system expert. Answer with Linux/bash commands ONLY.\n" +
				"NO Python/Java/PowerShell unless asked.\n" +
				"Focus: shell scripting, system utilities, file operations.",
			Reminder:       "LINUX MODE: Use bash/shell commands only.",
			Temperature:    0.4,
			MaxTokensQuick: 400,
			MaxTokensFull:  1500,
		}},
		{Python, Profile{
			Name:        "Python Expert",
			Description: "Coding, debugging, best practices",
			Prompt: "Python expert. Answer with Python code ONLY.\n" +
				"NO bash/shell unless needed.\n" +
				"Focus: Python 3.x, clean code, best practices.",
			Reminder:       "PYTHON MODE: Use Python code only.",
			Temperature:    0.5,
			MaxTokensQuick: 500,
			MaxTokensFull:  2000,
		}},
		{DevOps, Profile{
			Name:        "DevOps Expert",
			Description: "Docker, K8s, CI/CD, deployment",
			Prompt: "DevOps expert. Focus on Docker, K8s, CI/CD, infrastructure.\n" +
				"Prefer containers and automation over app code.",
			Reminder:       "DEVOPS MODE: Focus on containers & infrastructure.",
			Temperature:    0.4,
			MaxTokensQuick: 400,
			MaxTokensFull:  1500,
		}},
		{Database, Profile{
			Name:        "Database Expert",
			Description: "SQL, optimization, design",
			Prompt: "Database expert. Provide SQL queries and DB solutions.\n" +
				"Focus: queries, schema, optimization, indexes.",
			Reminder:       "DATABASE MODE: Use SQL queries.",
			Temperature:    0.4,
			MaxTokensQuick: 400,
			MaxTokensFull:  1500,
		}},
		{General, Profile{
			Name:        "General Assistant",
			Description: "Mixed capabilities",
			Prompt: "General AI assistant. Adapt to questions.\n" +
				"Provide clear, accurate info.",
			Reminder:       "GENERAL MODE: Adapt to context.",
			Temperature:    0.7,
			MaxTokensQuick: 500,
			MaxTokensFull:  2000,
		}},
	})
}

// Profile looks up the profile for a mode.
func (r Registry) Profile(m Mode) (Profile, bool) {
	p, ok := r.profiles[m]
	return p, ok
}

// Modes returns the registered modes in display order.
func (r Registry) Modes() []Mode {
	out := make([]Mode, len(r.order))
	copy(out, r.order)
	return out
}

// ParseMode validates a user-supplied mode name against the registry.
func (r Registry) ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := r.profiles[m]; !ok {
		return "", errors.New("unknown expert %q (available: %s)", s, strings.Join(r.names(), ", "))
	}
	return m, nil
}

func (r Registry) names() []string {
	var out []string
	for _, m := range r.order {
		out = append(out, string(m))
	}
	return out
}

// ParseResponseMode validates a response mode name.
func ParseResponseMode(s string) (ResponseMode, error) {
	switch ResponseMode(strings.ToLower(strings.TrimSpace(s))) {
	case Quick:
		return Quick, nil
	case Full:
		return Full, nil
	}
	return "", errors.New("unknown response mode %q (use quick or full)", s)
}

// MaxTokens returns the token budget for a response mode.
func (p Profile) MaxTokens(rm ResponseMode) int {
	if rm == Quick {
		return p.MaxTokensQuick
	}
	return p.MaxTokensFull
}

// SystemPrompt assembles the persona prompt, the response-style instruction
// and the shared command-formatting rules into one system message.
func (r Registry) SystemPrompt(m Mode, rm ResponseMode) string {
	p, ok := r.profiles[m]
	if !ok {
		p = r.profiles[General]
	}

	style := "STYLE: Detailed with examples and context when helpful."
	if rm == Quick {
		style = "STYLE: Quick and concise. Get to the point. No long explanations."
	}

	base := "When suggesting commands:\n" +
		"- Wrap in backticks: `command`\n" +
		"- Use code blocks for multi-line\n" +
		"- Brief explanation only\n" +
		"- Mention risks if critical"

	return fmt.Sprintf("%s\n%s\n%s\n%s", p.Prompt, style, base, p.Reminder)
}
