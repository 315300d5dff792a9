package terminal

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/shellsage/shellsage/executor"
	"github.com/shellsage/shellsage/parser"
)

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	bannerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	commandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
)

func rule(n int) string {
	return infoStyle.Render(strings.Repeat("─", n))
}

// renderCandidates draws the selection menu shown before the approval gate.
func renderCandidates(candidates []parser.Candidate) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Suggested commands"))
	b.WriteString("\n")
	b.WriteString(rule(25))
	b.WriteString("\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "  %s %s  %s\n",
			promptStyle.Render(fmt.Sprintf("%d.", i+1)),
			commandStyle.Render(c.Text),
			infoStyle.Render(fmt.Sprintf("(%.0f%%, %s)", c.Confidence*100, c.Rationale)))
	}
	b.WriteString(infoStyle.Render("  0. skip    m. modify"))
	b.WriteString("\n")
	return b.String()
}

// renderResult draws an execution outcome.
func renderResult(r executor.Result) string {
	var b strings.Builder
	status := commandStyle.Render(fmt.Sprintf("exit %d", r.ExitCode))
	if r.ExitCode != 0 {
		status = errorStyle.Render(fmt.Sprintf("exit %d", r.ExitCode))
	}
	fmt.Fprintf(&b, "%s %s (%s)\n", infoStyle.Render("[Result]"), status, r.Duration.Round(time.Millisecond))
	if out := strings.TrimRight(r.Stdout, "\n"); out != "" {
		b.WriteString(out)
		b.WriteString("\n")
	}
	if errOut := strings.TrimRight(r.Stderr, "\n"); errOut != "" {
		b.WriteString(warnStyle.Render(errOut))
		b.WriteString("\n")
	}
	return b.String()
}

const helpText = `# shellsage commands

| Command | Effect |
|---------|--------|
| ` + "`!help`" + ` | Show this help |
| ` + "`!quit`" + `, ` + "`!exit`" + `, ` + "`!q`" + ` | Leave the session |
| ` + "`!clear`" + ` | Clear conversation history |
| ` + "`!status`" + ` | Show session status |
| ` + "`!mode quick`" + ` / ` + "`!mode full`" + ` | Switch answer length |
| ` + "`!expert <name>`" + ` | Switch expert (linux, python, devops, database, general) |
| ` + "`!multiline`" + ` | Enter multiline input mode |
| ` + "`!<command>`" + ` | Run a shell command directly |

Reference files inline with ` + "`@path`" + `; open multiline input with ` + "```\"\"\"```" + `.
Press Ctrl+C while the model is answering to interrupt it.
`

// renderHelp renders the help text as terminal markdown, falling back to the
// raw text when the renderer cannot be built.
func renderHelp() string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return helpText
	}
	out, err := r.Render(helpText)
	if err != nil {
		return helpText
	}
	return out
}
