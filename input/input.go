// Package input processes raw user input before it reaches the model:
// @path references are replaced by the referenced file contents, and
// multiline delimiters are recognized for the terminal layer.
package input

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// MultilineDelimiters open (and close) quick multiline input mode.
var MultilineDelimiters = []string{`"""`, "'''", "```"}

// Delimiter reports whether text opens multiline mode and with which
// delimiter.
func Delimiter(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	for _, d := range MultilineDelimiters {
		if strings.HasPrefix(trimmed, d) {
			return d, true
		}
	}
	return "", false
}

var fileRefRe = regexp.MustCompile(`@([\w./~-]+)`)

// FileLoad records the outcome of one @path reference.
type FileLoad struct {
	Path        string
	Chars       int
	Err         error
	Suggestions []string
}

// Handler resolves @path references. Hidden holds doublestar globs; matching
// paths are refused rather than ingested.
type Handler struct {
	Hidden []string
}

// NewHandler creates a Handler with the given hidden-path globs.
func NewHandler(hidden []string) *Handler {
	return &Handler{Hidden: hidden}
}

// Ingest replaces every @path reference in text with nothing and appends the
// referenced file contents as delimited blocks, mirroring how a user would
// paste them. Each reference produces a FileLoad for the UI to report.
func (h *Handler) Ingest(text string) (string, []FileLoad) {
	matches := fileRefRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	var loads []FileLoad
	var blocks []string
	processed := text

	for _, m := range matches {
		ref, path := m[0], m[1]
		load := FileLoad{Path: path}

		switch resolved, err := h.resolve(path); {
		case err != nil:
			load.Err = err
			load.Suggestions = suggest(path)
		default:
			content, err := os.ReadFile(resolved)
			if err != nil {
				load.Err = err
			} else {
				load.Chars = len(content)
				blocks = append(blocks, fmt.Sprintf("\n\n--- File: %s ---\n%s\n--- End of %s ---\n", path, content, path))
			}
		}

		loads = append(loads, load)
		processed = strings.Replace(processed, ref, "", 1)
	}

	if len(blocks) > 0 {
		processed = strings.TrimSpace(processed) + "\n" + strings.Join(blocks, "")
	}
	return processed, loads
}

// resolve finds the file behind a reference, trying home expansion, absolute
// and relative forms, and refuses paths matching a hidden glob.
func (h *Handler) resolve(path string) (string, error) {
	candidate := path
	if strings.HasPrefix(candidate, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			candidate = filepath.Join(home, strings.TrimPrefix(candidate, "~"))
		}
	}

	if hidden, pattern := h.isHidden(path); hidden {
		return "", fmt.Errorf("path %q is hidden by pattern %q", path, pattern)
	}

	info, err := os.Stat(candidate)
	if err != nil {
		return "", fmt.Errorf("file not found: %s", path)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	return candidate, nil
}

func (h *Handler) isHidden(path string) (bool, string) {
	clean := filepath.ToSlash(filepath.Clean(path))
	for _, pattern := range h.Hidden {
		if ok, err := doublestar.PathMatch(pattern, clean); err == nil && ok {
			return true, pattern
		}
	}
	return false, ""
}

// suggest globs the working directory (and one level down) for files with the
// same base name, capped at three suggestions.
func suggest(path string) []string {
	base := filepath.Base(path)
	var out []string
	for _, pattern := range []string{base, filepath.Join("*", base)} {
		found, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, f := range found {
			if info, err := os.Stat(f); err == nil && !info.IsDir() {
				out = append(out, f)
				if len(out) == 3 {
					return out
				}
			}
		}
	}
	return out
}
