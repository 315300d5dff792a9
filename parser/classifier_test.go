package parser

import (
	"testing"
)

func TestClassifyKinds(t *testing.T) {
	cases := []struct {
		name string
		line string
		want Kind
	}{
		{"prompt echo dollar", "$ ls -la", KindPromptEcho},
		{"prompt echo hash", "# apt update", KindPromptEcho},
		{"prompt echo gt", "> cat file.txt", KindPromptEcho},
		{"ls total line", "total 48", KindOutput},
		{"permission string", "-rw-r--r-- 1 user user 220 .bashrc", KindOutput},
		{"digit start", "123 files found", KindOutput},
		{"bare path", "/usr/local/bin", KindOutput},
		{"file description", "main.go: Go source file", KindOutput},
		{"prose sentence", "You can list files with:", KindProse},
		{"prose with colon prefix word", "Note: this is important to remember.", KindProse},
		{"known verb", "ls -la", KindCandidate},
		{"pipe", "cat access.log | grep 404", KindCandidate},
		{"sudo prefix", "sudo systemctl restart nginx", KindCandidate},
		{"plain sentence no signals", "The files are now ready to use.", KindProse},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines := Classify(tc.line, ModeLinuxExpert)
			if len(lines) != 1 {
				t.Fatalf("expected 1 line, got %d", len(lines))
			}
			if lines[0].Kind != tc.want {
				t.Errorf("Classify(%q) = %v, want %v", tc.line, lines[0].Kind, tc.want)
			}
		})
	}
}

func TestClassifyIndentedIsOutput(t *testing.T) {
	// Indentation is checked on the raw line, before trimming.
	lines := Classify("ok:\n    ls -la", ModeLinuxExpert)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[1].Kind != KindOutput {
		t.Errorf("indented line classified as %v, want %v", lines[1].Kind, KindOutput)
	}
}

func TestClassifyNonLinuxModeAllProse(t *testing.T) {
	text := "$ ls -la\ncat file | grep x\ntotal 48"
	for _, line := range Classify(text, ModeOther) {
		if line.Kind != KindProse {
			t.Errorf("line %q classified as %v in non-Linux mode, want prose", line.Text, line.Kind)
		}
	}
}

func TestClassifyTrailingBackslashForcesCandidate(t *testing.T) {
	// Even a line that reads like prose becomes a candidate when it ends in
	// a continuation backslash.
	lines := Classify(`Some words that look like prose \`, ModeLinuxExpert)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Kind != KindCandidate {
		t.Errorf("got %v, want %v", lines[0].Kind, KindCandidate)
	}
	if !lines[0].Continues {
		t.Error("Continues not set on backslash line")
	}
}

func TestClassifyContinuationLineInheritsCandidate(t *testing.T) {
	text := "find /var/log \\\n    -name '*.log'"
	lines := Classify(text, ModeLinuxExpert)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	// The second line is indented, which would normally make it output.
	if lines[1].Kind != KindCandidate {
		t.Errorf("continuation line classified as %v, want %v", lines[1].Kind, KindCandidate)
	}
}

func TestClassifyBlankLineTerminatesContinuation(t *testing.T) {
	text := "ls -la \\\n\npwd"
	lines := Classify(text, ModeLinuxExpert)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[1].Text != "pwd" {
		t.Fatalf("unexpected second line %q", lines[1].Text)
	}
	if lines[0].Para == lines[1].Para {
		t.Error("blank line did not advance the paragraph counter")
	}
}

func TestClassifyDropsBlankAndFenceLines(t *testing.T) {
	text := "Here is the command:\n\n```bash\nls -la\n```\nDone."
	lines := Classify(text, ModeLinuxExpert)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %v", len(lines), lines)
	}
	if lines[1].Text != "ls -la" || lines[1].Kind != KindCandidate {
		t.Errorf("fenced command came back as %+v", lines[1])
	}
	if lines[0].Para == lines[1].Para {
		t.Error("fence marker did not start a new paragraph")
	}
}

func TestClassifyLineNumbersAndParagraphs(t *testing.T) {
	text := "first paragraph here.\n\nsecond paragraph here."
	lines := Classify(text, ModeLinuxExpert)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].No != 1 || lines[1].No != 3 {
		t.Errorf("line numbers = %d, %d; want 1, 3", lines[0].No, lines[1].No)
	}
	if lines[0].Para != 0 || lines[1].Para != 1 {
		t.Errorf("paragraphs = %d, %d; want 0, 1", lines[0].Para, lines[1].Para)
	}
}

func TestStripPromptMarker(t *testing.T) {
	cases := []struct{ in, want string }{
		{"$ ls -la", "ls -la"},
		{"# apt update", "apt update"},
		{"> echo hi", "echo hi"},
		{"ls -la", "ls -la"},
	}
	for _, tc := range cases {
		if got := StripPromptMarker(tc.in); got != tc.want {
			t.Errorf("StripPromptMarker(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
