package ui

import (
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestFormatterWithColor(t *testing.T) {
	// Ensure NO_COLOR is not set for this test.
	os.Unsetenv("NO_COLOR")
	// Force color output for testing.
	color.NoColor = false

	// Term formatter should not have quotes when color is enabled.
	result := Term.Sprint("K_AB")
	if strings.Contains(result, "'") {
		t.Errorf("Term.Sprint should not contain quotes when color is enabled, got: %s", result)
	}

	// Verify it contains ANSI escape codes (color output).
	if !strings.Contains(result, "\x1b[") {
		t.Errorf("Term.Sprint should contain ANSI escape codes when color is enabled, got: %s", result)
	}
}

func TestFormatterWithNoColor(t *testing.T) {
	// Set NO_COLOR for this test.
	os.Setenv("NO_COLOR", "1")
	defer os.Unsetenv("NO_COLOR")

	tests := []struct {
		name      string
		formatter Formatter
		input     string
		want      string
	}{
		{"Pass has no decoration", Pass, "✓ PASS", "✓ PASS"},
		{"Fail has no decoration", Fail, "✗ FAIL", "✗ FAIL"},
		{"Term adds quotes", Term, "K_AB", "'K_AB'"},
		{"Code adds backticks", Code, "protoscope analyze x.proto", "`protoscope analyze x.proto`"},
		{"Path has no decoration", Path, "nspk.proto", "nspk.proto"},
		{"Info has no decoration", Info, "→", "→"},
		{"Muted adds parentheses", Muted, "no assertions", "(no assertions)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.formatter.Sprint(tt.input)
			if got != tt.want {
				t.Errorf("%s.Sprint(%q) = %q, want %q", tt.name, tt.input, got, tt.want)
			}
		})
	}
}

func TestEnsureNewline(t *testing.T) {
	if got := EnsureNewline("done"); got != "done\n" {
		t.Errorf("EnsureNewline(%q) = %q", "done", got)
	}
	if got := EnsureNewline("done\n"); got != "done\n" {
		t.Errorf("EnsureNewline(%q) = %q", "done\n", got)
	}
	if got := EnsureNewline(""); got != "\n" {
		t.Errorf("EnsureNewline(%q) = %q", "", got)
	}
}
