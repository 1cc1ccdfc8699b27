package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Formatter applies semantic formatting to text.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

// Sprint formats the arguments and returns the resulting string.
func (f Formatter) Sprint(a ...interface{}) string {
	text := fmt.Sprint(a...)
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// Sprintf formats according to a format specifier and returns the resulting string.
func (f Formatter) Sprintf(format string, a ...interface{}) string {
	text := fmt.Sprintf(format, a...)
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// EnsureNewline ensures the string ends with a newline character.
func EnsureNewline(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\n' {
		return s + "\n"
	}
	return s
}

// noColor returns true if color output should be disabled.
func noColor() bool {
	// Check NO_COLOR environment variable (https://no-color.org/).
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	// Also respect fatih/color's detection (terminal capability, TERM=dumb, etc.).
	return color.NoColor
}

// Semantic formatters for different types of CLI output.
var (
	// Pass marks a passing secrecy assertion.
	// Green with color, no decoration without.
	Pass = Formatter{color.New(color.FgGreen), "", ""}

	// Fail marks a failing assertion or a catastrophic leak.
	// Red with color, no decoration without.
	Fail = Formatter{color.New(color.FgRed), "", ""}

	// Term formats protocol terms and principal names.
	// Yellow with color, 'single quotes' without.
	Term = Formatter{color.New(color.FgYellow), "'", "'"}

	// Code formats runnable commands, e.g. "protoscope analyze x.proto".
	// Yellow with color, `backticks` without.
	Code = Formatter{color.New(color.FgYellow), "`", "`"}

	// Path formats file or directory paths.
	// Yellow with color, no decoration without (paths are self-evident).
	Path = Formatter{color.New(color.FgYellow), "", ""}

	// Info formats informational hints and arrows.
	// Cyan with color, no decoration without.
	Info = Formatter{color.New(color.FgCyan), "", ""}

	// Muted de-emphasizes supplementary text.
	// No color, (parentheses) without.
	Muted = Formatter{color.New(color.Faint), "(", ")"}
)
