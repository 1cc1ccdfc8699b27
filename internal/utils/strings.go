package utils

import (
	"strings"

	"github.com/fatih/color"
)

// FormatPaths formats a list of file paths as an indented, colored block for
// final command messages.
func FormatPaths(paths []string) string {
	if len(paths) == 0 {
		return "\n"
	}
	var sb strings.Builder
	sb.WriteString("\n")
	for _, p := range paths {
		sb.WriteString("   " + color.YellowString(p) + "\n")
	}
	return sb.String()
}
