// Package ui provides semantic text formatting for CLI output.
//
// Formatters render appropriately for the terminal: colorized when colors
// are available, text decorations (backticks, quotes) when NO_COLOR is set
// or the terminal doesn't support color.
//
// # Semantic Formatters
//
// Use the formatter matching the content type:
//
//	ui.Pass.Sprint("✓ PASS")                 // Passing assertions
//	ui.Fail.Sprint("✗ FAIL")                 // Failing assertions, leaks
//	ui.Term.Sprint("K_AB")                   // Protocol terms and principals
//	ui.Code.Sprint("protoscope check x")     // Commands
//	ui.Path.Sprint("nspk.proto")             // File paths
//	ui.Info.Sprint("→")                      // Hints
//	ui.Muted.Sprint("no assertions")         // De-emphasized text
package ui
