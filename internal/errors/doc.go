// Package errors defines sentinel errors shared across protoscope commands.
//
// Errors are grouped by concern (input files, project state, code
// generation) and checked with errors.Is. Parse failures are not here: the
// parser returns its own *parser.ParseError carrying a line number.
package errors
