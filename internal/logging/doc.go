// Package logger provides leveled logging for protoscope CLI commands.
//
// Output uses semantic colored prefixes and is controlled by two flags:
//
//   - --verbose: shows info and warning messages
//   - --debug: shows all messages including debug details
//
// Without flags, only errors and critical warnings are shown, so command
// output stays clean enough to pipe (diagram and gen write artifacts to
// stdout).
//
// Commands create a logger in their PersistentPreRun:
//
//	Logger = logger.Logger{Verbose: verbose, Debug: debug}
//	Logger.Debugf("parsing %s", path)
package logger
