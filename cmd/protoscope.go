package cmd

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	perrors "github.com/dynamicduo/protoscope/internal/errors"
	logger "github.com/dynamicduo/protoscope/internal/logging"
	"github.com/dynamicduo/protoscope/internal/ui"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	RootCmd = &cobra.Command{
		Use:   "protoscope",
		Short: "Protoscope - parse and analyze cryptographic message-exchange protocols",
		Long: `Protoscope parses a small protocol notation into a syntax tree and
approximates what every participant, plus a passive eavesdropper, can
possess after one protocol run, checking your secrecy assertions against
that approximation.

Available Commands:
  check      Parse and validate a protocol file
  analyze    Compute per-principal knowledge and assertion verdicts
  diagram    Emit a Graphviz DOT sequence diagram
  gen        Emit a runnable Go program for the protocol
  tokens     Dump the token stream (lexer debugging)

Run 'protoscope help <command>' for details on a specific command.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing protoscope with verbose=%t, debug=%t", verbose, debug)
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	RootCmd.AddCommand(checkCmd)
	RootCmd.AddCommand(analyzeCmd)
	RootCmd.AddCommand(diagramCmd)
	RootCmd.AddCommand(genCmd)
	RootCmd.AddCommand(tokensCmd)
}

// readProtocolFile loads a protocol source file, mapping the common failure
// modes onto the shared sentinel errors.
func readProtocolFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", perrors.ErrFileNotFound
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", perrors.ErrEmptySource
	}
	return string(data), nil
}

// startSpinner creates and starts a spinner with the given message when not
// in verbose or debug mode. Returns the spinner and a cleanup function that
// must be deferred.
//
// spinner.FinalMSG values do NOT need trailing newlines: cleanup calls
// ui.EnsureNewline on the final message before printing it.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		// If we can't set spinner color, just continue without it.
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	if !verbose && !debug {
		s.Start()
		// Discard stray log output while the spinner owns the line.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("%s", message)
	}

	cleanup := func() {
		if !verbose && !debug {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if !verbose && !debug {
			s.Stop()
		}

		if finalMsg != "" {
			os.Stdout.WriteString(finalMsg)
		}
	}
	return s, cleanup
}

// Helper functions for testing

// GetRootCmd returns the root command for testing.
func GetRootCmd() *cobra.Command {
	return RootCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	resetCheckCommandState()
	resetAnalyzeCommandState()
	resetDiagramCommandState()
	resetGenCommandState()
	resetCobraFlagState()
}

// resetCobraFlagState clears the Changed marker on every registered flag to
// prevent flag state leaking between test invocations.
func resetCobraFlagState() {
	RootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
	})
	for _, c := range RootCmd.Commands() {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			f.Changed = false
		})
	}
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
