package cmd

import (
	"fmt"

	"github.com/dynamicduo/protoscope/internal/lexer"
	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Dump the token stream for a protocol file",
	Long: `Lexes the file and prints every token with its kind, lexeme, and line.
The lexer never fails: unrecognized characters come out as one-character
identifiers, which is usually the first thing to look for when the parser
reports a confusing error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		src, err := readProtocolFile(path)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read %s: %v", path, err)
		}

		for _, t := range lexer.New(src).All() {
			fmt.Println(t)
		}
		return nil
	},
}
