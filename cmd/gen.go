package cmd

import (
	"fmt"
	"os"

	"github.com/dynamicduo/protoscope/internal/codegen"
	"github.com/dynamicduo/protoscope/internal/parser"
	"github.com/dynamicduo/protoscope/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var genOut string

func resetGenCommandState() {
	genOut = ""
}

var genCmd = &cobra.Command{
	Use:   "gen <file>",
	Short: "Emit a runnable Go program for one protocol run",
	Long: `Generates a standalone Go program that performs the protocol over TCP:
one wire exchange per message step, with each cryptographic expression
mapped to a fixed primitive (Enc to AES-GCM, Mac to HMAC-SHA256, H to
SHA-256, Sign/Verify to Ed25519). Key files named <key>.key must be
provisioned out of band.

The generator translates structure; it makes no promises that the
generated run is secure.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		Logger.Infof("Generating code for %s", path)

		src, err := readProtocolFile(path)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read %s: %v", path, err)
		}

		proto, err := parser.Parse(src)
		if err != nil {
			fmt.Println(ui.Fail.Sprint("✗") + " " + ui.Path.Sprint(path) + ": " + err.Error())
			return err
		}

		source, err := codegen.Generate(proto)
		if err != nil {
			return Logger.ErrorfAndReturn("cannot generate code for %s: %v", path, err)
		}

		if genOut == "" {
			fmt.Print(source)
			return nil
		}

		if err := os.WriteFile(genOut, []byte(source), 0644); err != nil {
			return Logger.ErrorfAndReturn("failed to write %s: %v", genOut, err)
		}
		fmt.Println(color.GreenString("✓") + " Wrote generated program to " + ui.Path.Sprint(genOut) + "\n" +
			ui.Info.Sprint("→") + " Build it with " + ui.Code.Sprint("go build "+genOut))
		return nil
	},
}

func init() {
	genCmd.Flags().StringVarP(&genOut, "output", "o", "", "write the program to a file instead of stdout")
}
