package cmd

import (
	"fmt"
	"os"

	"github.com/dynamicduo/protoscope/internal/configs"
	"github.com/dynamicduo/protoscope/internal/parser"
	"github.com/dynamicduo/protoscope/internal/render"
	"github.com/dynamicduo/protoscope/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	diagramOut string
	diagramAST bool
)

func resetDiagramCommandState() {
	diagramOut = ""
	diagramAST = false
}

var diagramCmd = &cobra.Command{
	Use:   "diagram <file>",
	Short: "Emit a Graphviz DOT sequence diagram of the protocol",
	Long: `Renders the protocol's message flow as Graphviz DOT text: one column per
role, one row per message, arrows labeled with each message body. Pipe the
output through dot to produce an image:

  protoscope diagram nspk.proto | dot -Tsvg -o nspk.svg

With --ast the syntax tree itself is rendered instead of the message flow.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		Logger.Infof("Rendering diagram for %s", path)

		src, err := readProtocolFile(path)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read %s: %v", path, err)
		}

		proto, err := parser.Parse(src)
		if err != nil {
			fmt.Println(ui.Fail.Sprint("✗") + " " + ui.Path.Sprint(path) + ": " + err.Error())
			return err
		}

		userConfig, err := configs.LoadUserConfig()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to load user config: %v", err)
		}

		var dot string
		if diagramAST {
			dot = render.TreeDOT(proto)
		} else {
			dot = render.SequenceDOT(proto, userConfig.Reports.RankDir)
		}

		if diagramOut == "" {
			fmt.Print(dot)
			return nil
		}

		if err := os.WriteFile(diagramOut, []byte(dot), 0644); err != nil {
			return Logger.ErrorfAndReturn("failed to write %s: %v", diagramOut, err)
		}
		fmt.Println(color.GreenString("✓") + " Wrote DOT file " + ui.Path.Sprint(diagramOut))
		return nil
	},
}

func init() {
	diagramCmd.Flags().StringVarP(&diagramOut, "output", "o", "", "write DOT to a file instead of stdout")
	diagramCmd.Flags().BoolVar(&diagramAST, "ast", false, "render the syntax tree instead of the message flow")
}
