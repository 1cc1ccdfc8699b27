package cmd

import (
	"fmt"

	"github.com/dynamicduo/protoscope/internal/configs"
	"github.com/dynamicduo/protoscope/internal/parser"
	"github.com/dynamicduo/protoscope/internal/ui"
	"github.com/dynamicduo/protoscope/internal/utils"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var checkTree bool

func resetCheckCommandState() {
	checkTree = false
}

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Parse and validate protocol files",
	Long: `Parses the protocol file, checks that every referenced identifier is
declared, and reports the first syntax or declaration error with its line
number. With --tree, prints the syntax tree of a valid protocol.

Without a file argument, checks every .proto file in the enclosing project
(the directory tree containing .protoscope).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return checkProject()
		}
		return checkFile(args[0])
	},
}

func checkFile(path string) error {
	Logger.Infof("Checking protocol file %s", path)

	src, err := readProtocolFile(path)
	if err != nil {
		return Logger.ErrorfAndReturn("failed to read %s: %v", path, err)
	}

	proto, err := parser.Parse(src)
	if err != nil {
		fmt.Println(ui.Fail.Sprint("✗") + " " + ui.Path.Sprint(path) + ": " + err.Error())
		return err
	}

	fmt.Println(color.GreenString("✓") + " " + ui.Path.Sprint(path) + " parses: " +
		fmt.Sprintf("%d roles, %d keys, %d messages, %d assertions",
			len(proto.Roles.Roles), len(proto.KeyDecls), len(proto.Messages), len(proto.Assertions)))

	if checkTree {
		fmt.Print(proto.Pretty())
	}
	return nil
}

func checkProject() error {
	if err := configs.InitProjectSettings(); err != nil {
		return Logger.ErrorfAndReturn("failed to locate project: %v", err)
	}
	root := configs.ProjectSettings.Path
	if root == "" {
		return Logger.ErrorfAndReturn("not inside a protoscope project; pass a file instead")
	}

	Logger.Infof("Checking all protocol files under %s", root)
	files, err := utils.FindProtocolFiles(root)
	if err != nil {
		return Logger.ErrorfAndReturn("failed to scan %s: %v", root, err)
	}
	if len(files) == 0 {
		fmt.Println(ui.Muted.Sprint("no .proto files found under " + root))
		return nil
	}

	var bad []string
	for _, path := range files {
		if err := checkFile(path); err != nil {
			bad = append(bad, path)
		}
	}

	if len(bad) > 0 {
		return Logger.ErrorfAndReturn("%d of %d protocol files failed to parse:%s",
			len(bad), len(files), utils.FormatPaths(bad))
	}
	fmt.Println(color.GreenString("✓") + " All " +
		fmt.Sprintf("%d", len(files)) + " protocol files parse" + utils.FormatPaths(files))
	return nil
}

func init() {
	checkCmd.Flags().BoolVar(&checkTree, "tree", false, "print the syntax tree")
}
