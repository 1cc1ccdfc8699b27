package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dynamicduo/protoscope/internal/analysis"
	"github.com/dynamicduo/protoscope/internal/audit"
	"github.com/dynamicduo/protoscope/internal/configs"
	"github.com/dynamicduo/protoscope/internal/parser"
	"github.com/dynamicduo/protoscope/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var analyzeJSON bool

func resetAnalyzeCommandState() {
	analyzeJSON = false
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Compute per-principal knowledge and check secrecy assertions",
	Long: `Parses the protocol and computes, for every declared role and for the
implicit passive adversary, the terms each can possess after one protocol
run. Secrecy assertions are evaluated against that approximation, and any
adversary-known term that looks like a key or plaintext (K_*, M_*) is
flagged as a catastrophic leak even without an assertion.

Inside an initialized project (a directory with .protoscope), every run is
appended to the project audit log.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		Logger.Infof("Starting analyze command")

		src, err := readProtocolFile(path)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read %s: %v", path, err)
		}

		Logger.Debugf("Loading user config")
		userConfig, err := configs.EnsureUserConfig()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to load user config: %v", err)
		}

		proto, err := parser.Parse(src)
		if err != nil {
			fmt.Println(ui.Fail.Sprint("✗") + " " + ui.Path.Sprint(path) + ": " + err.Error())
			return err
		}
		Logger.Infof("Parsed %d messages, %d assertions", len(proto.Messages), len(proto.Assertions))

		if analyzeJSON {
			// No spinner in JSON mode: stdout belongs to the report.
			report := analysis.Analyze(proto)
			recordAnalysis(path, userConfig, proto.Roles.Names(), len(proto.Messages), report)
			return printReportJSON(path, report)
		}

		spinner, cleanup := startSpinner("Analyzing knowledge flow...")
		defer cleanup()

		report := analysis.Analyze(proto)
		Logger.Debugf("Decryption closure converged after %d passes", report.ClosureIterations)

		recordAnalysis(path, userConfig, proto.Roles.Names(), len(proto.Messages), report)

		spinner.FinalMSG = formatReport(path, report, userConfig.Reports.Unicode)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "emit the report as JSON")
}

func formatReport(path string, report *analysis.Report, unicode bool) string {
	passMark, failMark := "PASS", "FAIL"
	if unicode {
		passMark, failMark = "✓ PASS", "✗ FAIL"
	}

	var sb strings.Builder
	sb.WriteString(color.GreenString("✓") + " Analyzed " + ui.Path.Sprint(path) + "\n\n")

	sb.WriteString("=== Knowledge Summary ===\n")
	for _, pk := range report.Principals {
		sb.WriteString(ui.Term.Sprint(pk.Principal.String()) + " knows: " + joinOrNone(pk.Atomic) + "\n")
		if len(pk.Opaque) > 0 {
			labels := make([]string, len(pk.Opaque))
			for i, op := range pk.Opaque {
				labels[i] = op.Label()
			}
			sb.WriteString("  has seen: " + ui.Muted.Sprint(strings.Join(labels, ", ")) + "\n")
		}
	}

	if len(report.Verdicts) > 0 {
		sb.WriteString("\nAssertions:\n")
		for _, v := range report.Verdicts {
			if v.Pass {
				sb.WriteString("  " + ui.Pass.Sprint(passMark) + " " + v.Assertion.Label() + "\n")
			} else {
				sb.WriteString("  " + ui.Fail.Sprint(failMark) + " " + v.Assertion.Label() +
					" " + ui.Muted.Sprint(v.Reason) + "\n")
			}
		}
	} else {
		sb.WriteString("\n" + ui.Muted.Sprint("no assertions declared") + "\n")
	}

	if len(report.Catastrophic) > 0 {
		sb.WriteString("\n" + ui.Fail.Sprint("*** Catastrophic: adversary learned "+
			strings.Join(report.Catastrophic, ", ")+" ***") + "\n")
	} else {
		sb.WriteString("\nNo catastrophic leaks under this model.\n")
	}
	return sb.String()
}

func joinOrNone(terms []string) string {
	if len(terms) == 0 {
		return ui.Muted.Sprint("nothing")
	}
	return strings.Join(terms, ", ")
}

// jsonReport is the plain structured form handed to presentation shells.
type jsonReport struct {
	File         string          `json:"file"`
	Principals   []jsonPrincipal `json:"principals"`
	Assertions   []jsonVerdict   `json:"assertions"`
	Catastrophic []string        `json:"catastrophic,omitempty"`
}

type jsonPrincipal struct {
	Name      string   `json:"name"`
	Adversary bool     `json:"adversary,omitempty"`
	Atomic    []string `json:"atomic"`
	Opaque    []string `json:"opaque"`
}

type jsonVerdict struct {
	Assertion string `json:"assertion"`
	Pass      bool   `json:"pass"`
	Reason    string `json:"reason,omitempty"`
}

func printReportJSON(path string, report *analysis.Report) error {
	out := jsonReport{File: path, Catastrophic: report.Catastrophic}
	for _, pk := range report.Principals {
		jp := jsonPrincipal{
			Name:      pk.Principal.String(),
			Adversary: pk.Principal.Adversary,
			Atomic:    pk.Atomic,
			Opaque:    []string{},
		}
		if jp.Atomic == nil {
			jp.Atomic = []string{}
		}
		for _, op := range pk.Opaque {
			jp.Opaque = append(jp.Opaque, op.Label())
		}
		out.Principals = append(out.Principals, jp)
	}
	for _, v := range report.Verdicts {
		out.Assertions = append(out.Assertions, jsonVerdict{
			Assertion: v.Assertion.Label(),
			Pass:      v.Pass,
			Reason:    v.Reason,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func recordAnalysis(path string, userConfig *configs.UserConfig, roles []string, messages int, report *analysis.Report) {
	if err := configs.InitProjectSettings(); err != nil {
		Logger.Warnf("Project discovery failed: %v", err)
	}
	projectConfig, err := configs.EnsureProjectConfig()
	if err != nil {
		Logger.Warnf("Project config unavailable: %v", err)
		projectConfig = &configs.ProjectConfig{}
	}
	passed, failed := 0, 0
	for _, v := range report.Verdicts {
		if v.Pass {
			passed++
		} else {
			failed++
		}
	}
	audit.Log(audit.Entry{
		UserUUID:     userConfig.User.UUID,
		ProjectUUID:  projectConfig.Project.UUID,
		File:         path,
		Roles:        len(roles),
		Messages:     messages,
		Passed:       passed,
		Failed:       failed,
		Catastrophic: report.Catastrophic,
	})
}
