package cmd

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dynamicduo/protoscope/internal/configs"

	"github.com/fatih/color"
)

const validProto = `roles: Alice, Bob
shared K_AB for Alice, Bob
Alice -> Bob: c = Enc(K_AB, M_1)
assert secret(M_1)
`

func writeProto(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runCommand executes the root command with args and returns its error and
// everything written to stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ResetGlobalState()
	color.NoColor = true

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w

	root := GetRootCmd()
	root.SetArgs(args)
	runErr := root.Execute()

	w.Close()
	os.Stdout = old
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(out), runErr
}

func isolateConfigs(t *testing.T) {
	t.Helper()
	oldConfigs := configs.UserSettings.ConfigsPath
	oldProject := configs.ProjectSettings.Path
	configs.UserSettings.ConfigsPath = t.TempDir()
	configs.ProjectSettings.Path = ""
	t.Cleanup(func() {
		configs.UserSettings.ConfigsPath = oldConfigs
		configs.ProjectSettings.Path = oldProject
	})
}

func TestCheckCommand(t *testing.T) {
	path := writeProto(t, "handshake.proto", validProto)
	out, err := runCommand(t, "check", path)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out, "2 roles, 1 keys, 1 messages, 1 assertions") {
		t.Errorf("check output = %q", out)
	}
}

func TestCheckCommandTree(t *testing.T) {
	path := writeProto(t, "handshake.proto", validProto)
	out, err := runCommand(t, "check", "--tree", path)
	if err != nil {
		t.Fatalf("check --tree failed: %v", err)
	}
	if !strings.Contains(out, "Protocol\n") || !strings.Contains(out, "assert secret(M_1)") {
		t.Errorf("tree output = %q", out)
	}
}

func TestCheckCommandParseError(t *testing.T) {
	path := writeProto(t, "bad.proto", "roles: Alice, Bob\nAlice -> Bob :: bad\n")
	out, err := runCommand(t, "check", path)
	if err == nil {
		t.Fatal("check succeeded on a malformed file")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error = %v, want line 2 diagnostic", err)
	}
	if !strings.Contains(out, "✗") {
		t.Errorf("output = %q, want failure marker", out)
	}
}

func TestCheckCommandMissingAndEmptyFiles(t *testing.T) {
	if _, err := runCommand(t, "check", filepath.Join(t.TempDir(), "nope.proto")); err == nil {
		t.Error("check succeeded on a missing file")
	}
	empty := writeProto(t, "empty.proto", "  \n\t\n")
	if _, err := runCommand(t, "check", empty); err == nil {
		t.Error("check succeeded on an empty file")
	}
}

func TestCheckProjectSweep(t *testing.T) {
	isolateConfigs(t)
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".protoscope"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "good.proto"), []byte(validProto), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.proto"), []byte("roles Alice"), 0644); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	_, err = runCommand(t, "check")
	if err == nil {
		t.Fatal("project sweep should fail while bad.proto is malformed")
	}
	if !strings.Contains(err.Error(), "1 of 2 protocol files failed") {
		t.Errorf("error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "bad.proto"), []byte(validProto), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCommand(t, "check"); err != nil {
		t.Errorf("project sweep failed after fixing the file: %v", err)
	}
}

func TestAnalyzeJSON(t *testing.T) {
	isolateConfigs(t)
	path := writeProto(t, "handshake.proto", validProto)

	out, err := runCommand(t, "analyze", "--json", path)
	if err != nil {
		t.Fatalf("analyze --json failed: %v", err)
	}

	var report jsonReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if report.File != path {
		t.Errorf("report file = %q, want %q", report.File, path)
	}
	if len(report.Principals) != 3 {
		t.Fatalf("got %d principals, want Alice, Bob, and the adversary", len(report.Principals))
	}
	last := report.Principals[2]
	if !last.Adversary || last.Name != "Adversary" {
		t.Errorf("last principal = %+v, want the adversary", last)
	}
	if len(report.Assertions) != 1 || !report.Assertions[0].Pass {
		t.Errorf("assertions = %+v, want one pass", report.Assertions)
	}
}

func TestAnalyzeText(t *testing.T) {
	isolateConfigs(t)
	path := writeProto(t, "leaky.proto", `roles: Alice, Bob
shared K_AB for Alice, Bob
Alice -> Bob: c = Enc(K_AB, M_1)
Bob -> Alice: K_AB
assert secret(M_1)
`)

	out, err := runCommand(t, "analyze", path)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	for _, want := range []string{
		"=== Knowledge Summary ===",
		"FAIL",
		"secret(M_1)",
		"Catastrophic: adversary learned K_AB, M_1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("analyze output missing %q:\n%s", want, out)
		}
	}
}

func TestDiagramWritesFile(t *testing.T) {
	isolateConfigs(t)
	path := writeProto(t, "handshake.proto", validProto)
	outPath := filepath.Join(t.TempDir(), "handshake.dot")

	if _, err := runCommand(t, "diagram", "-o", outPath, path); err != nil {
		t.Fatalf("diagram failed: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "digraph Protocol {") {
		t.Errorf("DOT file content = %q", data)
	}
}

func TestDiagramAST(t *testing.T) {
	isolateConfigs(t)
	path := writeProto(t, "handshake.proto", validProto)

	out, err := runCommand(t, "diagram", "--ast", path)
	if err != nil {
		t.Fatalf("diagram --ast failed: %v", err)
	}
	if !strings.Contains(out, "digraph AST {") {
		t.Errorf("output = %q", out)
	}
}

func TestGenWritesProgram(t *testing.T) {
	path := writeProto(t, "handshake.proto", validProto)
	outPath := filepath.Join(t.TempDir(), "run.go")

	if _, err := runCommand(t, "gen", "-o", outPath, path); err != nil {
		t.Fatalf("gen failed: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	code := string(data)
	if !strings.Contains(code, "package main") || !strings.Contains(code, "DO NOT EDIT") {
		t.Errorf("generated program missing expected header")
	}
}

func TestTokensCommand(t *testing.T) {
	path := writeProto(t, "handshake.proto", "Alice -> Bob: M\n")
	out, err := runCommand(t, "tokens", path)
	if err != nil {
		t.Fatalf("tokens failed: %v", err)
	}
	for _, want := range []string{"IDENT", "ARROW", "COLON", "EOF"} {
		if !strings.Contains(out, want) {
			t.Errorf("token dump missing %q:\n%s", want, out)
		}
	}
}
