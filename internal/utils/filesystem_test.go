package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
)

func TestFindProjectRoot(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".protoscope"), 0755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.Chdir(nested); err != nil {
		t.Fatal(err)
	}

	root, err := FindProjectRoot()
	if err != nil {
		t.Fatalf("FindProjectRoot() error: %v", err)
	}
	got, err := filepath.EvalSymlinks(root)
	if err != nil {
		t.Fatal(err)
	}
	want, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("root = %q, want %q", got, want)
	}
}

func TestFindProtocolFiles(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{
		"handshake.proto",
		filepath.Join("nested", "transport.proto"),
		"notes.txt",
		filepath.Join(".protoscope", "ignored.proto"),
	} {
		full := filepath.Join(dir, p)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("roles: A\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := FindProtocolFiles(dir)
	if err != nil {
		t.Fatalf("FindProtocolFiles() error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2: %v", len(files), files)
	}
	for _, f := range files {
		if filepath.Ext(f) != ".proto" {
			t.Errorf("non-proto file found: %s", f)
		}
		if filepath.Base(filepath.Dir(f)) == ".protoscope" {
			t.Errorf("file inside .protoscope not skipped: %s", f)
		}
	}
}

func TestFormatPaths(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })

	got := FormatPaths([]string{"a.proto", "b.proto"})
	want := "\n   a.proto\n   b.proto\n"
	if got != want {
		t.Errorf("FormatPaths = %q, want %q", got, want)
	}
	if got := FormatPaths(nil); got != "\n" {
		t.Errorf("FormatPaths(nil) = %q, want newline", got)
	}
}
