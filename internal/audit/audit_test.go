package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dynamicduo/protoscope/internal/configs"
)

func useProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".protoscope"), 0755); err != nil {
		t.Fatal(err)
	}
	old := configs.ProjectSettings.Path
	configs.ProjectSettings.Path = dir
	t.Cleanup(func() { configs.ProjectSettings.Path = old })
	return dir
}

func TestLogAndReadEntries(t *testing.T) {
	useProject(t)

	Log(Entry{File: "handshake.proto", Roles: 2, Messages: 3, Passed: 1, Failed: 1})
	Log(Entry{File: "transport.proto", Roles: 3, Messages: 1, Passed: 2,
		Catastrophic: []string{"K_AB"}})

	entries, err := ReadEntries()
	if err != nil {
		t.Fatalf("ReadEntries() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	first := entries[0]
	if first.File != "handshake.proto" || first.Passed != 1 || first.Failed != 1 {
		t.Errorf("first entry = %+v", first)
	}
	if first.Timestamp == "" || first.RunUUID == "" {
		t.Error("Log should fill timestamp and run UUID")
	}
	if got := entries[1].Catastrophic; len(got) != 1 || got[0] != "K_AB" {
		t.Errorf("second entry catastrophic = %v", got)
	}
}

func TestLogOutsideProjectIsNoop(t *testing.T) {
	old := configs.ProjectSettings.Path
	configs.ProjectSettings.Path = ""
	t.Cleanup(func() { configs.ProjectSettings.Path = old })

	Log(Entry{File: "x.proto"})

	if got := LogPath(); got != "" {
		t.Errorf("LogPath() = %q, want empty outside a project", got)
	}
	entries, err := ReadEntries()
	if err != nil || entries != nil {
		t.Errorf("ReadEntries() = %v, %v, want nil, nil", entries, err)
	}
}

func TestReadEntriesMissingLog(t *testing.T) {
	useProject(t)
	entries, err := ReadEntries()
	if err != nil {
		t.Fatalf("ReadEntries() error: %v", err)
	}
	if entries != nil {
		t.Errorf("entries = %v, want nil for a missing log", entries)
	}
}

func TestParseEntriesSkipsMalformedLines(t *testing.T) {
	data := strings.Join([]string{
		`{"ts":"2026-08-29T10:00:00.000000Z","run":"r1","file":"a.proto","roles":2}`,
		`not json at all`,
		``,
		`{"ts":"2026-08-29T10:01:00.000000Z","run":"r2","file":"b.proto","roles":3}`,
	}, "\n")

	entries, err := ParseEntries([]byte(data))
	if err != nil {
		t.Fatalf("ParseEntries() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 with the junk line skipped", len(entries))
	}
	if entries[0].RunUUID != "r1" || entries[1].RunUUID != "r2" {
		t.Errorf("entries = %+v", entries)
	}
}
