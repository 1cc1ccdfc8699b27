package audit

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/dynamicduo/protoscope/internal/configs"
	"github.com/google/uuid"
)

// Entry records one analysis run.
type Entry struct {
	Timestamp   string `json:"ts"`                // RFC3339 with microseconds.
	RunUUID     string `json:"run"`               // UUID of this analysis run.
	UserUUID    string `json:"user"`              // UUID of the user running it.
	ProjectUUID string `json:"project,omitempty"` // UUID of the enclosing project.
	File        string `json:"file"`              // Protocol file analyzed.

	Roles        int      `json:"roles"`
	Messages     int      `json:"messages"`
	Passed       int      `json:"passed"`
	Failed       int      `json:"failed"`
	Catastrophic []string `json:"catastrophic,omitempty"`
}

// Log appends an entry to the project audit log. Best-effort: analysis
// should never fail because audit logging did, so errors are swallowed.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}
	if entry.RunUUID == "" {
		entry.RunUUID = uuid.New().String()
	}

	logPath := LogPath()
	if logPath == "" {
		// Not inside an initialized project, skip logging.
		return
	}

	// #nosec G306 -- the audit log is shared project history.
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_, _ = f.Write(append(data, '\n'))
}

// LogPath returns the audit log path, or "" outside a project.
func LogPath() string {
	projectPath := configs.ProjectSettings.Path
	if projectPath == "" {
		return ""
	}
	return filepath.Join(projectPath, ".protoscope", "audit.jsonl")
}

// ReadEntries reads all entries from the audit log. Returns nil when the
// log does not exist.
func ReadEntries() ([]Entry, error) {
	logPath := LogPath()
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries. Malformed lines
// are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	var entries []Entry
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
