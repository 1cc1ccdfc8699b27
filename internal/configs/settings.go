package configs

import (
	"log"
	"os"
	"path/filepath"

	"github.com/dynamicduo/protoscope/internal/utils"
)

type Settings struct {
	ConfigsPath string
}

type Project struct {
	// Path is the directory containing .protoscope, or "" when the command
	// runs outside any initialized project.
	Path string
}

var (
	UserSettings    *Settings
	ProjectSettings *Project
)

func init() {
	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatalf("error getting config directory: %s", err)
	}

	UserSettings = &Settings{
		ConfigsPath: filepath.Join(configDir, "protoscope"),
	}
	ProjectSettings = &Project{}
}

// InitProjectSettings locates the enclosing protoscope project, if any.
// Commands that merely analyze a file work fine without one; the project
// only carries the audit log.
func InitProjectSettings() error {
	root, err := utils.FindProjectRoot()
	if err != nil {
		ProjectSettings.Path = ""
		return nil
	}
	ProjectSettings.Path = root
	return nil
}
