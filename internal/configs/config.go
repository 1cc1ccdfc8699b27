package configs

import (
	"fmt"
	"os"
	"path/filepath"

	perrors "github.com/dynamicduo/protoscope/internal/errors"
	"github.com/google/uuid"
)

type UserConfig struct {
	User    User    `toml:"user"`
	Reports Reports `toml:"reports"`
}

type User struct {
	UUID string `toml:"user_uuid"`
}

// Reports holds presentation preferences applied by the analyze and diagram
// commands unless overridden by flags.
type Reports struct {
	// Unicode enables ✓/✗ verdict markers; ASCII "PASS"/"FAIL" otherwise.
	Unicode bool `toml:"unicode"`
	// RankDir is the default Graphviz rank direction for diagrams.
	RankDir string `toml:"rankdir"`
}

var defaultReports = Reports{Unicode: true, RankDir: "TB"}

// LoadUserConfig loads the user configuration, returning defaults when no
// config file exists yet.
func LoadUserConfig() (*UserConfig, error) {
	configPath := filepath.Join(UserSettings.ConfigsPath, "config.toml")

	config := &UserConfig{Reports: defaultReports}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadTOML(configPath, config); err != nil {
		return nil, fmt.Errorf("%w: %v", perrors.ErrInvalidUserConfig, err)
	}

	return config, nil
}

// SaveUserConfig saves the user configuration to the config file.
func SaveUserConfig(config *UserConfig) error {
	configPath := filepath.Join(UserSettings.ConfigsPath, "config.toml")

	if err := SaveTOML(configPath, config); err != nil {
		return fmt.Errorf("failed to save user config: %w", err)
	}

	return nil
}

// ProjectConfig identifies a protoscope project. It lives inside the
// .protoscope marker directory and is shared by everyone using the project.
type ProjectConfig struct {
	Project ProjectInfo `toml:"project"`
}

type ProjectInfo struct {
	Name string `toml:"name"`
	UUID string `toml:"project_uuid"`
}

func projectConfigPath() string {
	if ProjectSettings.Path == "" {
		return ""
	}
	return filepath.Join(ProjectSettings.Path, ".protoscope", "project.toml")
}

// LoadProjectConfig loads the enclosing project's configuration. Returns an
// empty config outside a project or before one has been written.
func LoadProjectConfig() (*ProjectConfig, error) {
	config := &ProjectConfig{}

	configPath := projectConfigPath()
	if configPath == "" {
		return config, nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}
	if err := LoadTOML(configPath, config); err != nil {
		return nil, fmt.Errorf("%w: %v", perrors.ErrInvalidProjectConfig, err)
	}
	return config, nil
}

// EnsureProjectConfig ensures the enclosing project has a name and UUID,
// creating project.toml on first use. Outside a project it returns an empty
// config and writes nothing.
func EnsureProjectConfig() (*ProjectConfig, error) {
	config, err := LoadProjectConfig()
	if err != nil {
		return nil, err
	}
	if ProjectSettings.Path == "" {
		return config, nil
	}

	if config.Project.UUID == "" {
		config.Project.Name = filepath.Base(ProjectSettings.Path)
		config.Project.UUID = uuid.New().String()
		if err := SaveTOML(projectConfigPath(), config); err != nil {
			return nil, fmt.Errorf("failed to save project config: %w", err)
		}
	}
	return config, nil
}

// EnsureUserConfig ensures the user configuration exists and has a UUID,
// which audit entries use to attribute analysis runs.
func EnsureUserConfig() (*UserConfig, error) {
	config, err := LoadUserConfig()
	if err != nil {
		return nil, err
	}

	if config.User.UUID == "" {
		config.User.UUID = uuid.New().String()
		if err := SaveUserConfig(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}
