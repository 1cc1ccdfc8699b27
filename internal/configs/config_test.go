package configs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	perrors "github.com/dynamicduo/protoscope/internal/errors"
)

func useConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := UserSettings.ConfigsPath
	UserSettings.ConfigsPath = dir
	t.Cleanup(func() { UserSettings.ConfigsPath = old })
	return dir
}

func TestLoadUserConfigDefaults(t *testing.T) {
	useConfigDir(t)

	config, err := LoadUserConfig()
	if err != nil {
		t.Fatalf("LoadUserConfig() error: %v", err)
	}
	if config.User.UUID != "" {
		t.Errorf("fresh config has UUID %q, want empty", config.User.UUID)
	}
	if !config.Reports.Unicode {
		t.Error("default should enable unicode verdict markers")
	}
	if config.Reports.RankDir != "TB" {
		t.Errorf("default rankdir = %q, want TB", config.Reports.RankDir)
	}
}

func TestLoadUserConfigMalformed(t *testing.T) {
	dir := useConfigDir(t)
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [toml"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadUserConfig()
	if !errors.Is(err, perrors.ErrInvalidUserConfig) {
		t.Errorf("err = %v, want ErrInvalidUserConfig", err)
	}
}

func TestSaveAndLoadUserConfig(t *testing.T) {
	useConfigDir(t)

	saved := &UserConfig{
		User:    User{UUID: "11111111-2222-3333-4444-555555555555"},
		Reports: Reports{Unicode: false, RankDir: "LR"},
	}
	if err := SaveUserConfig(saved); err != nil {
		t.Fatalf("SaveUserConfig() error: %v", err)
	}

	loaded, err := LoadUserConfig()
	if err != nil {
		t.Fatalf("LoadUserConfig() error: %v", err)
	}
	if loaded.User.UUID != saved.User.UUID {
		t.Errorf("UUID = %q, want %q", loaded.User.UUID, saved.User.UUID)
	}
	if loaded.Reports.Unicode || loaded.Reports.RankDir != "LR" {
		t.Errorf("reports = %+v, want saved values", loaded.Reports)
	}
}

func TestEnsureUserConfigAssignsUUIDOnce(t *testing.T) {
	dir := useConfigDir(t)

	first, err := EnsureUserConfig()
	if err != nil {
		t.Fatalf("EnsureUserConfig() error: %v", err)
	}
	if first.User.UUID == "" {
		t.Fatal("EnsureUserConfig did not assign a UUID")
	}
	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	second, err := EnsureUserConfig()
	if err != nil {
		t.Fatalf("EnsureUserConfig() second call error: %v", err)
	}
	if second.User.UUID != first.User.UUID {
		t.Errorf("UUID changed between calls: %q then %q", first.User.UUID, second.User.UUID)
	}
}

func TestEnsureProjectConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".protoscope"), 0755); err != nil {
		t.Fatal(err)
	}
	old := ProjectSettings.Path
	ProjectSettings.Path = dir
	t.Cleanup(func() { ProjectSettings.Path = old })

	first, err := EnsureProjectConfig()
	if err != nil {
		t.Fatalf("EnsureProjectConfig() error: %v", err)
	}
	if first.Project.UUID == "" {
		t.Fatal("EnsureProjectConfig did not assign a UUID")
	}
	if want := filepath.Base(dir); first.Project.Name != want {
		t.Errorf("project name = %q, want %q", first.Project.Name, want)
	}
	if _, err := os.Stat(filepath.Join(dir, ".protoscope", "project.toml")); err != nil {
		t.Fatalf("project.toml not written: %v", err)
	}

	second, err := EnsureProjectConfig()
	if err != nil {
		t.Fatalf("EnsureProjectConfig() second call error: %v", err)
	}
	if second.Project.UUID != first.Project.UUID {
		t.Errorf("project UUID changed: %q then %q", first.Project.UUID, second.Project.UUID)
	}
}

func TestEnsureProjectConfigOutsideProject(t *testing.T) {
	old := ProjectSettings.Path
	ProjectSettings.Path = ""
	t.Cleanup(func() { ProjectSettings.Path = old })

	config, err := EnsureProjectConfig()
	if err != nil {
		t.Fatalf("EnsureProjectConfig() error: %v", err)
	}
	if config.Project.UUID != "" || config.Project.Name != "" {
		t.Errorf("config = %+v, want empty outside a project", config.Project)
	}
}

func TestInitProjectSettings(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".protoscope"), 0755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(dir, "protocols", "deep")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	oldPath := ProjectSettings.Path
	t.Cleanup(func() { ProjectSettings.Path = oldPath })

	if err := os.Chdir(nested); err != nil {
		t.Fatal(err)
	}
	if err := InitProjectSettings(); err != nil {
		t.Fatalf("InitProjectSettings() error: %v", err)
	}
	got, err := filepath.EvalSymlinks(ProjectSettings.Path)
	if err != nil {
		t.Fatal(err)
	}
	want, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("project path = %q, want %q", got, want)
	}
}

func TestInitProjectSettingsOutsideProject(t *testing.T) {
	dir := t.TempDir()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	oldPath := ProjectSettings.Path
	t.Cleanup(func() { ProjectSettings.Path = oldPath })

	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	if err := InitProjectSettings(); err != nil {
		t.Fatalf("InitProjectSettings() error: %v", err)
	}
	if ProjectSettings.Path != "" {
		t.Errorf("project path = %q, want empty outside a project", ProjectSettings.Path)
	}
}
