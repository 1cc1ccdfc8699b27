package utils

import (
	"os"
	"path/filepath"

	perrors "github.com/dynamicduo/protoscope/internal/errors"
)

// FindProjectRoot walks up from the working directory looking for a
// .protoscope directory and returns the directory containing it.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		marker := filepath.Join(dir, ".protoscope")
		if info, err := os.Stat(marker); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", perrors.ErrProjectNotInitialized
		}
		dir = parent
	}
}

// FindProtocolFiles returns all *.proto files under root, skipping the
// .protoscope directory itself.
func FindProtocolFiles(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == ".protoscope" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".proto" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
