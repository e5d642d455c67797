package platform

import (
	"errors"
	"iter"
	"os"
	"path/filepath"
)

// ConfigFileName is the optional per-directory configuration file.
const ConfigFileName = ".locknote.yaml"

// ErrConfigNotFound is returned by FindConfig when no configuration file exists
// between startDir and the filesystem root.
var ErrConfigNotFound = errors.New("config file not found")

// FindConfig returns the absolute path of the nearest ConfigFileName at or
// above startDir. A directory carrying the name does not count.
func FindConfig(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for dir := range ancestors(abs) {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
	}
	return "", ErrConfigNotFound
}

// ancestors yields dir and then each parent up to the filesystem root.
func ancestors(dir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			if !yield(dir) {
				return
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				return
			}
			dir = parent
		}
	}
}
