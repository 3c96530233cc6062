package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFileName is the file FindConfig looks for.
const ConfigFileName = "custody.yaml"

var ErrConfigNotFound = errors.New("config not found")

// FindConfig looks upwards from startDir for a custody.yaml and returns its
// absolute path. It stops at the first directory holding a .git entry, so a
// config outside the current project is never picked up.
func FindConfig(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ConfigFileName) {
			return filepath.Join(dir, ConfigFileName), nil
		}
		if hasFile(dir, ".git") {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w: no %s above %s", ErrConfigNotFound, ConfigFileName, abs)
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
