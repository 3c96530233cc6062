package scenario

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

var ErrNoMatch = errors.New("pattern matched no scenario files")

// Expand resolves file names and doublestar patterns ("scenarios/**/*.yaml")
// to a sorted, de-duplicated list of files. A pattern matching nothing is an
// error so a typo does not turn into an empty, successful run.
func Expand(patterns ...string) ([]string, error) {
	var out []string
	for _, p := range patterns {
		if !doublestar.ValidatePathPattern(p) {
			return nil, fmt.Errorf("%w: %q", doublestar.ErrBadPattern, p)
		}
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoMatch, p)
		}
		for _, m := range matches {
			out = append(out, filepath.Clean(m))
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// Matches reports whether path is selected by any of patterns.
func Matches(path string, patterns []string) bool {
	path = filepath.Clean(path)
	for _, p := range patterns {
		if ok, err := doublestar.PathMatch(filepath.Clean(p), path); err == nil && ok {
			return true
		}
	}
	return false
}
