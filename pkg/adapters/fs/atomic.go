package fs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TempFilePrefix marks in-flight report files.
const TempFilePrefix = "custody-tmp-"

// writeAtomic streams encode's output into a temp file next to path and
// renames it over path once everything is on disk. If any step fails the
// previous report at path stays as it was.
func writeAtomic(path string, perm os.FileMode, encode func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	name := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(name)
		}
	}()

	buf := bufio.NewWriter(tmp)
	if err = encode(buf); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err = buf.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err = os.Rename(name, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
