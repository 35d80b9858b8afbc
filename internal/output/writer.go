package output

import (
	"fmt"
	"os"
	"path/filepath"
)

// Writer puts rendered documents on disk.
type Writer struct {
	// Override replaces files that already exist. When false an existing
	// file is left untouched and Write reports it as not written.
	Override bool
}

// Write stores data at path, creating parent directories as needed. It
// reports whether the file was written.
func (w Writer) Write(path string, data []byte) (bool, error) {
	if !w.Override {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		} else if !os.IsNotExist(err) {
			return false, fmt.Errorf("stat %s: %w", path, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}
