//go:build !windows

package output

import (
	"os"

	"github.com/google/renameio/v2"
)

// writeFileAtomic replaces filename via a temp file and rename, so readers
// never observe a half written document.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(filename, data, perm)
}
