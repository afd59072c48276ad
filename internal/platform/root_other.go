//go:build !windows && !linux

package platform

import (
	"os"
	"path/filepath"
)

// DefaultRoot returns the directory holding the running executable, so a
// platform unpacked next to 1cst is picked up.
func DefaultRoot() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

func executableFile(name string) string {
	return name
}
