//go:build windows

package platform

import (
	"os"
	"path/filepath"
)

// DefaultRoot returns %ProgramFiles%\1cv8.
func DefaultRoot() string {
	return filepath.Join(os.Getenv("ProgramFiles"), "1cv8")
}

// executableFile returns bin\<name>.exe; Windows installations keep their
// executables one level down.
func executableFile(name string) string {
	return filepath.Join("bin", name+".exe")
}
