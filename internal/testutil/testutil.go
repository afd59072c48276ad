// Package testutil provides fixtures shared by the 1cst tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// WriteFile creates path on fs, including missing parent directories.
func WriteFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	writeFile(t, fs, path, content, 0644)
}

// WriteExecutable creates an executable file at path on fs, including missing
// parent directories.
func WriteExecutable(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	writeFile(t, fs, path, content, 0755)
}

func writeFile(t *testing.T, fs afero.Fs, path, content string, perm os.FileMode) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(fs, path, []byte(content), perm); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MkdirAll creates each of dirs under root on fs.
func MkdirAll(t *testing.T, fs afero.Fs, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := fs.MkdirAll(filepath.Join(root, d), 0755); err != nil {
			t.Fatalf("failed to create %s: %v", d, err)
		}
	}
}

// WriteConfig writes a YAML config file into a fresh temporary directory and
// returns its path.
func WriteConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	WriteFile(t, afero.NewOsFs(), path, content)
	return path
}

// SkipIfNoShell skips tests that script fake executables with /bin/sh.
func SkipIfNoShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}
