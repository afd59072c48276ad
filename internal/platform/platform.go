// Package platform locates the server platform installation and the
// administrative executables inside it.
//
// Installations live under a version-rooted tree such as
// /opt/1cv8/x86_64/8.3.20.1549. When no usable path is supplied, the
// directory with the highest numeric version is picked.
package platform

import (
	"path/filepath"
	"strconv"

	"github.com/onecst/onecst/internal/errors"
	"github.com/onecst/onecst/internal/logging"
	"github.com/spf13/afero"
)

// Executable names, without the OS-specific prefix and suffix.
const (
	ServiceExecutable = "ras"
	ClientExecutable  = "rac"
)

// Locator discovers platform installations. The zero value is not usable;
// create one with NewLocator.
type Locator struct {
	fs     afero.Fs
	root   string
	logger *logging.Logger
}

// NewLocator creates a Locator scanning root on fs. An empty root selects
// the OS default returned by DefaultRoot.
func NewLocator(fs afero.Fs, root string, logger *logging.Logger) *Locator {
	if root == "" {
		root = DefaultRoot()
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Locator{fs: fs, root: root, logger: logger}
}

// Root returns the directory scanned by Locate.
func (l *Locator) Root() string {
	return l.root
}

// Locate returns the subdirectory of the root with the highest version key.
// Names are reduced to their digits by dropping '.'; names that are not then
// purely numeric are ignored. Ties keep the first directory enumerated.
func (l *Locator) Locate() (string, error) {
	isDir, err := afero.IsDir(l.fs, l.root)
	if err != nil || !isDir {
		return "", errors.NewPlatformError("platform root does not exist", errors.ErrPlatformNotFound).WithPath(l.root)
	}

	entries, err := afero.ReadDir(l.fs, l.root)
	if err != nil {
		return "", errors.NewPlatformError("failed to read platform root", err).WithPath(l.root)
	}

	var (
		best    string
		bestKey int64
		found   bool
	)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		key, ok := VersionKey(entry.Name())
		if !ok {
			l.logger.Debug("Skipping platform directory", "name", entry.Name())
			continue
		}
		if !found || key > bestKey {
			best, bestKey, found = entry.Name(), key, true
		}
	}

	if !found {
		return "", errors.NewPlatformError("no versioned platform directory found", errors.ErrPlatformNotFound).WithPath(l.root)
	}
	return filepath.Join(l.root, best), nil
}

// VersionKey strips every '.' from name and parses the remainder as an
// integer. It reports false when the remainder is empty or not all digits.
func VersionKey(name string) (int64, bool) {
	digits := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '.':
		case c >= '0' && c <= '9':
			digits = append(digits, c)
		default:
			return 0, false
		}
	}
	if len(digits) == 0 {
		return 0, false
	}
	key, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return 0, false
	}
	return key, true
}

// HasExecutable reports whether the named executable exists in dir.
func (l *Locator) HasExecutable(dir, name string) bool {
	if dir == "" {
		return false
	}
	ok, err := afero.Exists(l.fs, ExecutablePath(dir, name))
	return err == nil && ok
}

// Resolve returns supplied when the service executable exists there and
// falls back to Locate otherwise.
func (l *Locator) Resolve(supplied string) (string, error) {
	if l.HasExecutable(supplied, ServiceExecutable) {
		l.logger.Info("Platform path", "path", supplied)
		return supplied, nil
	}

	if supplied != "" {
		l.logger.Warn("Platform path is invalid, trying to find", "path", supplied)
	} else {
		l.logger.Info("Platform path not specified, trying to find", "root", l.root)
	}

	path, err := l.Locate()
	if err != nil {
		return "", err
	}
	l.logger.Info("Found the latest version of the platform", "path", path)
	return path, nil
}

// Verify checks that every administrative executable exists in dir.
func (l *Locator) Verify(dir string) error {
	for _, name := range []string{ServiceExecutable, ClientExecutable} {
		if !l.HasExecutable(dir, name) {
			return errors.NewPlatformError("required executable is missing", errors.ErrExecutableNotFound).
				WithPath(dir).
				WithExecutable(ExecutablePath(dir, name))
		}
	}
	return nil
}

// ExecutablePath returns the full path of the named executable in dir.
func ExecutablePath(dir, name string) string {
	return filepath.Join(dir, executableFile(name))
}
