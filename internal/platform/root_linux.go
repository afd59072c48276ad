//go:build linux

package platform

// DefaultRoot returns the 64-bit package installation root.
func DefaultRoot() string {
	return "/opt/1cv8/x86_64"
}

func executableFile(name string) string {
	return name
}
