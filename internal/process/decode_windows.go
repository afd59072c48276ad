//go:build windows

package process

import (
	"io"

	"golang.org/x/text/encoding/charmap"
)

// decode converts console output from the OEM code page (CP866) to UTF-8.
func decode(r io.Reader) io.Reader {
	return charmap.CodePage866.NewDecoder().Reader(r)
}
