//go:build !windows

package process

import (
	"io"

	"golang.org/x/text/encoding/unicode"
)

// decode passes UTF-8 output through, replacing invalid sequences.
func decode(r io.Reader) io.Reader {
	return unicode.UTF8.NewDecoder().Reader(r)
}
