//go:build !windows

package process

import "os"

// interrupt asks the process to shut down the way Ctrl+C would.
func interrupt(p *os.Process) error {
	if p == nil {
		return nil
	}
	return p.Signal(os.Interrupt)
}
