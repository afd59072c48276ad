//go:build windows

package process

import "os"

// interrupt terminates the process. Windows cannot deliver an interrupt to a
// child that shares no console group with us, so the process is killed.
func interrupt(p *os.Process) error {
	if p == nil {
		return nil
	}
	return p.Kill()
}
