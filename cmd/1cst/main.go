// Command 1cst terminates the user sessions of a 1C:Enterprise server.
package main

import (
	"os"

	"github.com/onecst/onecst/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
