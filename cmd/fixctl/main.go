// Command fixctl runs and inspects a single FIX 4.2 buy-side session
// (spec.md §6) from a YAML settings file, grounded on cmd/dittofs's
// cobra-based main.
package main

import (
	"fmt"
	"os"

	"github.com/ForgeFinx/ForgeFIX/cmd/fixctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
