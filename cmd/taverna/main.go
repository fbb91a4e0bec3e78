// Command taverna drives the Clube dos Taberneiros rules engine from the
// command line: character sheets, checks, combat rolls, inventory and the
// long-running chat service.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
