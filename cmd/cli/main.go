// Package main is the entry point for the tariffkey CLI.
package main

import (
	"os"

	"tariffkey/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
