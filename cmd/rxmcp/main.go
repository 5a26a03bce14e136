// Package main provides the entry point for the rxmcp CLI.
package main

import (
	"os"

	"github.com/rxdocs/rxmcp/cmd/rxmcp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
