// Package main is the entry point for the vaultfm CLI tool.
package main

import (
	"os"

	"github.com/aidanlsb/vaultfm/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
