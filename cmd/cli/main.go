// Package main is the entry point for the price-list CLI.
package main

import (
	"os"

	"price-list/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
