// Package main is the entry point for the freightflow CLI.
package main

import (
	"os"

	"github.com/FreightFlow/FreightFlow/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
