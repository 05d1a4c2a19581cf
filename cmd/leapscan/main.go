// Package main provides the leapscan CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/leapscan/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
