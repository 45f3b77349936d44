// Package main is the leapwallet entrypoint.
package main

import (
	"os"

	"github.com/leapstack-labs/leapwallet/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
