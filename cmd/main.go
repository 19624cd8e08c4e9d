// Package main starts the ledger data and business servers.
package main

import (
	"os"

	"github.com/go-petr/pet-ledger/cmd/cli"
)

func main() {
	if err := cli.Run(); err != nil {
		os.Exit(1)
	}
}
