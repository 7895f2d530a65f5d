// Command marketledger serves the marketplace ledger api and queries its snapshots.
package main

import (
	"os"

	"github.com/go-petr/market-ledger/cmd/marketledger/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
