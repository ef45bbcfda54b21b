package main

import (
	"os"

	"github.com/terasky/vendorgraph/cmd/vendorgraph"
)

func main() {
	if err := vendorgraph.Execute(); err != nil {
		os.Exit(1)
	}
}
