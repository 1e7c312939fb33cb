// Command ramtab-bench runs throughput benchmarks against the interning tables.
package main

import (
	"os"

	"github.com/on-the-ground/ramtab/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
