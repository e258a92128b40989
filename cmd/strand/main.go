// Command strand is the terminal client for the Strand analysis platform.
package main

import (
	"fmt"
	"os"

	"github.com/strandtools/strand/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
