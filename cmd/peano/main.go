// Command peano evaluates Peano arithmetic and boolean expressions by
// ordered rule matching.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/peano/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "peano: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
