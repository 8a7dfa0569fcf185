// Command discoveryctl runs the discovery and rating rules over local JSON
// snapshots.
package main

import (
	"fmt"
	"os"

	"github.com/utafrali/marketplace-discovery/internal/cli"
)

// Set via ldflags during build.
var version = "dev"

func main() {
	if err := cli.NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
