// Command recall captures activity, keeps project documents and serves
// semantic retrieval over both.
package main

import (
	"os"

	"github.com/custodia-labs/recall-cli/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
