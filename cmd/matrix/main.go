// Command matrix is the CLI boundary over the persistent
// developer-memory engine: store/recall solutions, record failures,
// register grudges, index source trees, schedule cron tasks, and
// dispatch assistant hooks. Following BeadsLog's cmd/bd layout, each
// subcommand lives in its own file and registers itself on rootCmd
// from an init().
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
