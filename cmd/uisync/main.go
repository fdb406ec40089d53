// Command uisync reconciles UI state snapshots into navigation, overlay and
// menu effects.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/uisync/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
