// Command kanjimerge runs, journals and replays kanji merging games.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/kanjimerge/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
