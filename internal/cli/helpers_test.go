package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// testGame is a 5x5 kanji game used across the command tests.
const testGame = `package kanji

game: {
	name: "kanji"
	board: {rows: 5, cols: 5}
	pool: ["木", "火", "日", "月", "人"]
	recipes: [
		{a: "木", b: "木", result: "林", score: 100},
		{a: "日", b: "月", result: "明", score: 150},
	]
	triples: [{symbol: "人", score: 40}]
	terminals: ["火"]
	seed: 7
}
`

// writeGame writes CUE source to game.cue in a fresh temp dir.
func writeGame(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

// execute runs cmd with args and returns stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
