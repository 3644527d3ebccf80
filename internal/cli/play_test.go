package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kanjimerge/internal/ir"
	"github.com/roach88/kanjimerge/internal/store"
	"github.com/roach88/kanjimerge/internal/testutil"
)

type playResponse struct {
	Status string     `json:"status"`
	Data   PlayResult `json:"data"`
}

func testPlayOptions(format, session string) *PlayOptions {
	return &PlayOptions{
		RootOptions:      &RootOptions{Format: format},
		SessionGenerator: testutil.NewFixedSessionGenerator(session),
	}
}

func runPlayJSON(t *testing.T, args ...string) (PlayResult, error) {
	t.Helper()
	out, err := execute(newPlayCommand(testPlayOptions("json", "play-1")), args...)
	var resp playResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.Equal(t, "ok", resp.Status)
	return resp.Data, err
}

func requireFull(t *testing.T, board [][]ir.Symbol, rows, cols int) {
	t.Helper()
	require.Len(t, board, rows)
	for r, row := range board {
		require.Len(t, row, cols, "row %d", r)
		for c, s := range row {
			assert.False(t, s.IsEmpty(), "cell (%d,%d) is empty", r, c)
		}
	}
}

func TestPlayDealsBoard(t *testing.T) {
	path := writeGame(t, testGame)

	result, err := runPlayJSON(t, path, "--hints")
	require.NoError(t, err)

	assert.Equal(t, "play-1", result.Session)
	assert.Equal(t, "kanji", result.Name)
	assert.Equal(t, uint64(7), result.Seed)
	assert.Empty(t, result.Steps)
	requireFull(t, result.Initial, 5, 5)
	assert.Equal(t, result.Initial, result.Board)
	assert.False(t, result.Deadlocked)
	assert.NotEmpty(t, result.Hints)
	assert.Empty(t, result.Journal)
}

func TestPlaySeedIsDeterministic(t *testing.T) {
	path := writeGame(t, testGame)

	first, err := runPlayJSON(t, path, "--seed", "11", "--swap", "0,0:0,1")
	require.NoError(t, err)
	second, err := runPlayJSON(t, path, "--seed", "11", "--swap", "0,0:0,1")
	require.NoError(t, err)

	assert.Equal(t, uint64(11), first.Seed)
	assert.Equal(t, first.Initial, second.Initial)
	assert.Equal(t, first.Board, second.Board)
	assert.Equal(t, first.Steps, second.Steps)
	assert.Equal(t, first.Score, second.Score)
}

func TestPlayIllegalSwap(t *testing.T) {
	path := writeGame(t, testGame)

	result, err := runPlayJSON(t, path, "--swap", "0,0:2,2")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	require.Len(t, result.Steps, 1)
	step := result.Steps[0]
	assert.Equal(t, ir.RequestSwap, step.Request)
	assert.Equal(t, "ILLEGAL", step.Error)
	assert.Contains(t, step.Message, "not adjacent")
	assert.Empty(t, step.Events)
	assert.Equal(t, result.Initial, result.Board, "rejected swap leaves the board unchanged")
	assert.True(t, result.Failed())
}

func TestPlayRequestOrder(t *testing.T) {
	path := writeGame(t, testGame)

	result, err := runPlayJSON(t, path, "--reshuffle", "--swap", "0,0:0,1", "--reset", "--swap", "4,4:3,4")
	require.NoError(t, err)

	var kinds []ir.RequestKind
	for _, s := range result.Steps {
		kinds = append(kinds, s.Request)
	}
	assert.Equal(t, []ir.RequestKind{ir.RequestSwap, ir.RequestSwap, ir.RequestReset, ir.RequestReshuffle}, kinds)
	assert.Equal(t, &ir.Move{A: ir.P(0, 0), B: ir.P(0, 1)}, result.Steps[0].Swap)
	assert.Equal(t, &ir.Move{A: ir.P(4, 4), B: ir.P(3, 4)}, result.Steps[1].Swap)

	total := 0
	for _, s := range result.Steps {
		total += s.Score
		assert.NotEmpty(t, s.Events, "%s always settles", s.Request)
	}
	assert.Equal(t, total, result.Score)
	requireFull(t, result.Board, 5, 5)
}

func TestPlayText(t *testing.T) {
	path := writeGame(t, testGame)

	out, err := execute(newPlayCommand(testPlayOptions("text", "play-text")), path, "--swap", "1,1:1,2", "--hints")
	require.NoError(t, err)
	assert.Contains(t, out, "Session: play-text")
	assert.Contains(t, out, "Game:    kanji (seed 7)")
	assert.Contains(t, out, "[1] swap (1,1)<->(1,2): score")
	assert.Contains(t, out, "Score: ")
	assert.Contains(t, out, "Moves: ")
}

func TestPlayBadSwapFlag(t *testing.T) {
	path := writeGame(t, testGame)

	tests := []string{"0,0-0,1", "0:0,1", "a,0:0,1", "0,0:0,b"}
	for _, swap := range tests {
		t.Run(swap, func(t *testing.T) {
			_, err := execute(newPlayCommand(testPlayOptions("text", "")), path, "--swap", swap)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), "invalid swap")
		})
	}
}

func TestPlayMissingGame(t *testing.T) {
	_, err := execute(NewPlayCommand(&RootOptions{Format: "text"}), "/nonexistent/game.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestPlayJournalsManualSetting(t *testing.T) {
	path := writeGame(t, testGame)
	dbPath := filepath.Join(t.TempDir(), "kanji.db")

	result, err := runPlayJSON(t, path, "--manual", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, dbPath, result.Journal)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	rec, err := st.ReadSession(context.Background(), "play-1")
	require.NoError(t, err)
	assert.True(t, rec.Spec.Reshuffle.Manual)
	assert.True(t, rec.Dealt)
	assert.Equal(t, result.Initial, rec.InitialBoard)
}

func TestParseMove(t *testing.T) {
	move, err := ParseMove(" 2, 3 : 2,4")
	require.NoError(t, err)
	assert.Equal(t, ir.Move{A: ir.P(2, 3), B: ir.P(2, 4)}, move)

	_, err = ParseMove("2,3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want row,col:row,col")
}
