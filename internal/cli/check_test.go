package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kanjimerge/internal/compiler"
	"github.com/roach88/kanjimerge/internal/ir"
)

func TestCheckValidGame(t *testing.T) {
	path := writeGame(t, testGame)

	out, err := execute(NewCheckCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
	assert.Contains(t, out, "Name:      kanji")
	assert.Contains(t, out, "Board:     5x5")
	assert.Contains(t, out, "Pool:      木,火,日,月,人")
	assert.Contains(t, out, "Recipes:   2")
	assert.Contains(t, out, "Terminals: 明,林,火")
	assert.Contains(t, out, "Materials: 日,月,木")
	assert.NotContains(t, out, "warning")
}

func TestCheckValidGameJSON(t *testing.T) {
	path := writeGame(t, testGame)

	out, err := execute(NewCheckCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   CheckSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "kanji", resp.Data.Name)
	assert.Equal(t, 5, resp.Data.Rows)
	assert.Equal(t, 1, resp.Data.Triples)
	assert.Equal(t, []ir.Symbol{"明", "林", "火"}, resp.Data.Terminals)
	assert.Empty(t, resp.Data.Warnings)
}

func TestCheckDirectory(t *testing.T) {
	path := writeGame(t, testGame)

	out, err := execute(NewCheckCommand(&RootOptions{Format: "text"}), filepath.Dir(path))
	require.NoError(t, err)
	assert.Contains(t, out, "Board:     5x5")
}

func TestCheckUnreachableMaterialIsWarning(t *testing.T) {
	path := writeGame(t, `game: {
	board: {rows: 4, cols: 4}
	pool: ["木", "火", "人"]
	recipes: [{a: "水", b: "木", result: "森"}]
}
`)

	out, err := execute(NewCheckCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
	assert.Contains(t, out, "warning: [E208] recipes[0]")
}

func TestCheckValidationErrors(t *testing.T) {
	// 火 is both a material and a declared terminal; 人 is listed twice.
	path := writeGame(t, `game: {
	board: {rows: 4, cols: 4}
	pool: ["木", "火", "人", "人"]
	recipes: [{a: "火", b: "木", result: "炭"}]
	terminals: ["火"]
}
`)

	out, err := execute(NewCheckCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "2 validation errors")
	assert.Contains(t, out, compiler.ErrPoolDuplicate)
	assert.Contains(t, out, compiler.ErrTerminalInvalid)
}

func TestCheckValidationErrorsJSON(t *testing.T) {
	path := writeGame(t, `game: {
	board: {rows: 4, cols: 4}
	pool: ["木", "木"]
}
`)

	out, err := execute(NewCheckCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, compiler.ErrPoolDuplicate, resp.Error.Code)
	assert.NotNil(t, resp.Error.Details)
}

func TestCheckCompileError(t *testing.T) {
	path := writeGame(t, `game: {board: {rows: 0, cols: 3}, pool: ["木"]}`)

	out, err := execute(NewCheckCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.NotEmpty(t, resp.Error.Code)
}

func TestCheckMissingFile(t *testing.T) {
	out, err := execute(NewCheckCommand(&RootOptions{Format: "text"}), "/nonexistent/game.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestCheckMissingArg(t *testing.T) {
	_, err := execute(NewCheckCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestCheckDefaultConfig(t *testing.T) {
	out, err := execute(NewCheckCommand(&RootOptions{Format: "text"}), "../../configs/kanji.cue")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Board:     6x6")
	assert.Contains(t, out, "Recipes:   3")
	assert.Contains(t, out, "Triples:   1")
	assert.NotContains(t, out, "warning")
}
