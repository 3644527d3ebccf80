package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeMatchesIsCommutative(t *testing.T) {
	r := Recipe{A: "日", B: "月", Result: "明", Score: 150}

	assert.True(t, r.Matches("日", "月"))
	assert.True(t, r.Matches("月", "日"))
	assert.False(t, r.Matches("日", "日"))
	assert.False(t, r.Matches("木", "月"))
}

func TestPosNeighbours(t *testing.T) {
	p := P(1, 1)
	assert.Equal(t, P(1, 2), p.Right())
	assert.Equal(t, P(2, 1), p.Up())
	assert.Equal(t, "(1,1)", p.String())
}

func TestParseAndFormatRow(t *testing.T) {
	row := ParseRow("木, 木 ,.")
	require.Len(t, row, 3)
	assert.Equal(t, Symbol("木"), row[0])
	assert.True(t, row[2].IsEmpty())
	assert.Equal(t, "木,木,.", FormatRow(row))
}

func TestGameSpecWithDefaults(t *testing.T) {
	spec := GameSpec{
		Rows:    3,
		Cols:    3,
		Pool:    []Symbol{" 木 "},
		Recipes: []Recipe{{A: "木", B: "木", Result: "林", Score: 100}},
	}

	got := spec.WithDefaults()
	assert.Equal(t, Symbol("木"), got.Pool[0])
	assert.Equal(t, DefaultTripleScore, got.Scores.Triple)
	assert.Equal(t, DefaultTerminalScore, got.Scores.Terminal)
	assert.Equal(t, DefaultReshuffleAttempts, got.Reshuffle.MaxAttempts)
	assert.Equal(t, DefaultMaxCascade, got.MaxCascade)
	assert.Equal(t, Symbol(" 木 "), spec.Pool[0], "original spec must not be mutated")
}

func TestReportFilters(t *testing.T) {
	r := &Report{Events: []Event{
		{Seq: 1, Kind: EventComboStep, Depth: 1},
		{Seq: 2, Kind: EventMatchApplied, Depth: 1, Applied: &Applied{Kind: MatchTerminalPair}},
		{Seq: 3, Kind: EventCascadeSettled, Depth: 1},
	}}

	assert.Len(t, r.EventsOf(EventComboStep), 1)
	require.Len(t, r.AppliedMatches(), 1)
	assert.Equal(t, MatchTerminalPair, r.AppliedMatches()[0].Kind)
}

func TestIsConfigError(t *testing.T) {
	err := NewConfigError(ErrCodeEmptyPool, "pool", "symbol pool is empty")

	assert.True(t, IsConfigError(err, ErrCodeEmptyPool))
	assert.True(t, IsConfigError(err, ""))
	assert.False(t, IsConfigError(err, ErrCodeInvalidRecipe))
	assert.Equal(t, "EMPTY_POOL: pool: symbol pool is empty", err.Error())
}
