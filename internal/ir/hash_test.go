package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardHashDeterminism(t *testing.T) {
	board := [][]Symbol{{"木", "木", "火"}, {"日", "月", "木"}}

	h1, err := BoardHash(board)
	require.NoError(t, err)
	h2, err := BoardHash(board)
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "BoardHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestBoardHashChangesWithContent(t *testing.T) {
	a := MustBoardHash([][]Symbol{{"木", "火"}})
	b := MustBoardHash([][]Symbol{{"火", "木"}})
	c := MustBoardHash([][]Symbol{{"木"}, {"火"}})

	assert.NotEqual(t, a, b, "cell order must matter")
	assert.NotEqual(t, a, c, "shape must matter")
}

func TestHashDomainSeparation(t *testing.T) {
	data := []byte(`[]`)
	assert.NotEqual(t, hashWithDomain(DomainBoard, data), hashWithDomain(DomainSpec, data))
}

func TestSpecHashIgnoresNormalizationForm(t *testing.T) {
	spec := GameSpec{Name: "e\u0301", Rows: 3, Cols: 3, Pool: []Symbol{"木"}}
	other := spec
	other.Name = "\u00e9"

	h1, err := SpecHash(spec)
	require.NoError(t, err)
	h2, err := SpecHash(other)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}
