package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScriptedRand_CyclesDraws(t *testing.T) {
	r := NewScriptedRand(0, 2, 1)

	got := []int{r.IntN(5), r.IntN(5), r.IntN(5), r.IntN(5)}
	assert.Equal(t, []int{0, 2, 1, 0}, got)
	assert.Equal(t, 4, r.Calls())
}

func TestScriptedRand_ReducesModuloN(t *testing.T) {
	r := NewScriptedRand(7)
	assert.Equal(t, 1, r.IntN(3))
}

func TestScriptedRand_EmptyScript(t *testing.T) {
	r := NewScriptedRand()
	assert.Equal(t, 0, r.IntN(4))
	assert.Equal(t, 0, r.IntN(4))
}

func TestFixedSessionGenerator(t *testing.T) {
	assert.Equal(t, "s-1", NewFixedSessionGenerator("s-1").Generate())
	assert.Equal(t, "test-session-default", NewFixedSessionGenerator("").Generate())
}
