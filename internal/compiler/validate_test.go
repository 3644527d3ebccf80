package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kanjimerge/internal/ir"
)

func validSpec() ir.GameSpec {
	return ir.GameSpec{
		Rows: 3,
		Cols: 3,
		Pool: []ir.Symbol{"木", "火", "日", "月"},
		Recipes: []ir.Recipe{
			{A: "木", B: "木", Result: "林", Score: 100},
			{A: "林", B: "木", Result: "森", Score: 200},
		},
		Terminals: []ir.Symbol{"火"},
	}
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate_Valid(t *testing.T) {
	assert.Empty(t, Validate(validSpec()))
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	spec := validSpec()
	spec.Rows = 0
	spec.Pool = append(spec.Pool, "火")
	spec.Recipes = append(spec.Recipes, ir.Recipe{A: "日", B: "日", Result: "日"})
	spec.Terminals = []ir.Symbol{"木"}
	spec.Triples = []ir.TripleRule{{Symbol: "日"}, {Symbol: "日"}}

	errs := Validate(spec)
	assert.Equal(t, []string{ErrBoardSize, ErrPoolDuplicate, ErrRecipeInvalid, ErrTripleInvalid, ErrTerminalInvalid}, codes(errs))
	assert.Equal(t, "recipes[2]", errs[2].Field)
}

func TestValidate_EmptyPool(t *testing.T) {
	spec := validSpec()
	spec.Pool = nil

	errs := Validate(spec)
	require.NotEmpty(t, errs)
	assert.Equal(t, ErrPoolEmpty, errs[0].Code)
}

func TestValidate_UnreachableMaterialIsAdvisory(t *testing.T) {
	spec := validSpec()
	spec.Recipes = append(spec.Recipes, ir.Recipe{A: "水", B: "火", Result: "湯"})

	errs := Validate(spec)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrRecipeUnreachable, errs[0].Code)
	assert.True(t, IsAdvisory(errs[0].Code))
	assert.False(t, IsAdvisory(ErrPoolEmpty))
}

func TestValidationError_Format(t *testing.T) {
	e := ValidationError{Field: "pool", Message: "symbol pool is empty", Code: ErrPoolEmpty}
	assert.Equal(t, "[E202] pool: symbol pool is empty", e.Error())
}
