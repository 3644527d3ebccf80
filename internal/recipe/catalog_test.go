package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kanjimerge/internal/ir"
)

func kanjiRecipes() []ir.Recipe {
	return []ir.Recipe{
		{A: "木", B: "木", Result: "林", Score: 100},
		{A: "日", B: "月", Result: "明", Score: 150},
		{A: "林", B: "木", Result: "森", Score: 200},
		{A: "人", B: "木", Result: "休", Score: 120},
	}
}

func TestLookup_Commutative(t *testing.T) {
	c, err := New(kanjiRecipes(), nil, nil)
	require.NoError(t, err)

	symbols := []ir.Symbol{"木", "火", "日", "月", "人", "林", "明", "森", "休", ""}
	for _, a := range symbols {
		for _, b := range symbols {
			ab, okAB := c.Lookup(a, b)
			ba, okBA := c.Lookup(b, a)
			assert.Equal(t, okAB, okBA, "lookup(%s,%s) presence", a, b)
			assert.Equal(t, ab, ba, "lookup(%s,%s)", a, b)
		}
	}

	r, ok := c.Lookup("月", "日")
	require.True(t, ok)
	assert.Equal(t, ir.Symbol("明"), r.Result)
	assert.Equal(t, 150, r.Score)
}

func TestLookup_Miss(t *testing.T) {
	c, err := New(kanjiRecipes(), nil, nil)
	require.NoError(t, err)

	_, ok := c.Lookup("火", "火")
	assert.False(t, ok)
	_, ok = c.Lookup("木", "")
	assert.False(t, ok)
}

func TestLookup_PriorityThenDeclarationOrder(t *testing.T) {
	recipes := []ir.Recipe{
		{Name: "first", A: "木", B: "日", Result: "杲", Score: 10},
		{Name: "second", A: "日", B: "木", Result: "東", Score: 20},
		{Name: "urgent", A: "木", B: "日", Result: "本", Score: 30, Priority: 5},
		{Name: "other", A: "火", B: "火", Result: "炎", Score: 40},
	}
	c, err := New(recipes, nil, nil)
	require.NoError(t, err)

	r, ok := c.Lookup("日", "木")
	require.True(t, ok)
	assert.Equal(t, "urgent", r.Name)

	c, err = New(recipes[:2], nil, nil)
	require.NoError(t, err)
	r, ok = c.Lookup("日", "木")
	require.True(t, ok)
	assert.Equal(t, "first", r.Name, "equal priority keeps declaration order")

	ordered := make([]string, 0)
	c, err = New(recipes, nil, nil)
	require.NoError(t, err)
	for _, r := range c.Recipes() {
		ordered = append(ordered, r.Name)
	}
	assert.Equal(t, []string{"urgent", "first", "second", "other"}, ordered)
}

func TestTerminals_DerivedAndDeclared(t *testing.T) {
	c, err := New(kanjiRecipes(), nil, []ir.Symbol{"火"})
	require.NoError(t, err)

	// 林 is a result and a material; 明, 森, 休 are results only.
	assert.Equal(t, []ir.Symbol{"休", "明", "森", "火"}, c.Terminals())
	assert.True(t, c.IsTerminal("火"))
	assert.True(t, c.IsTerminal("明"))
	assert.False(t, c.IsTerminal("林"))
	assert.False(t, c.IsTerminal("木"))
	assert.True(t, c.IsMaterial("林"))
}

func TestTripleResult(t *testing.T) {
	triples := []ir.TripleRule{
		{Symbol: "木", Result: "森", Score: 300},
		{Symbol: "火", Score: 80},
	}
	c, err := New(kanjiRecipes(), triples, nil)
	require.NoError(t, err)

	res, ok := c.TripleResult("木")
	require.True(t, ok)
	assert.Equal(t, ir.Symbol("森"), res)

	_, ok = c.TripleResult("火")
	assert.False(t, ok, "result-less rule is plain elimination")
	rule, ok := c.TripleRule("火")
	require.True(t, ok)
	assert.Equal(t, 80, rule.Score)

	_, ok = c.TripleResult("日")
	assert.False(t, ok)
	assert.Len(t, c.Triples(), 2)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name      string
		recipes   []ir.Recipe
		triples   []ir.TripleRule
		terminals []ir.Symbol
		code      ir.ConfigErrorCode
	}{
		{"empty material", []ir.Recipe{{A: "", B: "木", Result: "林"}}, nil, nil, ir.ErrCodeInvalidRecipe},
		{"empty result", []ir.Recipe{{A: "木", B: "木", Result: " "}}, nil, nil, ir.ErrCodeInvalidRecipe},
		{"degenerate cycle", []ir.Recipe{{A: "木", B: "木", Result: "木"}}, nil, nil, ir.ErrCodeInvalidRecipe},
		{"negative score", []ir.Recipe{{A: "木", B: "木", Result: "林", Score: -1}}, nil, nil, ir.ErrCodeInvalidRecipe},
		{"material declared terminal", kanjiRecipes(), nil, []ir.Symbol{"木"}, ir.ErrCodeInvalidTerminal},
		{"empty terminal", kanjiRecipes(), nil, []ir.Symbol{""}, ir.ErrCodeInvalidTerminal},
		{"empty triple", nil, []ir.TripleRule{{Symbol: ""}}, nil, ir.ErrCodeInvalidTriple},
		{"duplicate triple", nil, []ir.TripleRule{{Symbol: "木"}, {Symbol: "木"}}, nil, ir.ErrCodeInvalidTriple},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.recipes, tt.triples, tt.terminals)
			require.Error(t, err)
			assert.True(t, ir.IsConfigError(err, tt.code), "got %v", err)
		})
	}
}

func TestNew_AllowsSelfPairWithDifferentResult(t *testing.T) {
	_, err := New([]ir.Recipe{{A: "木", B: "木", Result: "林"}}, nil, nil)
	assert.NoError(t, err)
}

func TestNew_NormalizesSymbols(t *testing.T) {
	c, err := New([]ir.Recipe{{A: " 日", B: "月 ", Result: "明"}}, nil, nil)
	require.NoError(t, err)

	_, ok := c.Lookup("日", "月")
	assert.True(t, ok)
}
