// Package recipe holds the merge rules of a game: commutative pair recipes,
// the derived terminal-symbol set and the triple side-table.
//
// A Catalog is validated once at construction and is immutable afterwards.
package recipe

import (
	"fmt"
	"slices"
	"strings"

	"github.com/zyedidia/generic/mapset"

	"github.com/roach88/kanjimerge/internal/ir"
)

// pairKey is an unordered material pair; a <= b.
type pairKey struct {
	a, b ir.Symbol
}

func keyOf(a, b ir.Symbol) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// Catalog indexes recipes by unordered material pair.
type Catalog struct {
	recipes   []ir.Recipe // priority desc, declaration order within a priority
	byPair    map[pairKey]ir.Recipe
	triples   map[ir.Symbol]ir.TripleRule
	terminals mapset.Set[ir.Symbol]
	materials mapset.Set[ir.Symbol]
}

// New validates and indexes the given rules.
//
// The terminal set is every recipe result that is never a material, plus
// the explicitly declared terminals. Declaring a material as terminal is an
// error.
func New(recipes []ir.Recipe, triples []ir.TripleRule, terminals []ir.Symbol) (*Catalog, error) {
	c := &Catalog{
		byPair:    make(map[pairKey]ir.Recipe, len(recipes)),
		triples:   make(map[ir.Symbol]ir.TripleRule, len(triples)),
		terminals: mapset.New[ir.Symbol](),
		materials: mapset.New[ir.Symbol](),
	}

	for i, r := range recipes {
		r.A = ir.NormalizeSymbol(r.A)
		r.B = ir.NormalizeSymbol(r.B)
		r.Result = ir.NormalizeSymbol(r.Result)
		if err := validateRecipe(i, r); err != nil {
			return nil, err
		}
		c.recipes = append(c.recipes, r)
		c.materials.Put(r.A)
		c.materials.Put(r.B)
	}

	// Highest priority first; SortStableFunc keeps declaration order for ties.
	slices.SortStableFunc(c.recipes, func(x, y ir.Recipe) int {
		return y.Priority - x.Priority
	})
	for _, r := range c.recipes {
		k := keyOf(r.A, r.B)
		if _, taken := c.byPair[k]; !taken {
			c.byPair[k] = r
		}
	}

	for _, r := range c.recipes {
		if !c.materials.Has(r.Result) {
			c.terminals.Put(r.Result)
		}
	}
	for i, s := range terminals {
		s = ir.NormalizeSymbol(s)
		field := fmt.Sprintf("terminals[%d]", i)
		if s.IsEmpty() {
			return nil, ir.NewConfigError(ir.ErrCodeInvalidTerminal, field, "terminal symbol is empty")
		}
		if c.materials.Has(s) {
			return nil, ir.NewConfigError(ir.ErrCodeInvalidTerminal, field,
				"%q is a recipe material and cannot be terminal", s)
		}
		c.terminals.Put(s)
	}

	for i, t := range triples {
		t.Symbol = ir.NormalizeSymbol(t.Symbol)
		t.Result = ir.NormalizeSymbol(t.Result)
		field := fmt.Sprintf("triples[%d]", i)
		switch {
		case t.Symbol.IsEmpty():
			return nil, ir.NewConfigError(ir.ErrCodeInvalidTriple, field, "triple symbol is empty")
		case t.Score < 0:
			return nil, ir.NewConfigError(ir.ErrCodeInvalidTriple, field, "score must not be negative, got %d", t.Score)
		}
		if _, dup := c.triples[t.Symbol]; dup {
			return nil, ir.NewConfigError(ir.ErrCodeInvalidTriple, field, "duplicate triple rule for %q", t.Symbol)
		}
		c.triples[t.Symbol] = t
	}

	return c, nil
}

func validateRecipe(i int, r ir.Recipe) error {
	field := fmt.Sprintf("recipes[%d]", i)
	switch {
	case r.A.IsEmpty() || r.B.IsEmpty():
		return ir.NewConfigError(ir.ErrCodeInvalidRecipe, field, "material symbol is empty")
	case r.Result.IsEmpty():
		return ir.NewConfigError(ir.ErrCodeInvalidRecipe, field, "result symbol is empty")
	case r.A == r.B && r.B == r.Result:
		return ir.NewConfigError(ir.ErrCodeInvalidRecipe, field, "%s+%s=%s merges a symbol into itself", r.A, r.B, r.Result)
	case r.Score < 0:
		return ir.NewConfigError(ir.ErrCodeInvalidRecipe, field, "score must not be negative, got %d", r.Score)
	}
	return nil
}

// Lookup returns the recipe for the unordered pair {a, b}. When several
// recipes share a pair, the highest priority wins, then declaration order.
func (c *Catalog) Lookup(a, b ir.Symbol) (ir.Recipe, bool) {
	if a.IsEmpty() || b.IsEmpty() {
		return ir.Recipe{}, false
	}
	r, ok := c.byPair[keyOf(a, b)]
	return r, ok
}

// IsTerminal reports whether s annihilates in same-symbol pairs.
func (c *Catalog) IsTerminal(s ir.Symbol) bool {
	return c.terminals.Has(s)
}

// IsMaterial reports whether s appears as an ingredient of any recipe.
func (c *Catalog) IsMaterial(s ir.Symbol) bool {
	return c.materials.Has(s)
}

// TripleResult returns the special product of a three-in-a-row of s.
// Symbols without one, or with a result-less rule, yield plain elimination.
func (c *Catalog) TripleResult(s ir.Symbol) (ir.Symbol, bool) {
	t, ok := c.triples[s]
	if !ok || t.Result.IsEmpty() {
		return "", false
	}
	return t.Result, true
}

// TripleRule returns the side-table entry for s, if any.
func (c *Catalog) TripleRule(s ir.Symbol) (ir.TripleRule, bool) {
	t, ok := c.triples[s]
	return t, ok
}

// Recipes returns the recipes in lookup order.
func (c *Catalog) Recipes() []ir.Recipe {
	return slices.Clone(c.recipes)
}

// Terminals returns the terminal set, sorted.
func (c *Catalog) Terminals() []ir.Symbol {
	return sortedMembers(c.terminals)
}

// Materials returns every recipe material, sorted.
func (c *Catalog) Materials() []ir.Symbol {
	return sortedMembers(c.materials)
}

// Triples returns the triple side-table ordered by symbol.
func (c *Catalog) Triples() []ir.TripleRule {
	out := make([]ir.TripleRule, 0, len(c.triples))
	for _, t := range c.triples {
		out = append(out, t)
	}
	slices.SortFunc(out, func(x, y ir.TripleRule) int {
		return strings.Compare(string(x.Symbol), string(y.Symbol))
	})
	return out
}

func sortedMembers(s mapset.Set[ir.Symbol]) []ir.Symbol {
	out := make([]ir.Symbol, 0, s.Size())
	s.Each(func(sym ir.Symbol) {
		out = append(out, sym)
	})
	slices.Sort(out)
	return out
}
