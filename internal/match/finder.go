// Package match performs the static full-board scan that produces the set
// of resolvable matches for one cascade iteration.
//
// A scan never mutates the board. Every cell takes part in at most one
// returned match; a claimed-cell set enforces this across the three phases:
//
//  1. triple runs (rows bottom to top, then columns left to right)
//  2. recipe pairs (row-major, right neighbour before up neighbour)
//  3. terminal pairs (row-major, right neighbour before up neighbour)
//
// Identical boards and catalogs always produce identical match lists.
package match

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/roach88/kanjimerge/internal/ir"
)

// Board is the read-only view a scan needs. *grid.Grid satisfies it.
type Board interface {
	Rows() int
	Cols() int
	At(p ir.Pos) ir.Symbol
}

// Catalog is the rule view a scan needs. *recipe.Catalog satisfies it.
type Catalog interface {
	Lookup(a, b ir.Symbol) (ir.Recipe, bool)
	IsTerminal(s ir.Symbol) bool
	TripleResult(s ir.Symbol) (ir.Symbol, bool)
}

// Find returns every match on the board in scan order.
func Find(b Board, c Catalog) []ir.Match {
	s := newScan(b, c, false)
	s.run()
	return s.matches
}

// Any reports whether the board holds at least one match. It stops at the
// first hit.
func Any(b Board, c Catalog) bool {
	s := newScan(b, c, true)
	s.run()
	return len(s.matches) > 0
}

type scan struct {
	board     Board
	catalog   Catalog
	claimed   mapset.Set[ir.Pos]
	matches   []ir.Match
	firstOnly bool
}

func newScan(b Board, c Catalog, firstOnly bool) *scan {
	return &scan{
		board:     b,
		catalog:   c,
		claimed:   mapset.New[ir.Pos](),
		firstOnly: firstOnly,
	}
}

func (s *scan) done() bool {
	return s.firstOnly && len(s.matches) > 0
}

func (s *scan) run() {
	s.triples()
	if s.done() {
		return
	}
	s.recipePairs()
	if s.done() {
		return
	}
	s.terminalPairs()
}

func (s *scan) free(p ir.Pos) bool {
	return !s.board.At(p).IsEmpty() && !s.claimed.Has(p)
}

func (s *scan) claim(m ir.Match) {
	for _, p := range m.Positions {
		s.claimed.Put(p)
	}
	s.matches = append(s.matches, m)
}

func (s *scan) triples() {
	rows, cols := s.board.Rows(), s.board.Cols()
	for r := 0; r < rows; r++ {
		for c := 0; c+2 < cols; c++ {
			s.tryTriple(ir.P(r, c), ir.P(r, c+1), ir.P(r, c+2))
			if s.done() {
				return
			}
		}
	}
	for c := 0; c < cols; c++ {
		for r := 0; r+2 < rows; r++ {
			s.tryTriple(ir.P(r, c), ir.P(r+1, c), ir.P(r+2, c))
			if s.done() {
				return
			}
		}
	}
}

func (s *scan) tryTriple(a, b, c ir.Pos) {
	if !s.free(a) || !s.free(b) || !s.free(c) {
		return
	}
	sym := s.board.At(a)
	if s.board.At(b) != sym || s.board.At(c) != sym {
		return
	}
	m := ir.Match{
		Kind:      ir.MatchTripleRun,
		Positions: []ir.Pos{a, b, c},
		Symbol:    sym,
	}
	if res, ok := s.catalog.TripleResult(sym); ok {
		m.Result = res
	}
	s.claim(m)
}

func (s *scan) recipePairs() {
	s.eachPair(func(a, b ir.Pos) bool {
		r, ok := s.catalog.Lookup(s.board.At(a), s.board.At(b))
		if !ok {
			return false
		}
		s.claim(ir.Match{
			Kind:      ir.MatchRecipeMerge,
			Positions: []ir.Pos{a, b},
			Recipe:    &r,
			Result:    r.Result,
		})
		return true
	})
}

func (s *scan) terminalPairs() {
	s.eachPair(func(a, b ir.Pos) bool {
		sym := s.board.At(a)
		if !s.catalog.IsTerminal(sym) || s.board.At(b) != sym {
			return false
		}
		s.claim(ir.Match{
			Kind:      ir.MatchTerminalPair,
			Positions: []ir.Pos{a, b},
			Symbol:    sym,
		})
		return true
	})
}

// eachPair visits unclaimed (cell, neighbour) pairs row-major, right
// neighbour first. Once try claims a cell, its up neighbour is not offered.
func (s *scan) eachPair(try func(a, b ir.Pos) bool) {
	rows, cols := s.board.Rows(), s.board.Cols()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			a := ir.P(r, c)
			for _, b := range []ir.Pos{a.Right(), a.Up()} {
				if b.Row >= rows || b.Col >= cols {
					continue
				}
				if !s.free(a) || !s.free(b) {
					continue
				}
				if try(a, b) {
					break
				}
			}
			if s.done() {
				return
			}
		}
	}
}

// Disjoint reports whether no position appears in more than one match.
func Disjoint(ms []ir.Match) bool {
	seen := mapset.New[ir.Pos]()
	for _, m := range ms {
		for _, p := range m.Positions {
			if seen.Has(p) {
				return false
			}
			seen.Put(p)
		}
	}
	return true
}
