package engine

import (
	"github.com/roach88/kanjimerge/internal/grid"
	"github.com/roach88/kanjimerge/internal/ir"
	"github.com/roach88/kanjimerge/internal/match"
)

// CandidateSwaps lists every adjacent swap on a rows x cols board, row-major,
// right neighbour before up neighbour. There are rows*(cols-1) + cols*(rows-1)
// of them.
func CandidateSwaps(rows, cols int) []ir.Move {
	out := make([]ir.Move, 0, rows*(cols-1)+cols*(rows-1))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			p := ir.P(r, c)
			if c+1 < cols {
				out = append(out, ir.Move{A: p, B: p.Right()})
			}
			if r+1 < rows {
				out = append(out, ir.Move{A: p, B: p.Up()})
			}
		}
	}
	return out
}

// Deadlocked reports whether g has no match and no single adjacent swap
// would create one. Each swap is simulated in place and undone by restoring
// the two touched cells, so g is unchanged on return.
func Deadlocked(g *grid.Grid, c match.Catalog) bool {
	if match.Any(g, c) {
		return false
	}
	for _, m := range CandidateSwaps(g.Rows(), g.Cols()) {
		if simulate(g, c, m) {
			return false
		}
	}
	return true
}

// Moves returns every adjacent swap that would produce at least one match.
func Moves(g *grid.Grid, c match.Catalog) []ir.Move {
	out := []ir.Move{}
	for _, m := range CandidateSwaps(g.Rows(), g.Cols()) {
		if simulate(g, c, m) {
			out = append(out, m)
		}
	}
	return out
}

func simulate(g *grid.Grid, c match.Catalog, m ir.Move) bool {
	if g.At(m.A) == g.At(m.B) {
		return match.Any(g, c)
	}
	patch := g.Save(m.A, m.B)
	defer g.Restore(patch)
	if err := g.Swap(m.A, m.B); err != nil {
		return false
	}
	return match.Any(g, c)
}

// IsDeadlocked reports whether the current board is deadlocked.
func (e *Engine) IsDeadlocked() bool {
	return Deadlocked(e.board, e.catalog)
}

// Moves returns the swaps that would currently produce a match, in scan
// order. Empty on a deadlocked board.
func (e *Engine) Moves() []ir.Move {
	return Moves(e.board, e.catalog)
}
