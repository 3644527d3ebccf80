package grid

import "github.com/roach88/kanjimerge/internal/ir"

// Patch records the prior contents of a few cells so they can be restored
// exactly. It is cheaper than cloning the board when only two cells change.
type Patch struct {
	cells []savedCell
}

type savedCell struct {
	pos ir.Pos
	sym ir.Symbol
}

// Save records the current contents of the given cells.
// Out-of-range positions are ignored.
func (g *Grid) Save(ps ...ir.Pos) Patch {
	p := Patch{cells: make([]savedCell, 0, len(ps))}
	for _, pos := range ps {
		if !g.InBounds(pos) {
			continue
		}
		p.cells = append(p.cells, savedCell{pos: pos, sym: g.cells[pos.Row*g.cols+pos.Col]})
	}
	return p
}

// Restore writes back the contents recorded by Save, in reverse order so
// that a position saved twice ends with its earliest value.
func (g *Grid) Restore(p Patch) {
	for i := len(p.cells) - 1; i >= 0; i-- {
		c := p.cells[i]
		g.cells[c.pos.Row*g.cols+c.pos.Col] = c.sym
	}
}
