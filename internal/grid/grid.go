// Package grid owns the board cell array and its raw mutation primitives.
//
// Grid performs no rule evaluation. Callers enforce legality (adjacency,
// phase discipline); Grid only enforces bounds and returns IndexError
// instead of panicking on out-of-range access.
package grid

import (
	"fmt"
	"strings"

	"github.com/roach88/kanjimerge/internal/ir"
)

// IntNSource supplies uniform draws in [0, n). *rand.Rand satisfies it.
type IntNSource interface {
	IntN(n int) int
}

// Grid is a rows × cols board stored row-major, row 0 at the bottom.
type Grid struct {
	rows  int
	cols  int
	cells []ir.Symbol
}

// New creates an empty grid. Both dimensions must be at least 1.
func New(rows, cols int) (*Grid, error) {
	if rows < 1 || cols < 1 {
		return nil, ir.NewConfigError(ir.ErrCodeInvalidBoard, "board",
			"dimensions must be positive, got %dx%d", rows, cols)
	}
	return &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]ir.Symbol, rows*cols),
	}, nil
}

// FromRows builds a grid from rows listed bottom row first.
func FromRows(rows [][]ir.Symbol) (*Grid, error) {
	if len(rows) == 0 {
		return nil, ir.NewConfigError(ir.ErrCodeInvalidBoard, "board", "board has no rows")
	}
	g, err := New(len(rows), len(rows[0]))
	if err != nil {
		return nil, err
	}
	if err := g.Load(rows); err != nil {
		return nil, err
	}
	return g, nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// InBounds reports whether p addresses a cell of the grid.
func (g *Grid) InBounds(p ir.Pos) bool {
	return p.Row >= 0 && p.Row < g.rows && p.Col >= 0 && p.Col < g.cols
}

func (g *Grid) index(p ir.Pos) (int, error) {
	if !g.InBounds(p) {
		return 0, &IndexError{Pos: p, Rows: g.rows, Cols: g.cols}
	}
	return p.Row*g.cols + p.Col, nil
}

// Get returns the symbol at p. The empty symbol denotes an empty cell.
func (g *Grid) Get(p ir.Pos) (ir.Symbol, error) {
	i, err := g.index(p)
	if err != nil {
		return "", err
	}
	return g.cells[i], nil
}

// At returns the symbol at p, or the empty symbol when p is out of range.
// Scanners use it to probe neighbours without error plumbing.
func (g *Grid) At(p ir.Pos) ir.Symbol {
	if !g.InBounds(p) {
		return ""
	}
	return g.cells[p.Row*g.cols+p.Col]
}

// Set stores s at p.
func (g *Grid) Set(p ir.Pos, s ir.Symbol) error {
	i, err := g.index(p)
	if err != nil {
		return err
	}
	g.cells[i] = s
	return nil
}

// Clear empties the cell at p.
func (g *Grid) Clear(p ir.Pos) error {
	return g.Set(p, "")
}

// ClearAll empties every cell.
func (g *Grid) ClearAll() {
	clear(g.cells)
}

// Swap exchanges the contents of two cells unconditionally.
func (g *Grid) Swap(a, b ir.Pos) error {
	i, err := g.index(a)
	if err != nil {
		return err
	}
	j, err := g.index(b)
	if err != nil {
		return err
	}
	g.cells[i], g.cells[j] = g.cells[j], g.cells[i]
	return nil
}

// IsAdjacent reports whether a and b are orthogonal neighbours
// (Manhattan distance exactly 1).
func IsAdjacent(a, b ir.Pos) bool {
	return abs(a.Row-b.Row)+abs(a.Col-b.Col) == 1
}

// IsAdjacent reports whether a and b are orthogonal neighbours.
func (g *Grid) IsAdjacent(a, b ir.Pos) bool {
	return IsAdjacent(a, b)
}

// Collapse compacts every column toward row 0, preserving the relative
// order of non-empty cells and leaving empties at the top. It returns the
// number of cells that moved.
func (g *Grid) Collapse() int {
	moved := 0
	for c := 0; c < g.cols; c++ {
		write := 0
		for r := 0; r < g.rows; r++ {
			s := g.cells[r*g.cols+c]
			if s.IsEmpty() {
				continue
			}
			if r != write {
				g.cells[write*g.cols+c] = s
				g.cells[r*g.cols+c] = ""
				moved++
			}
			write++
		}
	}
	return moved
}

// Refill fills every empty cell with a symbol drawn uniformly from pool,
// column by column, bottom to top. It returns the number of cells filled.
// An empty pool is a configuration error and leaves the grid untouched.
func (g *Grid) Refill(rng IntNSource, pool []ir.Symbol) (int, error) {
	if len(pool) == 0 {
		return 0, ir.NewConfigError(ir.ErrCodeEmptyPool, "pool", "cannot refill from an empty symbol pool")
	}
	filled := 0
	for c := 0; c < g.cols; c++ {
		for r := 0; r < g.rows; r++ {
			i := r*g.cols + c
			if !g.cells[i].IsEmpty() {
				continue
			}
			g.cells[i] = pool[rng.IntN(len(pool))]
			filled++
		}
	}
	return filled, nil
}

// Full reports whether no cell is empty.
func (g *Grid) Full() bool {
	for _, s := range g.cells {
		if s.IsEmpty() {
			return false
		}
	}
	return true
}

// Load installs a board verbatim. rows must match the grid dimensions and
// are listed bottom row first.
func (g *Grid) Load(rows [][]ir.Symbol) error {
	if len(rows) != g.rows {
		return ir.NewConfigError(ir.ErrCodeInvalidBoard, "board",
			"expected %d rows, got %d", g.rows, len(rows))
	}
	for r, row := range rows {
		if len(row) != g.cols {
			return ir.NewConfigError(ir.ErrCodeInvalidBoard, fmt.Sprintf("board[%d]", r),
				"expected %d cells, got %d", g.cols, len(row))
		}
	}
	for r, row := range rows {
		for c, s := range row {
			g.cells[r*g.cols+c] = ir.NormalizeSymbol(s)
		}
	}
	return nil
}

// Snapshot returns a copy of the board, bottom row first.
func (g *Grid) Snapshot() [][]ir.Symbol {
	out := make([][]ir.Symbol, g.rows)
	for r := range out {
		out[r] = make([]ir.Symbol, g.cols)
		copy(out[r], g.cells[r*g.cols:(r+1)*g.cols])
	}
	return out
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	cells := make([]ir.Symbol, len(g.cells))
	copy(cells, g.cells)
	return &Grid{rows: g.rows, cols: g.cols, cells: cells}
}

// Equal reports whether both grids have the same shape and contents.
func (g *Grid) Equal(other *Grid) bool {
	if g.rows != other.rows || g.cols != other.cols {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// String renders the board top row first, the way it is seen on screen.
func (g *Grid) String() string {
	var sb strings.Builder
	for r := g.rows - 1; r >= 0; r-- {
		sb.WriteString(ir.FormatRow(g.cells[r*g.cols : (r+1)*g.cols]))
		if r > 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
