package ir

import "fmt"

// Symbol is an opaque board token. The zero value marks an empty cell.
type Symbol string

// IsEmpty reports whether the symbol marks an empty cell.
func (s Symbol) IsEmpty() bool {
	return s == ""
}

// Pos addresses a board cell. Row 0 is the bottom row.
type Pos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// P is a shorthand constructor for Pos.
func P(row, col int) Pos {
	return Pos{Row: row, Col: col}
}

// Right returns the neighbour in the next column.
func (p Pos) Right() Pos {
	return Pos{Row: p.Row, Col: p.Col + 1}
}

// Up returns the neighbour in the next row.
func (p Pos) Up() Pos {
	return Pos{Row: p.Row + 1, Col: p.Col}
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Recipe is a commutative pair-merge rule: {A, B} -> Result.
type Recipe struct {
	Name     string `json:"name,omitempty"`
	A        Symbol `json:"a"`
	B        Symbol `json:"b"`
	Result   Symbol `json:"result"`
	Score    int    `json:"score"`
	Priority int    `json:"priority,omitempty"`
}

// Matches reports whether the unordered pair {a, b} equals {A, B}.
func (r Recipe) Matches(a, b Symbol) bool {
	return (r.A == a && r.B == b) || (r.A == b && r.B == a)
}

// TripleRule is an entry of the triple side-table. An empty Result means
// plain elimination scored with Score.
type TripleRule struct {
	Symbol Symbol `json:"symbol"`
	Result Symbol `json:"result,omitempty"`
	Score  int    `json:"score"`
}

// MatchKind tags the variant of a Match.
type MatchKind string

const (
	MatchRecipeMerge  MatchKind = "recipe_merge"
	MatchTripleRun    MatchKind = "triple_run"
	MatchTerminalPair MatchKind = "terminal_pair"
)

// ValidMatchKinds defines the allowed match kinds.
var ValidMatchKinds = map[MatchKind]bool{
	MatchRecipeMerge:  true,
	MatchTripleRun:    true,
	MatchTerminalPair: true,
}

// Match is one resolvable unit found by a board scan.
//
// Positions holds two cells for recipe merges and terminal pairs (posA then
// posB) and three cells for triple runs, in scan order.
type Match struct {
	Kind      MatchKind `json:"kind"`
	Positions []Pos     `json:"positions"`
	Symbol    Symbol    `json:"symbol,omitempty"` // triple and terminal pair symbol
	Recipe    *Recipe   `json:"recipe,omitempty"` // recipe merges only
	Result    Symbol    `json:"result,omitempty"` // produced symbol, if any
}

// Move is an adjacent swap that would produce at least one match.
type Move struct {
	A Pos `json:"a"`
	B Pos `json:"b"`
}

func (m Move) String() string {
	return fmt.Sprintf("%s<->%s", m.A, m.B)
}
