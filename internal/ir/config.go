package ir

// Defaults applied when a GameSpec leaves a field at its zero value.
const (
	DefaultRecipeScore       = 100
	DefaultTripleScore       = 30
	DefaultTerminalScore     = 50
	DefaultReshuffleAttempts = 10
	DefaultMaxCascade        = 1000
)

// GameSpec is a compiled game definition. It is immutable once an engine
// has been built from it.
type GameSpec struct {
	Name      string          `json:"name"`
	Rows      int             `json:"rows"`
	Cols      int             `json:"cols"`
	Pool      []Symbol        `json:"pool"`
	Recipes   []Recipe        `json:"recipes"`
	Triples   []TripleRule    `json:"triples,omitempty"`
	Terminals []Symbol        `json:"terminals,omitempty"`
	Scores    ScoreTable      `json:"scores"`
	Reshuffle ReshufflePolicy `json:"reshuffle"`
	// MaxCascade bounds the cascade iterations of a single settle loop.
	MaxCascade int    `json:"max_cascade"`
	Seed       uint64 `json:"seed"`
}

// ScoreTable holds base scores for matches that have no recipe.
type ScoreTable struct {
	Triple   int `json:"triple"`
	Terminal int `json:"terminal"`
}

// ReshufflePolicy controls deadlock recovery.
type ReshufflePolicy struct {
	MaxAttempts int `json:"max_attempts"`
	// Manual disables automatic recovery; the caller reshuffles explicitly.
	Manual bool `json:"manual"`
}

// WithDefaults returns a copy of the game spec with zero-valued tunables replaced
// by their defaults. Symbols are NFC-normalized.
func (s GameSpec) WithDefaults() GameSpec {
	out := s
	out.Pool = NormalizeSymbols(s.Pool)
	out.Terminals = NormalizeSymbols(s.Terminals)

	out.Recipes = make([]Recipe, len(s.Recipes))
	for i, r := range s.Recipes {
		r.A = NormalizeSymbol(r.A)
		r.B = NormalizeSymbol(r.B)
		r.Result = NormalizeSymbol(r.Result)
		out.Recipes[i] = r
	}

	out.Triples = make([]TripleRule, len(s.Triples))
	for i, t := range s.Triples {
		t.Symbol = NormalizeSymbol(t.Symbol)
		t.Result = NormalizeSymbol(t.Result)
		out.Triples[i] = t
	}

	if out.Scores.Triple == 0 {
		out.Scores.Triple = DefaultTripleScore
	}
	if out.Scores.Terminal == 0 {
		out.Scores.Terminal = DefaultTerminalScore
	}
	if out.Reshuffle.MaxAttempts == 0 {
		out.Reshuffle.MaxAttempts = DefaultReshuffleAttempts
	}
	if out.MaxCascade == 0 {
		out.MaxCascade = DefaultMaxCascade
	}
	return out
}
