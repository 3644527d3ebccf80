package compiler

import (
	"fmt"

	"github.com/roach88/kanjimerge/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrBoardSize         = "E201" // rows and cols must be positive
	ErrPoolEmpty         = "E202" // symbol pool is empty or has a blank symbol
	ErrPoolDuplicate     = "E203" // symbol listed twice in the pool
	ErrRecipeInvalid     = "E204" // blank symbol, negative score or a->a=a
	ErrTripleInvalid     = "E205" // blank or duplicate triple symbol
	ErrTerminalInvalid   = "E206" // blank terminal, or terminal used as a material
	ErrTunableInvalid    = "E207" // negative score table entry, non-positive limit
	ErrRecipeUnreachable = "E208" // recipe material neither in the pool nor produced
)

// ValidationError represents a game definition problem.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a game definition and returns every problem found (does
// not fail-fast). E208 is advisory: such a recipe can never fire, but the
// engine accepts it.
func Validate(spec ir.GameSpec) []ValidationError {
	spec = spec.WithDefaults()
	var errs []ValidationError
	add := func(code, field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Code: code})
	}

	if spec.Rows < 1 || spec.Cols < 1 {
		add(ErrBoardSize, "board", "board must be at least 1x1, got %dx%d", spec.Rows, spec.Cols)
	}

	if len(spec.Pool) == 0 {
		add(ErrPoolEmpty, "pool", "symbol pool is empty")
	}
	available := make(map[ir.Symbol]bool)
	for i, s := range spec.Pool {
		field := fmt.Sprintf("pool[%d]", i)
		switch {
		case s.IsEmpty():
			add(ErrPoolEmpty, field, "pool symbol is blank")
		case available[s]:
			add(ErrPoolDuplicate, field, "symbol %s listed twice", s)
		}
		available[s] = true
	}

	materials := make(map[ir.Symbol]bool)
	for i, r := range spec.Recipes {
		field := fmt.Sprintf("recipes[%d]", i)
		switch {
		case r.A.IsEmpty() || r.B.IsEmpty() || r.Result.IsEmpty():
			add(ErrRecipeInvalid, field, "recipe symbols must not be blank")
		case r.A == r.B && r.B == r.Result:
			add(ErrRecipeInvalid, field, "%s+%s=%s produces its own material", r.A, r.B, r.Result)
		case r.Score < 0:
			add(ErrRecipeInvalid, field, "score must not be negative")
		}
		materials[r.A] = true
		materials[r.B] = true
		available[r.Result] = true
	}

	seenTriple := make(map[ir.Symbol]bool)
	for i, t := range spec.Triples {
		field := fmt.Sprintf("triples[%d]", i)
		switch {
		case t.Symbol.IsEmpty():
			add(ErrTripleInvalid, field, "triple symbol is blank")
		case seenTriple[t.Symbol]:
			add(ErrTripleInvalid, field, "duplicate triple rule for %s", t.Symbol)
		case t.Score < 0:
			add(ErrTripleInvalid, field, "score must not be negative")
		}
		seenTriple[t.Symbol] = true
		if !t.Result.IsEmpty() {
			available[t.Result] = true
		}
	}

	for i, s := range spec.Terminals {
		field := fmt.Sprintf("terminals[%d]", i)
		switch {
		case s.IsEmpty():
			add(ErrTerminalInvalid, field, "terminal symbol is blank")
		case materials[s]:
			add(ErrTerminalInvalid, field, "%s is a recipe material and cannot be terminal", s)
		}
	}

	if spec.Scores.Triple < 0 || spec.Scores.Terminal < 0 {
		add(ErrTunableInvalid, "scores", "scores must not be negative")
	}
	if spec.Reshuffle.MaxAttempts < 1 {
		add(ErrTunableInvalid, "reshuffle.max_attempts", "must be at least 1")
	}
	if spec.MaxCascade < 1 {
		add(ErrTunableInvalid, "max_cascade", "must be at least 1")
	}

	for i, r := range spec.Recipes {
		for _, m := range []ir.Symbol{r.A, r.B} {
			if !m.IsEmpty() && !available[m] {
				add(ErrRecipeUnreachable, fmt.Sprintf("recipes[%d]", i),
					"material %s is neither in the pool nor produced by any rule", m)
			}
		}
	}

	return errs
}

// IsAdvisory reports whether a validation code flags a definition the
// engine still accepts.
func IsAdvisory(code string) bool {
	return code == ErrRecipeUnreachable
}
