package compiler

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/kanjimerge/internal/ir"
)

//go:embed schema.cue
var schemaCUE string

// CompileBytes compiles CUE source holding a top-level `game` struct.
// name is used in error positions.
func CompileBytes(name string, data []byte) (*ir.GameSpec, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return compileRoot(v)
}

// CompileFile reads and compiles a single game file.
func CompileFile(path string) (*ir.GameSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read game file: %w", err)
	}
	return CompileBytes(path, data)
}

// CompileDir loads every CUE file of the package in dir and compiles the
// `game` struct they declare together.
func CompileDir(dir string) (*ir.GameSpec, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &CompileError{Field: "load", Message: fmt.Sprintf("no CUE instances in %s", dir)}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}

	ctx := cuecontext.New()
	v := ctx.BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return compileRoot(v)
}

func compileRoot(root cue.Value) (*ir.GameSpec, error) {
	game := root.LookupPath(cue.ParsePath("game"))
	if !game.Exists() {
		return nil, &CompileError{
			Field:   "game",
			Message: "game is required",
			Pos:     root.Pos(),
		}
	}
	return CompileValue(game)
}

// CompileValue checks a game struct against the #Game schema and converts
// it into a GameSpec. Schema defaults are applied, so every tunable in the
// result is set.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`game: { board: {rows: 6, cols: 6}, pool: ["木", "火"] }`)
//	spec, err := CompileValue(v.LookupPath(cue.ParsePath("game")))
func CompileValue(v cue.Value) (*ir.GameSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	schema := v.Context().CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile embedded schema: %w", err)
	}
	game := schema.LookupPath(cue.ParsePath("#Game")).Unify(v)
	if err := game.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.GameSpec{}
	var err error

	if spec.Name, err = stringField(game, "name"); err != nil {
		return nil, err
	}
	if spec.Rows, err = intField(game, "board.rows"); err != nil {
		return nil, err
	}
	if spec.Cols, err = intField(game, "board.cols"); err != nil {
		return nil, err
	}
	if spec.Pool, err = symbolList(game, "pool"); err != nil {
		return nil, err
	}
	if spec.Recipes, err = parseRecipes(game); err != nil {
		return nil, err
	}
	if spec.Triples, err = parseTriples(game); err != nil {
		return nil, err
	}
	if spec.Terminals, err = symbolList(game, "terminals"); err != nil {
		return nil, err
	}
	if spec.Scores.Triple, err = intField(game, "scores.triple"); err != nil {
		return nil, err
	}
	if spec.Scores.Terminal, err = intField(game, "scores.terminal"); err != nil {
		return nil, err
	}
	if spec.Reshuffle.MaxAttempts, err = intField(game, "reshuffle.max_attempts"); err != nil {
		return nil, err
	}
	manual := game.LookupPath(cue.ParsePath("reshuffle.manual"))
	if spec.Reshuffle.Manual, err = manual.Bool(); err != nil {
		return nil, fieldError("reshuffle.manual", manual, err)
	}
	if spec.MaxCascade, err = intField(game, "max_cascade"); err != nil {
		return nil, err
	}
	seed := game.LookupPath(cue.ParsePath("seed"))
	if spec.Seed, err = seed.Uint64(); err != nil {
		return nil, fieldError("seed", seed, err)
	}

	normalized := spec.WithDefaults()
	return &normalized, nil
}

// parseRecipes parses the recipe list, keeping declaration order.
func parseRecipes(game cue.Value) ([]ir.Recipe, error) {
	iter, err := game.LookupPath(cue.ParsePath("recipes")).List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	recipes := []ir.Recipe{}
	for i := 0; iter.Next(); i++ {
		rv := iter.Value()
		field := fmt.Sprintf("recipes[%d]", i)
		var r ir.Recipe

		a, err := stringField(rv, "a")
		if err != nil {
			return nil, prefix(field, err)
		}
		if r.Name, err = optionalString(rv, "name"); err != nil {
			return nil, prefix(field, err)
		}
		b, err := stringField(rv, "b")
		if err != nil {
			return nil, prefix(field, err)
		}
		result, err := stringField(rv, "result")
		if err != nil {
			return nil, prefix(field, err)
		}
		r.A, r.B, r.Result = ir.Symbol(a), ir.Symbol(b), ir.Symbol(result)
		if r.Score, err = intField(rv, "score"); err != nil {
			return nil, prefix(field, err)
		}
		if r.Priority, err = intField(rv, "priority"); err != nil {
			return nil, prefix(field, err)
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

// parseTriples parses the triple side-table.
func parseTriples(game cue.Value) ([]ir.TripleRule, error) {
	iter, err := game.LookupPath(cue.ParsePath("triples")).List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	triples := []ir.TripleRule{}
	for i := 0; iter.Next(); i++ {
		tv := iter.Value()
		field := fmt.Sprintf("triples[%d]", i)

		symbol, err := stringField(tv, "symbol")
		if err != nil {
			return nil, prefix(field, err)
		}
		result, err := optionalString(tv, "result")
		if err != nil {
			return nil, prefix(field, err)
		}
		score, err := intField(tv, "score")
		if err != nil {
			return nil, prefix(field, err)
		}
		triples = append(triples, ir.TripleRule{
			Symbol: ir.Symbol(symbol),
			Result: ir.Symbol(result),
			Score:  score,
		})
	}
	return triples, nil
}

func symbolList(v cue.Value, field string) ([]ir.Symbol, error) {
	lv := v.LookupPath(cue.ParsePath(field))
	iter, err := lv.List()
	if err != nil {
		return nil, fieldError(field, lv, err)
	}
	out := []ir.Symbol{}
	for i := 0; iter.Next(); i++ {
		s, err := iter.Value().String()
		if err != nil {
			return nil, fieldError(fmt.Sprintf("%s[%d]", field, i), iter.Value(), err)
		}
		out = append(out, ir.Symbol(s))
	}
	return out, nil
}

func stringField(v cue.Value, field string) (string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	s, err := f.String()
	if err != nil {
		return "", fieldError(field, f, err)
	}
	return s, nil
}

// optionalString returns "" for an absent optional field.
func optionalString(v cue.Value, field string) (string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() || !f.IsConcrete() {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", fieldError(field, f, err)
	}
	return s, nil
}

func intField(v cue.Value, field string) (int, error) {
	f := v.LookupPath(cue.ParsePath(field))
	n, err := f.Int64()
	if err != nil {
		return 0, fieldError(field, f, err)
	}
	return int(n), nil
}

func fieldError(field string, v cue.Value, err error) error {
	if ce, ok := formatCUEError(err).(*CompileError); ok && ce.Pos.IsValid() {
		ce.Field = field
		return ce
	}
	return &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
}

func prefix(field string, err error) error {
	if ce, ok := err.(*CompileError); ok {
		ce.Field = field + "." + ce.Field
	}
	return err
}
