package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/kanjimerge/internal/compiler"
	"github.com/roach88/kanjimerge/internal/engine"
	"github.com/roach88/kanjimerge/internal/grid"
	"github.com/roach88/kanjimerge/internal/ir"
	"github.com/roach88/kanjimerge/internal/match"
	"github.com/roach88/kanjimerge/internal/store"
	"github.com/roach88/kanjimerge/internal/testutil"
)

// Harness is the test execution engine.
// It drives one engine through a scenario with a fixed session id and,
// when the refill stream is seeded, journals every request.
type Harness struct {
	engine  *engine.Engine
	journal *engine.Journal
	store   *store.Store
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh engine. Scripted draws make refills
// deterministic; without them the seeded stream is used and the session is
// journaled into an in-memory database and replayed afterwards.
//
// Execution flow:
// 1. Compile the game config
// 2. Build the engine (verbatim board or seeded deal)
// 3. Issue every step, checking its expect clause
// 4. Replay the journal, if any
// 5. Evaluate assertions against the trace and final board
func Run(scenario *Scenario) (*Result, error) {
	spec, err := compiler.CompileFile(scenario.ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to compile config: %w", err)
	}

	h := &Harness{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	opts := []engine.Option{
		engine.WithLogger(h.logger),
		engine.WithSessionGenerator(testutil.NewFixedSessionGenerator(scenario.Session)),
	}
	if board := scenario.BoardSymbols(); board != nil {
		opts = append(opts, engine.WithBoard(board))
	}
	if len(scenario.Draws) > 0 {
		opts = append(opts, engine.WithRand(testutil.NewScriptedRand(scenario.Draws...)))
	}
	if scenario.ManualReshuffle {
		opts = append(opts, engine.WithManualReshuffle())
	}
	if scenario.MaxCascade > 0 {
		opts = append(opts, engine.WithMaxCascade(scenario.MaxCascade))
	}

	h.engine, err = engine.New(*spec, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}

	ctx := context.Background()
	if h.engine.Replayable() {
		h.store, err = store.Open(":memory:")
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		defer h.store.Close()

		h.journal, err = engine.NewJournal(ctx, h.store, h.engine)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
	}

	result := NewResult()
	if deal := h.engine.DealReport(); deal != nil {
		result.AddRequestTrace(0, ir.RequestDeal, nil, deal, engine.ErrorCode(h.engine.DealErr()))
	}

	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	if h.journal != nil {
		replay, err := engine.Replay(ctx, h.store, h.engine.Session(), engine.WithLogger(h.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to replay session: %w", err)
		}
		for _, m := range replay.Mismatches {
			result.AddError(fmt.Sprintf("replay mismatch: %s", m))
		}
		result.Replayed = replay.OK()
	}

	if err := h.settle(result); err != nil {
		return nil, err
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

// executeSteps issues every step in order and validates expect clauses.
// Rejected requests are part of the trace; only journal failures abort.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		n := i + 1
		req, err := toRequest(step)
		if err != nil {
			return fmt.Errorf("step %d: %w", n, err)
		}

		report, reqErr := h.engine.Do(req)
		if h.journal != nil {
			if err := h.journal.Record(ctx, req, report, reqErr); err != nil {
				return fmt.Errorf("step %d: %w", n, err)
			}
		}

		code := engine.ErrorCode(reqErr)
		result.AddRequestTrace(n, req.Kind, req.Swap, report, code)
		for _, msg := range checkExpect(step.Expect, report, code) {
			result.AddError(fmt.Sprintf("step %d (%s): %s", n, req.Kind, msg))
		}

		h.logger.Info("step completed",
			"step", n,
			"request", req.Kind,
			"error", code,
		)
	}
	return nil
}

// settle records the final board and its settled and deadlock state.
func (h *Harness) settle(result *Result) error {
	result.Board = h.engine.Board()
	g, err := grid.FromRows(result.Board)
	if err != nil {
		return fmt.Errorf("final board: %w", err)
	}
	result.Settled = g.Full() && len(match.Find(g, h.engine.Catalog())) == 0
	result.Deadlocked = h.engine.IsDeadlocked()
	return nil
}

func toRequest(step Step) (engine.Request, error) {
	switch {
	case step.Swap != nil:
		mv, err := toMove(step.Swap)
		if err != nil {
			return engine.Request{}, err
		}
		return engine.SwapRequest(mv.A, mv.B), nil
	case step.Reset:
		return engine.Request{Kind: ir.RequestReset}, nil
	case step.Reshuffle:
		return engine.Request{Kind: ir.RequestReshuffle}, nil
	}
	return engine.Request{}, fmt.Errorf("step has no request")
}

// checkExpect compares one request outcome with its expect clause.
func checkExpect(exp *ExpectClause, report *ir.Report, code string) []string {
	if exp == nil {
		return nil
	}

	var errs []string
	if exp.Error != nil && *exp.Error != code {
		errs = append(errs, fmt.Sprintf("expected error %q, got %q", *exp.Error, code))
	}
	if report == nil {
		if exp.ComboDepth != nil || exp.Deadlocked != nil || exp.Score != nil || exp.Reshuffles != nil {
			errs = append(errs, fmt.Sprintf("expected a report, request was rejected with %q", code))
		}
		return errs
	}
	if exp.ComboDepth != nil && *exp.ComboDepth != report.ComboDepth {
		errs = append(errs, fmt.Sprintf("expected combo_depth %d, got %d", *exp.ComboDepth, report.ComboDepth))
	}
	if exp.Deadlocked != nil && *exp.Deadlocked != report.Deadlocked {
		errs = append(errs, fmt.Sprintf("expected deadlocked %t, got %t", *exp.Deadlocked, report.Deadlocked))
	}
	if exp.Score != nil && *exp.Score != report.Score {
		errs = append(errs, fmt.Sprintf("expected score %d, got %d", *exp.Score, report.Score))
	}
	if exp.Reshuffles != nil && *exp.Reshuffles != report.Reshuffles {
		errs = append(errs, fmt.Sprintf("expected reshuffles %d, got %d", *exp.Reshuffles, report.Reshuffles))
	}
	return errs
}
