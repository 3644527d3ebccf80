package engine

import (
	"fmt"

	"github.com/roach88/kanjimerge/internal/grid"
	"github.com/roach88/kanjimerge/internal/ir"
)

// Request is a caller intent in journal form.
type Request struct {
	Kind ir.RequestKind
	Swap *ir.Move // swap requests only
}

// SwapRequest builds a swap Request.
func SwapRequest(a, b ir.Pos) Request {
	return Request{Kind: ir.RequestSwap, Swap: &ir.Move{A: a, B: b}}
}

// Do dispatches a Request to RequestSwap, RequestReset or Reshuffle.
func (e *Engine) Do(req Request) (*ir.Report, error) {
	switch req.Kind {
	case ir.RequestSwap:
		if req.Swap == nil {
			return nil, newIllegal(req.Kind, nil, "swap request without positions")
		}
		return e.RequestSwap(req.Swap.A, req.Swap.B)
	case ir.RequestReset:
		return e.RequestReset()
	case ir.RequestReshuffle:
		return e.Reshuffle()
	}
	return nil, newIllegal(req.Kind, nil, "unknown request kind %q", req.Kind)
}

// RequestSwap swaps two adjacent cells and resolves the cascade to Idle.
//
// The swap is kept even when it produces no match. The returned report
// lists every event in order. A *ReshuffleExhaustedError comes with the
// complete report and a CASCADE_LIMIT error with the partial one. A
// *RequestError comes with a nil report and an unchanged board.
func (e *Engine) RequestSwap(a, b ir.Pos) (*ir.Report, error) {
	if err := e.BeginSwap(a, b); err != nil {
		return nil, err
	}
	return e.run()
}

// RequestReset clears the board, deals a fresh one and resolves it.
func (e *Engine) RequestReset() (*ir.Report, error) {
	if err := e.BeginReset(); err != nil {
		return nil, err
	}
	return e.run()
}

// Reshuffle is the explicit deadlock recovery: clear, refill and cascade,
// retried up to the configured attempt cap while the board stays
// deadlocked. It is valid on any idle board.
func (e *Engine) Reshuffle() (*ir.Report, error) {
	if err := e.BeginReshuffle(); err != nil {
		return nil, err
	}
	return e.run()
}

// BeginSwap validates and performs a swap, leaving the engine in
// PhaseScanning. Drive it with Step until Phase returns PhaseIdle.
func (e *Engine) BeginSwap(a, b ir.Pos) error {
	if e.phase != PhaseIdle {
		return newBusy(ir.RequestSwap, e.phase)
	}
	for _, p := range []ir.Pos{a, b} {
		if !e.board.InBounds(p) {
			return newIllegal(ir.RequestSwap, &grid.IndexError{Pos: p, Rows: e.board.Rows(), Cols: e.board.Cols()},
				"cell %s is off the board", p)
		}
	}
	if a == b {
		return newIllegal(ir.RequestSwap, nil, "cannot swap cell %s with itself", a)
	}
	if !grid.IsAdjacent(a, b) {
		return newIllegal(ir.RequestSwap, nil, "cells %s and %s are not adjacent", a, b)
	}

	if err := e.board.Swap(a, b); err != nil {
		return fmt.Errorf("swap: %w", err)
	}
	e.begin(ir.RequestSwap, &ir.Move{A: a, B: b})
	e.phase = PhaseScanning
	e.logger.Debug("swap", "session", e.session, "a", a.String(), "b", b.String())
	return nil
}

// BeginReset clears and refills the board, leaving the engine in
// PhaseScanning.
func (e *Engine) BeginReset() error {
	if e.phase != PhaseIdle {
		return newBusy(ir.RequestReset, e.phase)
	}
	e.begin(ir.RequestReset, nil)
	e.board.ClearAll()
	if err := e.refill(); err != nil {
		return err
	}
	e.phase = PhaseScanning
	return nil
}

// BeginReshuffle starts an explicit reshuffle, leaving the engine in
// PhaseReshuffling.
func (e *Engine) BeginReshuffle() error {
	if e.phase != PhaseIdle {
		return newBusy(ir.RequestReshuffle, e.phase)
	}
	e.begin(ir.RequestReshuffle, nil)
	e.phase = PhaseReshuffling
	return nil
}

// Pending returns the report of the request in progress (or of the last
// finished request). Its events grow as Step is called.
func (e *Engine) Pending() *ir.Report {
	return e.report
}

// Finish returns the report of the last request once the engine is Idle,
// together with its non-fatal outcome (ReshuffleExhausted) if any.
func (e *Engine) Finish() (*ir.Report, error) {
	if e.phase != PhaseIdle {
		return nil, newBusy(e.report.Request, e.phase)
	}
	return e.report, e.outcome
}

func (e *Engine) begin(kind ir.RequestKind, swap *ir.Move) {
	e.report = &ir.Report{
		Session: e.session,
		Request: kind,
		Swap:    swap,
		Events:  []ir.Event{},
	}
	e.outcome = nil
	e.attempts = 0
	e.resetCascade()
}

func (e *Engine) resetCascade() {
	e.depth = 0
	e.pending = nil
	e.quota = NewQuotaEnforcer(e.maxCascade)
}

// run steps the state machine to Idle.
func (e *Engine) run() (*ir.Report, error) {
	for e.phase != PhaseIdle {
		if _, err := e.Step(); err != nil {
			return e.report, err
		}
	}
	return e.Finish()
}

func (e *Engine) refill() error {
	if _, err := e.board.Refill(e.rng, e.spec.Pool); err != nil {
		return fmt.Errorf("refill: %w", err)
	}
	return nil
}
