package engine

import (
	"context"
	"fmt"

	"github.com/roach88/kanjimerge/internal/ir"
	"github.com/roach88/kanjimerge/internal/store"
)

// Journal records an engine session into a store: one session header, then
// one request row (with its events) per request, in order.
//
// Seq 0 is the initial deal of a dealt session; caller requests start at 1.
type Journal struct {
	store  *store.Store
	engine *Engine
	seq    int64
}

// NewJournal writes the session header (and the deal, if any) and returns a
// journal positioned after them. Re-opening the journal of a session that
// already has requests resumes after the last recorded seq.
//
// Only replayable engines can be journaled: a session whose refills come
// from an injected source could not be reproduced.
func NewJournal(ctx context.Context, st *store.Store, e *Engine) (*Journal, error) {
	if !e.Replayable() {
		return nil, fmt.Errorf("journal session %s: refills come from an injected rand source", e.session)
	}

	rec := ir.SessionRecord{
		ID:            e.session,
		Name:          e.spec.Name,
		Spec:          e.spec,
		EngineVersion: ir.EngineVersion,
		Dealt:         e.deal != nil,
		InitialBoard:  e.InitialBoard(),
	}
	if err := st.WriteSession(ctx, rec); err != nil {
		return nil, fmt.Errorf("journal session %s: %w", e.session, err)
	}

	j := &Journal{store: st, engine: e}
	last, err := st.LastRequestSeq(ctx, e.session)
	if err != nil {
		return nil, fmt.Errorf("journal session %s: %w", e.session, err)
	}
	if last >= 0 {
		j.seq = last
		return j, nil
	}

	if e.deal != nil {
		if err := j.write(ctx, 0, Request{Kind: ir.RequestDeal}, e.deal, e.dealErr); err != nil {
			return nil, err
		}
	}
	return j, nil
}

// Session returns the journaled session id.
func (j *Journal) Session() string { return j.engine.session }

// Seq returns the seq of the last recorded request.
func (j *Journal) Seq() int64 { return j.seq }

// Do runs req on the engine and records it, including rejected requests.
// The engine's result is returned unchanged unless the journal write fails.
func (j *Journal) Do(ctx context.Context, req Request) (*ir.Report, error) {
	report, err := j.engine.Do(req)
	if werr := j.Record(ctx, req, report, err); werr != nil {
		return report, werr
	}
	return report, err
}

// Record appends one finished request with its outcome.
func (j *Journal) Record(ctx context.Context, req Request, report *ir.Report, reqErr error) error {
	return j.write(ctx, j.seq+1, req, report, reqErr)
}

func (j *Journal) write(ctx context.Context, seq int64, req Request, report *ir.Report, reqErr error) error {
	rec := ir.RequestRecord{
		SessionID: j.engine.session,
		Seq:       seq,
		Kind:      req.Kind,
		Swap:      req.Swap,
		ErrorCode: ErrorCode(reqErr),
		Board:     j.engine.Board(),
		Events:    []ir.Event{},
	}
	if report != nil {
		rec.ComboDepth = report.ComboDepth
		rec.Deadlocked = report.Deadlocked
		rec.Reshuffles = report.Reshuffles
		rec.Score = report.Score
		rec.Events = report.Events
		if report.Board != nil {
			rec.Board = report.Board
		}
	}

	if _, err := j.store.WriteRequest(ctx, rec); err != nil {
		return fmt.Errorf("journal request %d: %w", seq, err)
	}
	j.seq = seq
	return nil
}
