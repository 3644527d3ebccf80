package engine

// # Replay
//
// A journaled session is reproducible because every input to the engine is
// recorded or derivable:
//
//   - the effective game spec, including the seed of the refill stream
//   - the initial board (dealt from the seed, or installed verbatim)
//   - the ordered request list, including rejected requests
//
// Replay rebuilds the engine from the stored spec, checks the initial board
// hash, re-issues every request in seq order and compares each outcome with
// the journal:
//
//	[sessions row] -> New(spec)            -> initial_hash
//	[requests 1..n] -> Do(kind, swap)      -> error_code, board_hash
//
// Same spec and seed give the same ChaCha8 stream, so a healthy journal
// replays with zero mismatches. Any difference is reported per request.

import (
	"context"
	"fmt"

	"github.com/roach88/kanjimerge/internal/ir"
	"github.com/roach88/kanjimerge/internal/store"
)

// Mismatch is one divergence between a journal and its replay.
type Mismatch struct {
	Seq   int64  `json:"seq"`
	Field string `json:"field"`
	Want  string `json:"want"`
	Got   string `json:"got"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("request %d: %s: want %q, got %q", m.Seq, m.Field, m.Want, m.Got)
}

// ReplayResult summarizes a session replay.
type ReplayResult struct {
	Session    string     `json:"session"`
	Requests   int        `json:"requests"`
	Mismatches []Mismatch `json:"mismatches"`
}

// OK reports whether the replay matched the journal exactly.
func (r *ReplayResult) OK() bool {
	return len(r.Mismatches) == 0
}

// Err returns a REPLAY_MISMATCH RuntimeError describing the first
// divergence, or nil when the replay matched.
func (r *ReplayResult) Err() error {
	if r.OK() {
		return nil
	}
	first := r.Mismatches[0]
	return &RuntimeError{
		Code:    ErrCodeReplayMismatch,
		Message: fmt.Sprintf("%d mismatches, first at %s", len(r.Mismatches), first),
		Session: r.Session,
		Details: map[string]string{
			"seq":   fmt.Sprintf("%d", first.Seq),
			"field": first.Field,
		},
	}
}

type fixedSession string

func (f fixedSession) Generate() string { return string(f) }

// Replay re-executes a journaled session and compares every request outcome
// with the recorded one. opts may add a logger or observer; the session id,
// spec and board always come from the journal.
func Replay(ctx context.Context, st *store.Store, sessionID string, opts ...Option) (*ReplayResult, error) {
	rec, err := st.ReadSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("replay %s: read session: %w", sessionID, err)
	}
	requests, err := st.ReadRequests(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", sessionID, err)
	}

	all := append([]Option{}, opts...)
	all = append(all, WithSessionGenerator(fixedSession(sessionID)))
	if !rec.Dealt {
		all = append(all, WithBoard(rec.InitialBoard))
	}
	e, err := New(rec.Spec, all...)
	if err != nil {
		return nil, fmt.Errorf("replay %s: rebuild engine: %w", sessionID, err)
	}

	result := &ReplayResult{Session: sessionID, Mismatches: []Mismatch{}}
	mismatch := func(seq int64, field, want, got string) {
		if want != got {
			result.Mismatches = append(result.Mismatches, Mismatch{Seq: seq, Field: field, Want: want, Got: got})
		}
	}

	initial, err := ir.BoardHash(e.InitialBoard())
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", sessionID, err)
	}
	mismatch(0, "initial_hash", rec.InitialHash, initial)

	for _, r := range requests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if r.Kind == ir.RequestDeal {
			mismatch(r.Seq, "error_code", r.ErrorCode, ErrorCode(e.DealErr()))
			continue
		}

		report, reqErr := e.Do(Request{Kind: r.Kind, Swap: r.Swap})
		result.Requests++

		board := e.Board()
		if report != nil && report.Board != nil {
			board = report.Board
		}
		hash, err := ir.BoardHash(board)
		if err != nil {
			return nil, fmt.Errorf("replay %s: %w", sessionID, err)
		}
		mismatch(r.Seq, "error_code", r.ErrorCode, ErrorCode(reqErr))
		mismatch(r.Seq, "board_hash", r.BoardHash, hash)
		if report != nil {
			mismatch(r.Seq, "score", fmt.Sprint(r.Score), fmt.Sprint(report.Score))
			mismatch(r.Seq, "events", fmt.Sprint(len(r.Events)), fmt.Sprint(len(report.Events)))
		}
	}
	return result, nil
}
