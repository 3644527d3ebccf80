package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/kanjimerge/internal/ir"
)

// ReadSession retrieves a session header by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadSession(ctx context.Context, id string) (ir.SessionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, spec, spec_hash, engine_version, dealt, initial_board, initial_hash
		FROM sessions
		WHERE id = ?
	`, id)
	return scanSession(row)
}

// ListSessions returns every session header ordered by id.
// UUIDv7 ids sort by creation time.
//
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) ListSessions(ctx context.Context) ([]ir.SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, spec, spec_hash, engine_version, dealt, initial_board, initial_hash
		FROM sessions
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []ir.SessionRecord{}
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadRequests returns a session's requests in seq order, each with its
// events in seq order.
//
// Returns an empty slice (not nil) if the session has no requests.
func (s *Store) ReadRequests(ctx context.Context, sessionID string) ([]ir.RequestRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, seq, kind, args, error_code, combo_depth, deadlocked, reshuffles, score, board, board_hash
		FROM requests
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}

	requests := []ir.RequestRecord{}
	for rows.Next() {
		rec, err := scanRequest(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		requests = append(requests, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate requests: %w", err)
	}
	rows.Close()

	events, err := s.readEvents(ctx, sessionID, "")
	if err != nil {
		return nil, err
	}
	byRequest := make(map[int64][]ir.Event)
	for _, ev := range events {
		byRequest[ev.requestSeq] = append(byRequest[ev.requestSeq], ev.Event)
	}
	for i := range requests {
		if evs, ok := byRequest[requests[i].Seq]; ok {
			requests[i].Events = evs
		}
	}
	return requests, nil
}

// ReadEvents returns a session's events in seq order. A non-empty kind
// filters to that event kind.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ReadEvents(ctx context.Context, sessionID string, kind ir.EventKind) ([]ir.Event, error) {
	stored, err := s.readEvents(ctx, sessionID, kind)
	if err != nil {
		return nil, err
	}
	out := make([]ir.Event, len(stored))
	for i, ev := range stored {
		out[i] = ev.Event
	}
	return out, nil
}

// LastRequestSeq returns the highest request seq of a session, or -1 if the
// session has no requests. Used to resume a journal.
func (s *Store) LastRequestSeq(ctx context.Context, sessionID string) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), -1) FROM requests WHERE session_id = ?
	`, sessionID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last request seq: %w", err)
	}
	return seq, nil
}

type storedEvent struct {
	ir.Event
	requestSeq int64
}

func (s *Store) readEvents(ctx context.Context, sessionID string, kind ir.EventKind) ([]storedEvent, error) {
	query := `
		SELECT request_seq, payload
		FROM events
		WHERE session_id = ?`
	args := []any{sessionID}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	query += `
		ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []storedEvent{}
	for rows.Next() {
		var (
			requestSeq int64
			payload    string
		)
		if err := rows.Scan(&requestSeq, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev, err := unmarshalEvent(payload)
		if err != nil {
			return nil, err
		}
		events = append(events, storedEvent{Event: ev, requestSeq: requestSeq})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (ir.SessionRecord, error) {
	var (
		rec       ir.SessionRecord
		specJSON  string
		boardJSON string
		dealt     int
	)
	err := row.Scan(&rec.ID, &rec.Name, &specJSON, &rec.SpecHash, &rec.EngineVersion, &dealt, &boardJSON, &rec.InitialHash)
	if err == sql.ErrNoRows {
		return ir.SessionRecord{}, err
	}
	if err != nil {
		return ir.SessionRecord{}, fmt.Errorf("scan session: %w", err)
	}
	if rec.Spec, err = unmarshalSpec(specJSON); err != nil {
		return ir.SessionRecord{}, err
	}
	if rec.InitialBoard, err = unmarshalBoard(boardJSON); err != nil {
		return ir.SessionRecord{}, err
	}
	rec.Dealt = dealt != 0
	return rec, nil
}

func scanRequest(row rowScanner) (ir.RequestRecord, error) {
	var (
		rec        ir.RequestRecord
		kind       string
		argsJSON   string
		boardJSON  string
		deadlocked int
	)
	err := row.Scan(&rec.SessionID, &rec.Seq, &kind, &argsJSON, &rec.ErrorCode, &rec.ComboDepth,
		&deadlocked, &rec.Reshuffles, &rec.Score, &boardJSON, &rec.BoardHash)
	if err != nil {
		return ir.RequestRecord{}, fmt.Errorf("scan request: %w", err)
	}
	args, err := unmarshalArgs(argsJSON)
	if err != nil {
		return ir.RequestRecord{}, err
	}
	if rec.Board, err = unmarshalBoard(boardJSON); err != nil {
		return ir.RequestRecord{}, err
	}
	rec.Kind = ir.RequestKind(kind)
	rec.Swap = args.Swap
	rec.Deadlocked = deadlocked != 0
	rec.Events = []ir.Event{}
	return rec, nil
}
