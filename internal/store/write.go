package store

import (
	"context"
	"fmt"

	"github.com/roach88/kanjimerge/internal/ir"
)

// WriteSession inserts a session header.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
//
// SpecHash and InitialHash are computed here when left empty.
func (s *Store) WriteSession(ctx context.Context, rec ir.SessionRecord) error {
	specJSON, err := marshalCanonical("spec", rec.Spec)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	boardJSON, err := marshalCanonical("board", rec.InitialBoard)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if rec.SpecHash == "" {
		if rec.SpecHash, err = ir.SpecHash(rec.Spec); err != nil {
			return fmt.Errorf("write session: %w", err)
		}
	}
	if rec.InitialHash == "" {
		if rec.InitialHash, err = ir.BoardHash(rec.InitialBoard); err != nil {
			return fmt.Errorf("write session: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions
		(id, name, spec, spec_hash, engine_version, dealt, initial_board, initial_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.Name,
		specJSON,
		rec.SpecHash,
		rec.EngineVersion,
		boolInt(rec.Dealt),
		boardJSON,
		rec.InitialHash,
	)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteRequest inserts a request row and all of its events in a single
// transaction. If any write fails, none persist.
//
// Uses ON CONFLICT DO NOTHING on (session_id, seq) for idempotency: writing
// the same request twice leaves the first copy. Returns whether a new row
// was inserted.
//
// Note: The session referenced by SessionID must exist (foreign key constraint).
func (s *Store) WriteRequest(ctx context.Context, rec ir.RequestRecord) (inserted bool, err error) {
	argsJSON, err := marshalCanonical("args", requestArgs{Swap: rec.Swap})
	if err != nil {
		return false, fmt.Errorf("write request: %w", err)
	}
	boardJSON, err := marshalCanonical("board", rec.Board)
	if err != nil {
		return false, fmt.Errorf("write request: %w", err)
	}
	if rec.BoardHash == "" {
		if rec.BoardHash, err = ir.BoardHash(rec.Board); err != nil {
			return false, fmt.Errorf("write request: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write request: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO requests
		(session_id, seq, kind, args, error_code, combo_depth, deadlocked, reshuffles, score, board, board_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`,
		rec.SessionID,
		rec.Seq,
		string(rec.Kind),
		argsJSON,
		rec.ErrorCode,
		rec.ComboDepth,
		boolInt(rec.Deadlocked),
		rec.Reshuffles,
		rec.Score,
		boardJSON,
		rec.BoardHash,
	)
	if err != nil {
		return false, fmt.Errorf("write request: insert: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write request: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	for _, ev := range rec.Events {
		payload, err := marshalCanonical("event", ev)
		if err != nil {
			return false, fmt.Errorf("write request: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO events (session_id, request_seq, seq, kind, payload)
			VALUES (?, ?, ?, ?, ?)
		`, rec.SessionID, rec.Seq, ev.Seq, string(ev.Kind), payload); err != nil {
			return false, fmt.Errorf("write request: insert event %d: %w", ev.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write request: commit: %w", err)
	}
	return true, nil
}
