package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/kanjimerge/internal/ir"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testBoard() [][]ir.Symbol {
	return [][]ir.Symbol{
		{"木", "木", "火"},
		{"日", "月", "木"},
		{"火", "火", "日"},
	}
}

// createTestSession creates a session header with minimal required fields.
func createTestSession(id string) ir.SessionRecord {
	return ir.SessionRecord{
		ID:   id,
		Name: "kanji",
		Spec: ir.GameSpec{
			Name: "kanji",
			Rows: 3,
			Cols: 3,
			Pool: []ir.Symbol{"木", "火", "日", "月", "人"},
			Recipes: []ir.Recipe{
				{A: "木", B: "木", Result: "林", Score: 100},
			},
			Seed: 1 << 60,
		}.WithDefaults(),
		EngineVersion: ir.EngineVersion,
		Dealt:         true,
		InitialBoard:  testBoard(),
	}
}

// createTestRequest creates a swap request record carrying the given events.
func createTestRequest(session string, seq int64, events ...ir.Event) ir.RequestRecord {
	return ir.RequestRecord{
		SessionID:  session,
		Seq:        seq,
		Kind:       ir.RequestSwap,
		Swap:       &ir.Move{A: ir.P(0, 2), B: ir.P(1, 2)},
		ComboDepth: 1,
		Score:      230,
		Board:      testBoard(),
		Events:     events,
	}
}
