package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kanjimerge/internal/ir"
)

func TestWriteReadSession_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := createTestSession("session-1")
	require.NoError(t, s.WriteSession(ctx, rec))

	got, err := s.ReadSession(ctx, "session-1")
	require.NoError(t, err)

	assert.Equal(t, rec.Spec.Recipes, got.Spec.Recipes)
	assert.Equal(t, rec.Spec.Pool, got.Spec.Pool)
	gotSpecHash, err := ir.SpecHash(got.Spec)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<60), got.Spec.Seed, "large seeds survive canonical JSON")
	assert.Equal(t, testBoard(), got.InitialBoard)
	assert.True(t, got.Dealt)
	assert.Equal(t, ir.EngineVersion, got.EngineVersion)

	wantSpecHash, err := ir.SpecHash(rec.Spec)
	require.NoError(t, err)
	assert.Equal(t, wantSpecHash, got.SpecHash)
	assert.Equal(t, wantSpecHash, gotSpecHash)
	assert.Equal(t, ir.MustBoardHash(testBoard()), got.InitialHash)
}

func TestWriteSession_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := createTestSession("session-1")
	require.NoError(t, s.WriteSession(ctx, rec))
	rec.Name = "renamed"
	require.NoError(t, s.WriteSession(ctx, rec))

	got, err := s.ReadSession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "kanji", got.Name, "first write wins")
}

func TestReadSession_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadSession(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListSessions_OrderedByID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	empty, err := s.ListSessions(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.WriteSession(ctx, createTestSession(id)))
	}

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	ids := make([]string, len(sessions))
	for i, rec := range sessions {
		ids[i] = rec.ID
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestWriteRequest_WithEvents(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteSession(ctx, createTestSession("s")))

	producedAt := ir.P(1, 1)
	events := []ir.Event{
		{Seq: 1, Kind: ir.EventComboStep, Depth: 1},
		{Seq: 2, Kind: ir.EventMatchApplied, Depth: 1, Applied: &ir.Applied{
			Kind:       ir.MatchRecipeMerge,
			Positions:  []ir.Pos{ir.P(1, 0), ir.P(1, 1)},
			Consumed:   []ir.Symbol{"日", "月"},
			Produced:   "明",
			ProducedAt: &producedAt,
			BaseScore:  150,
		}},
		{Seq: 3, Kind: ir.EventCascadeSettled, Depth: 1},
	}

	inserted, err := s.WriteRequest(ctx, createTestRequest("s", 1, events...))
	require.NoError(t, err)
	assert.True(t, inserted)

	requests, err := s.ReadRequests(ctx, "s")
	require.NoError(t, err)
	require.Len(t, requests, 1)

	got := requests[0]
	assert.Equal(t, ir.RequestSwap, got.Kind)
	require.NotNil(t, got.Swap)
	assert.Equal(t, ir.Move{A: ir.P(0, 2), B: ir.P(1, 2)}, *got.Swap)
	assert.Equal(t, 230, got.Score)
	assert.Equal(t, 1, got.ComboDepth)
	assert.Equal(t, ir.MustBoardHash(testBoard()), got.BoardHash)
	assert.Equal(t, events, got.Events)
}

func TestWriteRequest_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteSession(ctx, createTestSession("s")))

	rec := createTestRequest("s", 1, ir.Event{Seq: 1, Kind: ir.EventCascadeSettled})
	inserted, err := s.WriteRequest(ctx, rec)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.WriteRequest(ctx, rec)
	require.NoError(t, err)
	assert.False(t, inserted)

	events, err := s.ReadEvents(ctx, "s", "")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestWriteRequest_UnknownSessionRejected(t *testing.T) {
	s := createTestStore(t)

	_, err := s.WriteRequest(context.Background(), createTestRequest("ghost", 1))
	assert.Error(t, err, "foreign key enforces the session")
}

func TestWriteRequest_AtomicOnEventFailure(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteSession(ctx, createTestSession("s")))

	// Duplicate event seqs violate the events primary key.
	rec := createTestRequest("s", 1,
		ir.Event{Seq: 5, Kind: ir.EventComboStep, Depth: 1},
		ir.Event{Seq: 5, Kind: ir.EventCascadeSettled, Depth: 1},
	)
	_, err := s.WriteRequest(ctx, rec)
	require.Error(t, err)

	requests, err := s.ReadRequests(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, requests, "request row rolled back with its events")
}

func TestReadRequests_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteSession(ctx, createTestSession("s")))

	for _, seq := range []int64{2, 0, 1} {
		rec := createTestRequest("s", seq, ir.Event{Seq: 10 + seq, Kind: ir.EventCascadeSettled})
		_, err := s.WriteRequest(ctx, rec)
		require.NoError(t, err)
	}

	requests, err := s.ReadRequests(ctx, "s")
	require.NoError(t, err)
	require.Len(t, requests, 3)
	for i, rec := range requests {
		assert.Equal(t, int64(i), rec.Seq)
		require.Len(t, rec.Events, 1)
		assert.Equal(t, 10+int64(i), rec.Events[0].Seq)
	}

	last, err := s.LastRequestSeq(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, int64(2), last)

	last, err = s.LastRequestSeq(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), last)
}

func TestReadRequests_RejectedRequestHasNoEvents(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteSession(ctx, createTestSession("s")))

	rec := createTestRequest("s", 1)
	rec.ErrorCode = "ILLEGAL"
	_, err := s.WriteRequest(ctx, rec)
	require.NoError(t, err)

	requests, err := s.ReadRequests(ctx, "s")
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "ILLEGAL", requests[0].ErrorCode)
	assert.NotNil(t, requests[0].Events)
	assert.Empty(t, requests[0].Events)
}

func TestReadEvents_FilterByKind(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteSession(ctx, createTestSession("s")))

	_, err := s.WriteRequest(ctx, createTestRequest("s", 1,
		ir.Event{Seq: 1, Kind: ir.EventCascadeSettled},
		ir.Event{Seq: 2, Kind: ir.EventDeadlockDetected},
		ir.Event{Seq: 3, Kind: ir.EventReshuffleTriggered, Attempt: 1},
		ir.Event{Seq: 4, Kind: ir.EventCascadeSettled},
	))
	require.NoError(t, err)

	settled, err := s.ReadEvents(ctx, "s", ir.EventCascadeSettled)
	require.NoError(t, err)
	require.Len(t, settled, 2)
	assert.Equal(t, int64(1), settled[0].Seq)
	assert.Equal(t, int64(4), settled[1].Seq)

	reshuffles, err := s.ReadEvents(ctx, "s", ir.EventReshuffleTriggered)
	require.NoError(t, err)
	require.Len(t, reshuffles, 1)
	assert.Equal(t, 1, reshuffles[0].Attempt)

	none, err := s.ReadEvents(ctx, "other", "")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
