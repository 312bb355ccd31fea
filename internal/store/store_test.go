package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/commitboard/internal/storage"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestAppendAndGet(t *testing.T) {
	s := New(testDB(t))
	ctx := context.Background()

	payload := []byte(`{"ref":"refs/heads/main","commits":[{"message":"Fix bug"}]}`)
	id, err := s.Append(ctx, AppendRequest{
		EventType:   "push",
		Repository:  "octo/widgets",
		Sender:      "octocat",
		Branch:      "main",
		CommitCount: 1,
		Payload:     payload,
	})
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	rec, err := s.Get(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "push", rec.EventType)
	assert.Equal(t, "octo/widgets", rec.Repository)
	assert.Equal(t, "octocat", rec.Sender)
	assert.Equal(t, "main", rec.Branch)
	assert.Equal(t, 1, rec.CommitCount)
	assert.False(t, rec.ReceivedAt.IsZero())
	assert.NotEmpty(t, rec.PayloadDigest)

	// Payload round-trips unchanged through serialize/deserialize.
	var got, want any
	require.NoError(t, json.Unmarshal(rec.Payload, &got))
	require.NoError(t, json.Unmarshal(payload, &want))
	assert.Equal(t, want, got)
}

func TestAppendRejectsInvalidPayload(t *testing.T) {
	s := New(testDB(t))

	_, err := s.Append(context.Background(), AppendRequest{
		EventType:  "push",
		Repository: "octo/widgets",
		Payload:    []byte("{not json"),
	})
	assert.Error(t, err)

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestAppendValidation(t *testing.T) {
	s := New(testDB(t))
	ctx := context.Background()

	_, err := s.Append(ctx, AppendRequest{Repository: "r", Payload: []byte("{}")})
	assert.Error(t, err, "missing event_type")

	_, err = s.Append(ctx, AppendRequest{EventType: "push", Payload: []byte("{}")})
	assert.Error(t, err, "missing repository")

	_, err = s.Append(ctx, AppendRequest{EventType: "push", Repository: "r", CommitCount: -1, Payload: []byte("{}")})
	assert.Error(t, err, "negative commit_count")
}

func TestListRecentOrderingAndLimit(t *testing.T) {
	s := New(testDB(t))
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 5; i++ {
		id, err := s.Append(ctx, AppendRequest{
			EventType:  "push",
			Repository: "octo/widgets",
			Payload:    []byte(`{}`),
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	recs, err := s.ListRecent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recs, 5)

	// Newest first; id is the tie-break for equal timestamps.
	for i, rec := range recs {
		assert.Equal(t, ids[len(ids)-1-i], rec.ID)
	}
	for i := 1; i < len(recs); i++ {
		assert.False(t, recs[i].ReceivedAt.After(recs[i-1].ReceivedAt))
	}

	recs, err = s.ListRecent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestListRecentDefaultLimit(t *testing.T) {
	s := New(testDB(t))
	ctx := context.Background()

	for i := 0; i < DefaultListLimit+5; i++ {
		_, err := s.Append(ctx, AppendRequest{
			EventType:  "ping",
			Repository: "octo/widgets",
			Payload:    []byte(`{}`),
		})
		require.NoError(t, err)
	}

	recs, err := s.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recs, DefaultListLimit)
}

func TestGetNotFound(t *testing.T) {
	s := New(testDB(t))

	_, err := s.Get(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordWireShape(t *testing.T) {
	s := New(testDB(t))
	ctx := context.Background()

	id, err := s.Append(ctx, AppendRequest{
		EventType:  "ping",
		Repository: "octo/widgets",
		Payload:    []byte(`{"zen":"Keep it simple."}`),
	})
	require.NoError(t, err)

	rec, err := s.Get(ctx, id)
	require.NoError(t, err)

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))

	assert.Equal(t, float64(id), wire["id"])
	assert.Equal(t, "ping", wire["event_type"])
	assert.Nil(t, wire["sender"], "empty sender serializes as null")
	assert.Nil(t, wire["branch"], "empty branch serializes as null")
	assert.Equal(t, float64(0), wire["commit_count"])
	assert.Equal(t, map[string]any{"zen": "Keep it simple."}, wire["payload"])
	assert.NotEmpty(t, wire["timestamp"])
	assert.NotContains(t, wire, "payload_digest")
}

func TestSummary(t *testing.T) {
	push := &Record{EventType: "push", Sender: "octocat", CommitCount: 2, Branch: "main", Repository: "octo/widgets"}
	assert.Equal(t, "octocat pushed 2 commit(s) to main in octo/widgets", push.Summary())

	other := &Record{EventType: "issues", Sender: "octocat", Repository: "octo/widgets"}
	assert.Equal(t, "issues event from octocat in octo/widgets", other.Summary())
}
