package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zeebo/blake3"
)

// DefaultListLimit bounds ListRecent when no limit is given.
const DefaultListLimit = 50

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("webhook not found")

// Store persists webhook log records. The log is append-only: no update or
// delete operations exist on this type.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts a new record, assigning its id and receive timestamp.
// The payload must be valid JSON; content is otherwise never a reason to fail.
func (s *Store) Append(ctx context.Context, req AppendRequest) (int64, error) {
	if req.EventType == "" {
		return 0, fmt.Errorf("event_type is empty")
	}
	if req.Repository == "" {
		return 0, fmt.Errorf("repository is empty")
	}
	if req.CommitCount < 0 {
		return 0, fmt.Errorf("commit_count is negative")
	}
	if !json.Valid(req.Payload) {
		return 0, fmt.Errorf("payload is not valid JSON")
	}

	digest := blake3.Sum256(req.Payload)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	var sender, branch any
	if req.Sender != "" {
		sender = req.Sender
	}
	if req.Branch != "" {
		branch = req.Branch
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO webhook_log(event_type, repository, sender, branch, commit_count, payload, payload_digest, received_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?);
`, req.EventType, req.Repository, sender, branch, req.CommitCount, string(req.Payload), hex.EncodeToString(digest[:]), now)
	if err != nil {
		return 0, fmt.Errorf("append webhook: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("webhook insert id: %w", err)
	}
	return id, nil
}

// ListRecent returns up to limit records, newest first (received_at
// descending, id descending as tie-break). limit <= 0 means DefaultListLimit.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, event_type, repository, sender, branch, commit_count, payload, payload_digest, received_at
FROM webhook_log
ORDER BY received_at DESC, id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	return out, nil
}

// Get looks up one record by id. Returns ErrNotFound for unknown ids.
func (s *Store) Get(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, event_type, repository, sender, branch, commit_count, payload, payload_digest, received_at
FROM webhook_log
WHERE id = ?;
`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Count returns the total number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM webhook_log;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count webhooks: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec         Record
		sender      sql.NullString
		branch      sql.NullString
		payload     string
		receivedAtS string
	)
	err := row.Scan(
		&rec.ID, &rec.EventType, &rec.Repository, &sender, &branch,
		&rec.CommitCount, &payload, &rec.PayloadDigest, &receivedAtS,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan webhook: %w", err)
	}

	rec.Payload = []byte(payload)
	if sender.Valid {
		rec.Sender = sender.String
	}
	if branch.Valid {
		rec.Branch = branch.String
	}
	if t, err := time.Parse(time.RFC3339Nano, receivedAtS); err == nil {
		rec.ReceivedAt = t
	}
	return &rec, nil
}
