package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record is one persisted webhook delivery. Records are immutable after
// Append assigns id and ReceivedAt.
type Record struct {
	ID          int64
	EventType   string
	Repository  string
	Sender      string // empty when the event carried no actor
	Branch      string // push events only
	CommitCount int
	Payload     []byte // canonical JSON of the original event body
	// PayloadDigest is the hex BLAKE3 digest of Payload, kept for auditing.
	// It is internal and never serialized to API clients.
	PayloadDigest string
	ReceivedAt    time.Time
}

// AppendRequest carries the normalized fields of a delivery into the store.
// Id and timestamp are assigned by the store, never by the caller.
type AppendRequest struct {
	EventType   string
	Repository  string
	Sender      string
	Branch      string
	CommitCount int
	Payload     []byte
}

// Summary returns a human-readable one-liner for the record.
func (r *Record) Summary() string {
	if r.EventType == "push" {
		return fmt.Sprintf("%s pushed %d commit(s) to %s in %s",
			r.Sender, r.CommitCount, r.Branch, r.Repository)
	}
	return fmt.Sprintf("%s event from %s in %s", r.EventType, r.Sender, r.Repository)
}

// MarshalJSON emits the wire shape used by the read API: sender/branch are
// null when absent and the payload is embedded as a decoded JSON value.
func (r *Record) MarshalJSON() ([]byte, error) {
	var sender, branch *string
	if r.Sender != "" {
		sender = &r.Sender
	}
	if r.Branch != "" {
		branch = &r.Branch
	}

	var payload json.RawMessage
	if len(r.Payload) > 0 {
		payload = json.RawMessage(r.Payload)
	}

	return json.Marshal(struct {
		ID          int64           `json:"id"`
		EventType   string          `json:"event_type"`
		Repository  string          `json:"repository"`
		Sender      *string         `json:"sender"`
		Branch      *string         `json:"branch"`
		CommitCount int             `json:"commit_count"`
		Payload     json.RawMessage `json:"payload"`
		Timestamp   string          `json:"timestamp"`
	}{
		ID:          r.ID,
		EventType:   r.EventType,
		Repository:  r.Repository,
		Sender:      sender,
		Branch:      branch,
		CommitCount: r.CommitCount,
		Payload:     payload,
		Timestamp:   r.ReceivedAt.UTC().Format(time.RFC3339Nano),
	})
}
