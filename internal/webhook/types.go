package webhook

import (
	"context"

	"github.com/mattjoyce/commitboard/internal/notion"
	"github.com/mattjoyce/commitboard/internal/store"
)

//go:generate mockgen -destination=mocks/mock_syncer.go -package=mocks github.com/mattjoyce/commitboard/internal/webhook TaskSyncer

// TaskSyncer reflects a commit in the external task tracker. Sync outcomes
// are advisory: the caller logs failures and keeps going.
type TaskSyncer interface {
	SyncCommit(ctx context.Context, commit notion.Commit) error
}

// RecordStore is the append-only persistence surface the server needs.
type RecordStore interface {
	Append(ctx context.Context, req store.AppendRequest) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]*store.Record, error)
	Get(ctx context.Context, id int64) (*store.Record, error)
	Count(ctx context.Context) (int, error)
}

// Config holds webhook server configuration.
type Config struct {
	// Listen is the HTTP listen address (e.g. ":5000").
	Listen string

	// Secret is the shared HMAC secret for X-Hub-Signature-256 verification.
	// An empty secret rejects every delivery with a config error.
	Secret string

	// MaxBodySize is the maximum allowed request body size in bytes (default: 1MB).
	MaxBodySize int64
}

// StatusResponse acknowledges a fully persisted delivery.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	WebhookCount  int    `json:"webhook_count"`
}

// Default values
const DefaultMaxBodySize = 1048576 // 1 MB
