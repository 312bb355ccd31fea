package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/mattjoyce/commitboard/internal/notion"
	"github.com/mattjoyce/commitboard/internal/store"
)

// Server handles webhook ingestion and the read API.
type Server struct {
	config    Config
	store     RecordStore
	syncer    TaskSyncer
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time
}

// New creates a new server instance. syncer may be nil, in which case
// task-tracker sync is disabled and deliveries are only logged.
func New(config Config, recordStore RecordStore, syncer TaskSyncer, logger *slog.Logger) *Server {
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = DefaultMaxBodySize
	}
	return &Server{
		config:    config,
		store:     recordStore,
		syncer:    syncer,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Start starts the HTTP server (blocking).
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("server starting", "listen", s.config.Listen)

	// Run server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		s.logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// setupRoutes configures the HTTP router.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Post("/webhook/github", s.handleGitHubWebhook)
	r.Get("/api/webhooks", s.handleListWebhooks)
	r.Get("/api/webhooks/{id}", s.handleGetWebhook)
	r.Get("/healthz", s.handleHealthz)

	return r
}

// loggingMiddleware logs HTTP requests (excludes sensitive payloads).
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// handleGitHubWebhook runs a delivery through the ingestion pipeline:
// verify, normalize, persist, then best-effort sync.
func (s *Server) handleGitHubWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.config.Secret == "" {
		s.logger.Warn("webhook secret not configured")
		s.respondError(w, http.StatusInternalServerError, "webhook secret not configured")
		return
	}

	// Delivery id from GitHub, or a generated one for correlation in logs.
	deliveryID := r.Header.Get("X-GitHub-Delivery")
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}
	logger := s.logger.With("delivery_id", deliveryID)

	// Enforce body size limit
	limitedReader := io.LimitReader(r.Body, s.config.MaxBodySize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to read request body")
		return
	}
	if int64(len(body)) > s.config.MaxBodySize {
		s.respondError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	signature := r.Header.Get("X-Hub-Signature-256")
	if signature == "" {
		logger.Warn("webhook signature missing")
		s.respondError(w, http.StatusUnauthorized, "no signature provided")
		return
	}

	// Verify HMAC signature (constant-time comparison)
	if err := verifySignature(body, signature, s.config.Secret); err != nil {
		logger.Warn("webhook signature verification failed")
		s.respondError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	if eventType == "" {
		eventType = "unknown"
	}

	req, commits, err := Normalize(body, eventType)
	if err != nil {
		logger.Error("failed to process webhook payload", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to process webhook payload")
		return
	}

	id, err := s.store.Append(ctx, req)
	if err != nil {
		logger.Error("failed to store webhook", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to store webhook")
		return
	}

	logger.Info("stored GitHub event",
		"id", id,
		"event", eventType,
		"repository", req.Repository,
		"branch", req.Branch,
		"commits", req.CommitCount,
	)

	// The record is durable at this point; sync is advisory. Each commit is
	// handled independently, in payload order, and a failure never stops the
	// remaining commits or changes the response.
	if eventType == "push" && len(commits) > 0 {
		s.syncCommits(ctx, logger, req, commits)
	}

	s.respondJSON(w, http.StatusOK, StatusResponse{Status: "success"})
}

func (s *Server) syncCommits(ctx context.Context, logger *slog.Logger, req store.AppendRequest, commits []Commit) {
	if s.syncer == nil {
		logger.Debug("task sync disabled, skipping commits", "commits", len(commits))
		return
	}

	for _, c := range commits {
		err := s.syncer.SyncCommit(ctx, notionCommit(req, c))
		if err != nil {
			logger.Error("commit sync failed",
				"repository", req.Repository,
				"commit_url", c.URL,
				"error", err,
			)
		}
	}
}

// handleListWebhooks handles GET /api/webhooks?limit=N.
func (s *Server) handleListWebhooks(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	recs, err := s.store.ListRecent(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list webhooks", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list webhooks")
		return
	}
	if recs == nil {
		recs = []*store.Record{}
	}

	s.respondJSON(w, http.StatusOK, recs)
}

// handleGetWebhook handles GET /api/webhooks/{id}.
func (s *Server) handleGetWebhook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "webhook not found")
		return
	}

	rec, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "webhook not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to load webhook", "id", id, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to load webhook")
		return
	}

	s.respondJSON(w, http.StatusOK, rec)
}

// handleHealthz handles GET /healthz.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.Count(r.Context())
	if err != nil {
		s.logger.Error("failed to count webhooks", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to count webhooks")
		return
	}

	s.respondJSON(w, http.StatusOK, HealthzResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		WebhookCount:  count,
	})
}

// respondJSON sends a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError sends a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message})
}

// notionCommit shapes one commit of a push delivery for the task tracker.
// The pusher acts as the author, matching the push payload semantics.
func notionCommit(req store.AppendRequest, c Commit) notion.Commit {
	return notion.Commit{
		Message:    c.Message,
		Repository: req.Repository,
		Author:     req.Sender,
		URL:        c.URL,
	}
}
