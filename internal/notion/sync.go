package notion

import (
	"context"
	"log/slog"
	"strings"
)

// NoDescription is substituted when a commit message has no body.
const NoDescription = "no description"

// ParseCommitMessage derives a task title and description from a commit
// message: the first line (trimmed) is the title, the remainder (trimmed) is
// the description.
func ParseCommitMessage(message string) (title, description string) {
	parts := strings.SplitN(strings.TrimSpace(message), "\n", 2)
	title = strings.TrimSpace(parts[0])

	description = NoDescription
	if len(parts) > 1 {
		if rest := strings.TrimSpace(parts[1]); rest != "" {
			description = rest
		}
	}
	return title, description
}

// Syncer reflects commits in the Notion task database with create-or-update
// semantics. One search, optionally one user-list fetch (create path only),
// and one write per commit; no caching, batching, or retries.
type Syncer struct {
	client *Client
	logger *slog.Logger
}

func NewSyncer(client *Client, logger *slog.Logger) *Syncer {
	return &Syncer{client: client, logger: logger}
}

// SyncCommit ensures a task matching the commit's derived title exists and
// is marked done. Remote failures are returned to the caller; they never
// abort the surrounding webhook ingestion.
func (s *Syncer) SyncCommit(ctx context.Context, commit Commit) error {
	title, description := ParseCommitMessage(commit.Message)

	page, err := s.client.QueryTaskByTitle(ctx, title)
	if err != nil {
		return err
	}

	if page != nil {
		s.logger.Info("updating existing task",
			"page_id", page.ID,
			"title", title,
			"repository", commit.Repository,
		)
		return s.client.UpdatePageDone(ctx, page.ID, commit, description)
	}

	// An unresolved author is not an error; the assignee is simply omitted.
	userID := s.resolveUser(ctx, commit.Author)

	s.logger.Info("creating task for commit",
		"title", title,
		"repository", commit.Repository,
		"assignee_resolved", userID != "",
	)
	return s.client.CreateTaskPage(ctx, title, description, commit, userID)
}

// resolveUser maps an author name to a Notion user id by exact
// case-insensitive name match. Returns "" when the lookup fails or no user
// matches.
func (s *Syncer) resolveUser(ctx context.Context, author string) string {
	if author == "" {
		return ""
	}

	users, err := s.client.ListUsers(ctx)
	if err != nil {
		s.logger.Warn("failed to list notion users", "error", err)
		return ""
	}

	for _, u := range users {
		if strings.EqualFold(u.Name, author) {
			return u.ID
		}
	}
	return ""
}
