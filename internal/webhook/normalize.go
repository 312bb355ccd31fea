package webhook

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mattjoyce/commitboard/internal/store"
)

// Sentinels substituted when an expected payload field is absent. Absence of
// a field is tolerated; absence of a parseable payload is not.
const (
	UnknownRepository = "Unknown repository"
	UnknownUser       = "Unknown user"
	NoCommitMessage   = "No commit message"
)

const branchRefPrefix = "refs/heads/"

// Commit is one commit entry extracted from a push payload, in payload order.
type Commit struct {
	Message string
	URL     string
}

// eventFields is the subset of a GitHub event body the normalizer reads.
// Every field is optional; missing ones decode to zero values.
type eventFields struct {
	Ref        string `json:"ref"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
	Pusher struct {
		Name string `json:"name"`
	} `json:"pusher"`
	Sender struct {
		Login string `json:"login"`
	} `json:"sender"`
	Commits []struct {
		Message string `json:"message"`
		URL     string `json:"url"`
	} `json:"commits"`
}

// Normalize maps a raw GitHub event body and its X-GitHub-Event tag into a
// store append request plus, for push events, the ordered commit list.
// A body that is not valid JSON is a hard error; missing fields fall back to
// sentinels.
func Normalize(body []byte, eventType string) (store.AppendRequest, []Commit, error) {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return store.AppendRequest{}, nil, fmt.Errorf("parse event payload: %w", err)
	}

	// Canonical re-serialization of the decoded tree; this is what gets
	// persisted and replayed, byte-stable regardless of incoming formatting.
	payload, err := json.Marshal(decoded)
	if err != nil {
		return store.AppendRequest{}, nil, fmt.Errorf("serialize event payload: %w", err)
	}

	var fields eventFields
	if err := json.Unmarshal(body, &fields); err != nil {
		return store.AppendRequest{}, nil, fmt.Errorf("parse event payload: %w", err)
	}

	repository := fields.Repository.FullName
	if repository == "" {
		repository = UnknownRepository
	}

	req := store.AppendRequest{
		EventType:  eventType,
		Repository: repository,
		Payload:    payload,
	}

	if eventType != "push" {
		sender := fields.Sender.Login
		if sender == "" {
			sender = UnknownUser
		}
		req.Sender = sender
		return req, nil, nil
	}

	sender := fields.Pusher.Name
	if sender == "" {
		sender = UnknownUser
	}
	req.Sender = sender
	req.Branch = strings.TrimPrefix(fields.Ref, branchRefPrefix)
	req.CommitCount = len(fields.Commits)

	commits := make([]Commit, 0, len(fields.Commits))
	for _, c := range fields.Commits {
		message := c.Message
		if message == "" {
			message = NoCommitMessage
		}
		commits = append(commits, Commit{Message: message, URL: c.URL})
	}

	return req, commits, nil
}
