package webhook

import (
	"encoding/json"
	"testing"
)

func TestNormalizePushEvent(t *testing.T) {
	body := []byte(`{
		"ref": "refs/heads/main",
		"repository": {"full_name": "octo/widgets"},
		"pusher": {"name": "octocat"},
		"commits": [
			{"message": "Fix bug", "url": "https://example.com/c/1"},
			{"message": "Add docs\n\nMore words", "url": "https://example.com/c/2"}
		]
	}`)

	req, commits, err := Normalize(body, "push")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if req.EventType != "push" {
		t.Errorf("EventType = %q, want push", req.EventType)
	}
	if req.Repository != "octo/widgets" {
		t.Errorf("Repository = %q, want octo/widgets", req.Repository)
	}
	if req.Sender != "octocat" {
		t.Errorf("Sender = %q, want octocat", req.Sender)
	}
	if req.Branch != "main" {
		t.Errorf("Branch = %q, want main", req.Branch)
	}
	if req.CommitCount != 2 {
		t.Errorf("CommitCount = %d, want 2", req.CommitCount)
	}
	if len(commits) != 2 {
		t.Fatalf("len(commits) = %d, want 2", len(commits))
	}
	if commits[0].Message != "Fix bug" || commits[0].URL != "https://example.com/c/1" {
		t.Errorf("commits[0] = %+v", commits[0])
	}
	if commits[1].Message != "Add docs\n\nMore words" {
		t.Errorf("commits[1].Message = %q", commits[1].Message)
	}
}

func TestNormalizeBranchWithoutRefPrefix(t *testing.T) {
	body := []byte(`{"ref": "main", "commits": []}`)

	req, _, err := Normalize(body, "push")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if req.Branch != "main" {
		t.Errorf("Branch = %q, want main", req.Branch)
	}
}

func TestNormalizeSentinels(t *testing.T) {
	req, commits, err := Normalize([]byte(`{"commits": [{"url": "u"}]}`), "push")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if req.Repository != UnknownRepository {
		t.Errorf("Repository = %q, want %q", req.Repository, UnknownRepository)
	}
	if req.Sender != UnknownUser {
		t.Errorf("Sender = %q, want %q", req.Sender, UnknownUser)
	}
	if commits[0].Message != NoCommitMessage {
		t.Errorf("commits[0].Message = %q, want %q", commits[0].Message, NoCommitMessage)
	}
}

func TestNormalizeNonPushEvent(t *testing.T) {
	body := []byte(`{
		"repository": {"full_name": "octo/widgets"},
		"sender": {"login": "octocat"},
		"pusher": {"name": "should-be-ignored"}
	}`)

	req, commits, err := Normalize(body, "pull_request")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if req.EventType != "pull_request" {
		t.Errorf("EventType = %q", req.EventType)
	}
	if req.Sender != "octocat" {
		t.Errorf("Sender = %q, want octocat (sender.login, not pusher.name)", req.Sender)
	}
	if req.Branch != "" {
		t.Errorf("Branch = %q, want empty for non-push", req.Branch)
	}
	if req.CommitCount != 0 {
		t.Errorf("CommitCount = %d, want 0 for non-push", req.CommitCount)
	}
	if commits != nil {
		t.Errorf("commits = %v, want nil for non-push", commits)
	}
}

func TestNormalizeNonPushMissingSender(t *testing.T) {
	req, _, err := Normalize([]byte(`{}`), "issues")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if req.Sender != UnknownUser {
		t.Errorf("Sender = %q, want %q", req.Sender, UnknownUser)
	}
}

func TestNormalizeMalformedPayload(t *testing.T) {
	if _, _, err := Normalize([]byte("{not json"), "push"); err == nil {
		t.Error("Normalize() should fail on invalid JSON")
	}
	if _, _, err := Normalize([]byte(`[1,2,3]`), "push"); err == nil {
		t.Error("Normalize() should fail on a non-object payload")
	}
}

func TestNormalizePayloadIsCanonicalJSON(t *testing.T) {
	body := []byte("{\n  \"ref\": \"refs/heads/dev\",\n  \"commits\": []\n}")

	req, _, err := Normalize(body, "push")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if !json.Valid(req.Payload) {
		t.Fatal("payload is not valid JSON")
	}

	// Decoded content survives re-serialization unchanged.
	var got, want any
	if err := json.Unmarshal(req.Payload, &got); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if err := json.Unmarshal(body, &want); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	gotJSON, _ := json.Marshal(got)
	wantJSON, _ := json.Marshal(want)
	if string(gotJSON) != string(wantJSON) {
		t.Errorf("payload round-trip mismatch: %s != %s", gotJSON, wantJSON)
	}
}
