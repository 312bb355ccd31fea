package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mattjoyce/commitboard/internal/store"
)

// webhookRecord mirrors the server's webhook wire shape.
type webhookRecord struct {
	ID          int64           `json:"id"`
	EventType   string          `json:"event_type"`
	Repository  string          `json:"repository"`
	Sender      *string         `json:"sender"`
	Branch      *string         `json:"branch"`
	CommitCount int             `json:"commit_count"`
	Payload     json.RawMessage `json:"payload"`
	Timestamp   string          `json:"timestamp"`
}

type apiClient struct {
	baseURL    string
	httpClient *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *apiClient) listWebhooks(ctx context.Context, limit int) ([]webhookRecord, error) {
	path := "/api/webhooks"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}

	var records []webhookRecord
	if err := c.get(ctx, path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *apiClient) getWebhook(ctx context.Context, id string) (*webhookRecord, error) {
	var record webhookRecord
	if err := c.get(ctx, "/api/webhooks/"+id, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *apiClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func printWebhookTable(w io.Writer, records []webhookRecord) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tEVENT\tREPOSITORY\tSENDER\tBRANCH\tCOMMITS")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d\n",
			r.ID,
			formatTimestamp(r.Timestamp),
			r.EventType,
			r.Repository,
			orDash(r.Sender),
			orDash(r.Branch),
			r.CommitCount,
		)
	}
	_ = tw.Flush()
}

// summary renders the one-line description of a record.
func (r *webhookRecord) summary() string {
	rec := store.Record{
		EventType:   r.EventType,
		Repository:  r.Repository,
		Sender:      derefOrEmpty(r.Sender),
		Branch:      derefOrEmpty(r.Branch),
		CommitCount: r.CommitCount,
	}
	return rec.Summary()
}

func printWebhookDetail(w io.Writer, r *webhookRecord, showPayload bool) {
	fmt.Fprintf(w, "%s\n\n", r.summary())
	fmt.Fprintf(w, "ID:          %d\n", r.ID)
	fmt.Fprintf(w, "Time:        %s\n", formatTimestamp(r.Timestamp))
	fmt.Fprintf(w, "Event:       %s\n", r.EventType)
	fmt.Fprintf(w, "Repository:  %s\n", r.Repository)
	fmt.Fprintf(w, "Sender:      %s\n", orDash(r.Sender))
	fmt.Fprintf(w, "Branch:      %s\n", orDash(r.Branch))
	fmt.Fprintf(w, "Commits:     %d\n", r.CommitCount)

	if !showPayload {
		return
	}

	fmt.Fprintln(w, "Payload:")
	if len(r.Payload) == 0 || string(r.Payload) == "null" {
		fmt.Fprintln(w, "  (not decodable)")
		return
	}

	var pretty map[string]any
	if err := json.Unmarshal(r.Payload, &pretty); err != nil {
		fmt.Fprintf(w, "  %s\n", r.Payload)
		return
	}
	out, _ := json.MarshalIndent(pretty, "  ", "  ")
	fmt.Fprintf(w, "  %s\n", out)
}

func formatTimestamp(ts string) string {
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return parsed.Local().Format("2006-01-02 15:04:05")
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
