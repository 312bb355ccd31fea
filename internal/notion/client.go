package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mattjoyce/commitboard/internal/config"
)

// defaultTimeout bounds every remote call. The Notion API sits in the
// webhook request path, so a hung call must not hang the delivery.
const defaultTimeout = 10 * time.Second

// Client is the HTTP wrapper for the Notion REST API (v1).
type Client struct {
	baseURL    string
	token      string
	version    string
	databaseID string
	props      config.NotionProperties
	httpClient *http.Client
}

// NewClient creates a new Notion HTTP client from config.
func NewClient(cfg config.NotionConfig) *Client {
	return &Client{
		baseURL:    cfg.APIURL,
		token:      cfg.Token,
		version:    cfg.Version,
		databaseID: cfg.DatabaseID,
		props:      cfg.Properties,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// QueryTaskByTitle searches the task database for a page whose title
// contains title. Returns the first match, or nil when nothing matches.
// The substring match is deliberate tolerance for minor title drift.
func (c *Client) QueryTaskByTitle(ctx context.Context, title string) (*Page, error) {
	reqBody := map[string]any{
		"filter": map[string]any{
			"property": c.props.Title,
			"title":    map[string]any{"contains": title},
		},
	}

	var queryResp struct {
		Results []Page `json:"results"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/databases/%s/query", c.databaseID), reqBody, &queryResp); err != nil {
		return nil, fmt.Errorf("query task database: %w", err)
	}

	if len(queryResp.Results) == 0 {
		return nil, nil
	}
	return &queryResp.Results[0], nil
}

// UpdatePageDone flips an existing task page to the done status and attaches
// commit URL, author, and description. The title is left untouched.
func (c *Client) UpdatePageDone(ctx context.Context, pageID string, commit Commit, description string) error {
	properties := map[string]any{
		c.props.Status: selectValue(c.props.DoneValue),
	}
	if commit.URL != "" {
		properties[c.props.CommitLink] = urlValue(commit.URL)
	}
	if commit.Author != "" {
		properties[c.props.Author] = richText(commit.Author)
	}
	if description != "" {
		properties[c.props.Description] = richText(description)
	}

	reqBody := map[string]any{"properties": properties}
	if err := c.do(ctx, http.MethodPatch, "/pages/"+pageID, reqBody, nil); err != nil {
		return fmt.Errorf("update task page: %w", err)
	}
	return nil
}

// CreateTaskPage creates a new task page with the done status. userID, when
// non-empty, is attached as the assignee.
func (c *Client) CreateTaskPage(ctx context.Context, title, description string, commit Commit, userID string) error {
	properties := map[string]any{
		c.props.Title:       titleValue(title),
		c.props.Status:      selectValue(c.props.DoneValue),
		c.props.CommitLink:  urlValue(commit.URL),
		c.props.Description: richText(description),
		c.props.Author:      richText(commit.Author),
	}
	if userID != "" {
		properties[c.props.Assignee] = peopleValue(userID)
	}

	reqBody := map[string]any{
		"parent":     map[string]any{"database_id": c.databaseID},
		"properties": properties,
	}
	if err := c.do(ctx, http.MethodPost, "/pages", reqBody, nil); err != nil {
		return fmt.Errorf("create task page: %w", err)
	}
	return nil
}

// ListUsers fetches the workspace user list.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var listResp struct {
		Results []User `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, "/users", nil, &listResp); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return listResp.Results, nil
}

// do issues one API call. Any non-2xx status is an error carrying the
// response body for the logs.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Notion-Version", c.version)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("call notion API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("notion API %s %s: status %d: %s", method, path, resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode notion response: %w", err)
		}
	}
	return nil
}
