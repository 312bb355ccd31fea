package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- Styles ---

var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD"))

	statusOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	statusFailed = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	pushStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Padding(0, 1)
)

// --- Types ---

type webhookRow struct {
	ID          int64   `json:"id"`
	EventType   string  `json:"event_type"`
	Repository  string  `json:"repository"`
	Sender      *string `json:"sender"`
	Branch      *string `json:"branch"`
	CommitCount int     `json:"commit_count"`
	Payload     any     `json:"payload"`
	Timestamp   string  `json:"timestamp"`
}

type Model struct {
	serverURL string

	width  int
	height int

	records []webhookRow

	health struct {
		Status        string
		UptimeSeconds int64
		WebhookCount  int
	}

	hookTable table.Model
	viewport  viewport.Model

	lastErr error
}

type webhooksMsg []webhookRow
type healthMsg struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	WebhookCount  int    `json:"webhook_count"`
}
type errMsg error

// --- Init ---

func NewMonitor(serverURL string) *Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 5},
			{Title: "Time", Width: 19},
			{Title: "Event", Width: 14},
			{Title: "Repository", Width: 28},
			{Title: "Sender", Width: 16},
			{Title: "Branch", Width: 14},
			{Title: "Commits", Width: 7},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return &Model{
		serverURL: strings.TrimRight(serverURL, "/"),
		hookTable: t,
		viewport:  viewport.New(80, 10),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.pollWebhooks(),
		m.pollHealth(),
		tea.EnterAltScreen,
	)
}

// --- Update ---

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.pollWebhooks()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.hookTable.SetWidth(m.width - 6)
		m.viewport.Width = m.width - 6
		m.viewport.Height = m.height / 3

	case webhooksMsg:
		m.records = msg
		m.lastErr = nil
		m.updateTable()
		m.updatePayloadView()
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return m.fetchWebhooks()
		})

	case healthMsg:
		m.health.Status = msg.Status
		m.health.UptimeSeconds = msg.UptimeSeconds
		m.health.WebhookCount = msg.WebhookCount
		return m, tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
			return m.fetchHealth()
		})

	case errMsg:
		m.lastErr = msg
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return m.fetchWebhooks()
		})
	}

	prev := m.hookTable.Cursor()
	m.hookTable, cmd = m.hookTable.Update(msg)
	if m.hookTable.Cursor() != prev {
		m.updatePayloadView()
	}
	return m, cmd
}

func (m *Model) updateTable() {
	rows := make([]table.Row, 0, len(m.records))
	for _, r := range m.records {
		sender := "-"
		if r.Sender != nil {
			sender = *r.Sender
		}
		branch := "-"
		if r.Branch != nil {
			branch = *r.Branch
		}

		ts := r.Timestamp
		if parsed, err := time.Parse(time.RFC3339Nano, r.Timestamp); err == nil {
			ts = parsed.Local().Format("2006-01-02 15:04:05")
		}

		event := r.EventType
		if event == "push" {
			event = pushStyle.Render(event)
		}

		rows = append(rows, table.Row{
			fmt.Sprintf("%d", r.ID),
			ts,
			event,
			r.Repository,
			sender,
			branch,
			fmt.Sprintf("%d", r.CommitCount),
		})
	}
	m.hookTable.SetRows(rows)
}

func (m *Model) updatePayloadView() {
	idx := m.hookTable.Cursor()
	if idx < 0 || idx >= len(m.records) {
		m.viewport.SetContent("No webhook selected.")
		return
	}

	r := m.records[idx]
	if r.Payload == nil {
		m.viewport.SetContent("Payload could not be decoded.")
		return
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.Payload); err != nil {
		m.viewport.SetContent(fmt.Sprintf("render payload: %v", err))
		return
	}
	m.viewport.SetContent(buf.String())
}

// --- View ---

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	header := m.renderHeader()
	hooks := borderStyle.Width(m.width - 4).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Webhooks"),
			m.hookTable.View(),
		),
	)

	payload := borderStyle.Width(m.width - 4).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Payload"),
			m.viewport.View(),
		),
	)

	help := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(" [q] Quit • [r] Refresh • [↑/↓] Select")
	if m.lastErr != nil {
		help += statusFailed.Render(fmt.Sprintf("  error: %v", m.lastErr))
	}

	return docStyle.Render(
		lipgloss.JoinVertical(
			lipgloss.Left,
			header,
			hooks,
			payload,
			help,
		),
	)
}

func (m Model) renderHeader() string {
	status := statusOK.Render("RUNNING")
	if m.health.Status != "ok" && m.health.Status != "" {
		status = statusFailed.Render("DEGRADED")
	}

	uptime := time.Duration(m.health.UptimeSeconds) * time.Second

	items := []string{
		fmt.Sprintf("Status: %s", status),
		fmt.Sprintf("Uptime: %s", uptime.String()),
		fmt.Sprintf("Webhooks: %d", m.health.WebhookCount),
		fmt.Sprintf("Server: %s", m.serverURL),
	}

	return borderStyle.Width(m.width - 4).Render(
		lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width((m.width-4)/4).Render(items[0]),
			lipgloss.NewStyle().Width((m.width-4)/4).Render(items[1]),
			lipgloss.NewStyle().Width((m.width-4)/4).Render(items[2]),
			lipgloss.NewStyle().Width((m.width-4)/4).Render(items[3]),
		),
	)
}

// --- Commands ---

func (m Model) pollWebhooks() tea.Cmd {
	return func() tea.Msg {
		return m.fetchWebhooks()
	}
}

func (m Model) fetchWebhooks() tea.Msg {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(m.serverURL + "/api/webhooks?limit=30")
	if err != nil {
		return errMsg(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errMsg(fmt.Errorf("list webhooks: status %d", resp.StatusCode))
	}

	var rows []webhookRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return errMsg(err)
	}
	return webhooksMsg(rows)
}

func (m Model) pollHealth() tea.Cmd {
	return func() tea.Msg {
		return m.fetchHealth()
	}
}

func (m Model) fetchHealth() tea.Msg {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(m.serverURL + "/healthz")
	if err != nil {
		return errMsg(err)
	}
	defer resp.Body.Close()

	var h healthMsg
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return errMsg(err)
	}
	return h
}
