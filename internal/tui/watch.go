// Package tui implements the watch view: a live terminal dashboard over a
// deliberation session's archived record. The view is strictly read-only;
// it re-reads the record on a timer and never takes the session lock.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/warroom-dev/warroom/internal/orchestrator"
	"github.com/warroom-dev/warroom/internal/session"
)

const pollInterval = 500 * time.Millisecond

// App wraps the Bubbletea program.
type App struct {
	model Model
}

// New creates a watch application over one session in the archive.
func New(archive *session.Store, sessionID string) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = runningStyle

	return &App{
		model: Model{
			archive:   archive,
			sessionID: sessionID,
			spinner:   sp,
		},
	}
}

// Run starts the watch view and blocks until the user quits.
func (a *App) Run() error {
	program := tea.NewProgram(a.model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// Model is the Bubbletea model for the watch view.
type Model struct {
	archive   *session.Store
	sessionID string

	record  *session.Record
	loadErr error

	spinner  spinner.Model
	viewport viewport.Model
	ready    bool
	width    int
	height   int
}

type recordMsg struct {
	record *session.Record
	err    error
}

type pollMsg time.Time

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.spinner.Tick)
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		record, err := m.archive.Load(m.sessionID)
		return recordMsg{record: record, err: err}
	}
}

func poll() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 4
		footerHeight := 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.viewport.SetContent(m.renderBody())
		return m, nil

	case recordMsg:
		m.record = msg.record
		m.loadErr = msg.err
		if m.ready {
			m.viewport.SetContent(m.renderBody())
		}
		if m.record != nil && m.record.Closed() {
			// Terminal state: stop polling, keep the view up.
			return m, nil
		}
		return m, poll()

	case pollMsg:
		return m, m.load()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var header strings.Builder
	header.WriteString(titleStyle.Render("warroom watch"))
	header.WriteString("  ")
	header.WriteString(mutedStyle.Render(m.sessionID))
	header.WriteString("\n")

	switch {
	case m.loadErr != nil:
		header.WriteString(failedStyle.Render(fmt.Sprintf("error: %v", m.loadErr)))
	case m.record == nil:
		header.WriteString(m.spinner.View() + " loading session")
	default:
		status := statusStyle(string(m.record.Status)).Render(string(m.record.Status))
		line := fmt.Sprintf("%s  phase: %s", status, m.record.CurrentPhase)
		if !m.record.Closed() {
			line = m.spinner.View() + " " + line
		}
		header.WriteString(line)
	}
	header.WriteString("\n\n")

	footer := footerStyle.Width(m.width).Render("q quit · ↑/↓ scroll")
	return header.String() + m.viewport.View() + "\n" + footer
}

func (m Model) renderBody() string {
	if m.record == nil {
		return ""
	}
	record := m.record
	summary := orchestrator.SummarizeRecord(record)

	var b strings.Builder
	b.WriteString(headerStyle.Render("Problem"))
	fmt.Fprintf(&b, "\n%s\n\n", record.Problem)

	b.WriteString(headerStyle.Render("Phases"))
	b.WriteString("\n")
	for _, p := range summary.Phases {
		dot := statusStyle(p.Status).Render("●")
		fmt.Fprintf(&b, "%s %-18s %s", dot, p.Phase, p.Status)
		if p.Abstentions > 0 {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d abstained", p.Abstentions)))
		}
		b.WriteString("\n")
	}

	contributions := contributionLines(record)
	if len(contributions) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Contributions"))
		b.WriteString("\n")
		for _, line := range contributions {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if record.FinalDecision != nil {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Decision"))
		fmt.Fprintf(&b, "\n%s\n", record.FinalDecision.SelectedApproach)
		b.WriteString(mutedStyle.Render(fmt.Sprintf("root %s", record.MerkleDAG.RootHash)))
		b.WriteString("\n")
	}
	if record.FailureReason != "" {
		b.WriteString("\n")
		b.WriteString(failedStyle.Render("Failure: " + record.FailureReason))
		b.WriteString("\n")
	}
	return b.String()
}

// contributionLines lists DAG nodes newest-last. While the session is
// sealed the archived nodes carry labels only, so the watch view can never
// leak an expert identity mid-deliberation.
func contributionLines(record *session.Record) []string {
	type entry struct {
		ts   time.Time
		line string
	}
	var entries []entry
	for _, n := range record.MerkleDAG.Nodes {
		who := labelStyle.Render(n.AnonymousLabel)
		if record.MerkleDAG.Unsealed && n.ExpertRole != "" {
			who += mutedStyle.Render(fmt.Sprintf(" (%s/%s)", n.ExpertRole, n.ExpertModel))
		}
		excerpt := n.Content
		if idx := strings.IndexAny(excerpt, "\r\n"); idx >= 0 {
			excerpt = excerpt[:idx]
		}
		if len(excerpt) > 80 {
			excerpt = excerpt[:77] + "..."
		}
		entries = append(entries, entry{
			ts:   n.Timestamp,
			line: fmt.Sprintf("%s %s %s", who, mutedStyle.Render("["+n.Phase+"]"), excerpt),
		})
	}
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].ts.Before(entries[j-1].ts); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.line
	}
	return lines
}
