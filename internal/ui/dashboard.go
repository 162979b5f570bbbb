// Package ui is the live dashboard shown while the fleet runs: one row per
// execution with status and elapsed time, a scrollable viewport with the
// multiplexed adapter output, and a resource header. The dashboard is a
// read-only mirror; the authoritative output always lands in the log sinks.
package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ditto-examples/testfleet/internal/orchestrator"
)

const maxRowLogLines = 1000

// Row is the dashboard's view of one execution.
type Row struct {
	Name     string
	Platform string

	mu        sync.RWMutex
	status    orchestrator.Status
	startedAt time.Time
	logs      []string
}

func NewRow(name, platform string) *Row {
	return &Row{
		Name:     name,
		Platform: platform,
		status:   orchestrator.StatusPending,
		logs:     make([]string, 0, maxRowLogLines),
	}
}

// AppendLog adds a log line, keeping the last maxRowLogLines.
func (r *Row) AppendLog(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.logs) >= maxRowLogLines {
		r.logs = r.logs[1:]
	}
	r.logs = append(r.logs, line)
}

// Logs returns a copy of the buffered lines.
func (r *Row) Logs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.logs))
	copy(out, r.logs)
	return out
}

func (r *Row) SetStatus(s orchestrator.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = s
	if s == orchestrator.StatusRunning && r.startedAt.IsZero() {
		r.startedAt = time.Now()
	}
}

func (r *Row) Status() orchestrator.Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

func (r *Row) elapsed() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.startedAt.IsZero() {
		return 0
	}
	return time.Since(r.startedAt)
}

// ResourceStats holds the system stats shown in the header.
type ResourceStats struct {
	CPUPercent  float64
	MemoryUsed  uint64
	MemoryTotal uint64
	MemPercent  float64
}

// Messages for bubbletea.
type tickMsg time.Time
type resourceUpdateMsg ResourceStats
type statusMsg struct {
	index  int
	status orchestrator.Status
}
type logMsg struct {
	index int
	line  string
}
type doneMsg struct{}

// Model is the bubbletea model for the dashboard.
type Model struct {
	rows      []*Row
	resources ResourceStats

	width    int
	height   int
	viewport viewport.Model
	showHelp bool
	quitting bool

	// cancel aborts the run when the user quits mid-flight.
	cancel context.CancelFunc

	updates chan tea.Msg

	keys   keyMap
	styles *Styles
}

type keyMap struct {
	Up   key.Binding
	Down key.Binding
	Help key.Binding
	Quit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "abort run"),
		),
	}
}

// Styles holds the lipgloss styles for the dashboard.
type Styles struct {
	Header lipgloss.Style
	Footer lipgloss.Style

	RowList lipgloss.Style

	StatusPending   lipgloss.Style
	StatusRunning   lipgloss.Style
	StatusSucceeded lipgloss.Style
	StatusFailed    lipgloss.Style
	StatusStopped   lipgloss.Style

	LogViewport lipgloss.Style
	LogLine     lipgloss.Style

	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
}

// DefaultStyles returns the default color scheme.
func DefaultStyles() *Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#666", Dark: "#999"}
	highlight := lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#AD8EE6"}
	success := lipgloss.AdaptiveColor{Light: "#00AA00", Dark: "#00FF00"}
	warning := lipgloss.AdaptiveColor{Light: "#AAAA00", Dark: "#FFFF00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#AA0000", Dark: "#FF0000"}
	info := lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#00AAFF"}

	return &Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(highlight).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(subtle).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(subtle).
			Padding(0, 1),

		RowList: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 1),

		StatusPending:   lipgloss.NewStyle().Foreground(subtle),
		StatusRunning:   lipgloss.NewStyle().Foreground(info).Bold(true),
		StatusSucceeded: lipgloss.NewStyle().Foreground(success),
		StatusFailed:    lipgloss.NewStyle().Foreground(errorColor).Bold(true),
		StatusStopped:   lipgloss.NewStyle().Foreground(warning),

		LogViewport: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 1),

		LogLine: lipgloss.NewStyle().Foreground(subtle),

		HelpKey:  lipgloss.NewStyle().Foreground(highlight).Bold(true),
		HelpDesc: lipgloss.NewStyle().Foreground(subtle),
	}
}

// NewModel creates the dashboard model. cancel is invoked when the user
// aborts; it must be safe to call more than once.
func NewModel(rows []*Row, cancel context.CancelFunc) *Model {
	vp := viewport.New(80, 20)
	vp.SetContent("")
	vp.MouseWheelEnabled = true

	return &Model{
		rows:     rows,
		viewport: vp,
		cancel:   cancel,
		updates:  make(chan tea.Msg, 256),
		keys:     defaultKeyMap(),
		styles:   DefaultStyles(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.listenForUpdates())
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) listenForUpdates() tea.Cmd {
	return func() tea.Msg {
		return <-m.updates
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - len(m.rows) - 9
		if m.viewport.Height < 5 {
			m.viewport.Height = 5
		}
		m.refreshViewport()

	case tickMsg:
		cmds = append(cmds, tickCmd(), fetchResourceStats)
		m.refreshViewport()

	case resourceUpdateMsg:
		m.resources = ResourceStats(msg)

	case statusMsg:
		if msg.index >= 0 && msg.index < len(m.rows) {
			m.rows[msg.index].SetStatus(msg.status)
		}
		cmds = append(cmds, m.listenForUpdates())

	case logMsg:
		if msg.index >= 0 && msg.index < len(m.rows) {
			m.rows[msg.index].AppendLog(msg.line)
			m.refreshViewport()
		}
		cmds = append(cmds, m.listenForUpdates())

	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, tea.Batch(cmds...)
}

func fetchResourceStats() tea.Msg {
	return resourceUpdateMsg(GetResourceStats())
}

// refreshViewport rebuilds the multiplexed log content, preserving scroll
// position unless the user was already at the bottom.
func (m *Model) refreshViewport() {
	var lines []string
	for _, r := range m.rows {
		logs := r.Logs()
		if len(logs) == 0 {
			continue
		}
		lines = append(lines, m.renderStatus(r.Status())+" "+r.Name)
		width := m.width - 8
		if width < 20 {
			width = 20
		}
		for _, l := range logs {
			if len(l) > width {
				l = l[:width-3] + "..."
			}
			lines = append(lines, m.styles.LogLine.Render("  "+l))
		}
		lines = append(lines, "")
	}

	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(strings.Join(lines, "\n"))
	if atBottom {
		m.viewport.GotoBottom()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderRows())
	b.WriteString("\n")
	b.WriteString(m.styles.LogViewport.Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderHeader() string {
	title := "🚢 testfleet"

	running := 0
	terminal := 0
	for _, r := range m.rows {
		switch r.Status() {
		case orchestrator.StatusRunning:
			running++
		case orchestrator.StatusSucceeded, orchestrator.StatusFailed,
			orchestrator.StatusCancelled, orchestrator.StatusTimedOut:
			terminal++
		}
	}

	status := fmt.Sprintf("%d/%d done | %d running", terminal, len(m.rows), running)
	if m.resources.CPUPercent > 0 {
		status += fmt.Sprintf(" | CPU %.0f%%", m.resources.CPUPercent)
	}
	if m.resources.MemPercent > 0 {
		status += fmt.Sprintf(" | Mem %s/%s",
			FormatBytes(m.resources.MemoryUsed), FormatBytes(m.resources.MemoryTotal))
	}

	width := m.width - 4
	if width < 40 {
		width = 40
	}
	padding := width - lipgloss.Width(title) - lipgloss.Width(status)
	if padding < 1 {
		padding = 1
	}
	return m.styles.Header.Width(width).Render(title + strings.Repeat(" ", padding) + status)
}

func (m *Model) renderRows() string {
	width := m.width - 6
	if width < 60 {
		width = 60
	}

	items := make([]string, 0, len(m.rows))
	for _, r := range m.rows {
		name := r.Name
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		elapsed := ""
		if r.Status() == orchestrator.StatusRunning {
			elapsed = " " + r.elapsed().Round(time.Second).String()
		}
		items = append(items, fmt.Sprintf("%-30s  %s%s  %s",
			name, m.renderStatus(r.Status()), elapsed,
			m.styles.HelpDesc.Render("("+r.Platform+")")))
	}
	return m.styles.RowList.Width(width).Render(strings.Join(items, "\n"))
}

func (m *Model) renderStatus(s orchestrator.Status) string {
	switch s {
	case orchestrator.StatusRunning:
		return m.styles.StatusRunning.Render("● running")
	case orchestrator.StatusSucceeded:
		return m.styles.StatusSucceeded.Render("✓ passed")
	case orchestrator.StatusFailed:
		return m.styles.StatusFailed.Render("✗ failed")
	case orchestrator.StatusCancelled:
		return m.styles.StatusStopped.Render("○ cancelled")
	case orchestrator.StatusTimedOut:
		return m.styles.StatusFailed.Render("○ timed out")
	default:
		return m.styles.StatusPending.Render("◌ pending")
	}
}

func (m *Model) renderFooter() string {
	if m.showHelp {
		return m.styles.Footer.Render(fmt.Sprintf("%s scroll • %s help • %s abort run",
			m.styles.HelpKey.Render("↑↓/jk"),
			m.styles.HelpKey.Render("?"),
			m.styles.HelpKey.Render("q")))
	}
	return m.styles.Footer.Render(fmt.Sprintf("%s help • %s abort",
		m.styles.HelpKey.Render("?"), m.styles.HelpKey.Render("q")))
}

// SendStatus forwards an execution status change to the dashboard. Drops
// the update if the queue is full rather than blocking the monitor.
func (m *Model) SendStatus(index int, status orchestrator.Status) {
	select {
	case m.updates <- statusMsg{index: index, status: status}:
	default:
	}
}

// SendLog forwards one log line to the dashboard.
func (m *Model) SendLog(index int, line string) {
	select {
	case m.updates <- logMsg{index: index, line: line}:
	default:
	}
}

// SendDone tells the dashboard the run has finished.
func (m *Model) SendDone() {
	select {
	case m.updates <- doneMsg{}:
	default:
	}
}
