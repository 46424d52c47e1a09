package stats

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	statsdto "studytracker/internal/modules/stats/dto"
	"studytracker/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type StatsPort interface {
	Today(ctx context.Context, includeArchived bool) (statsdto.ReportOutput, error)
	Total(ctx context.Context, includeArchived bool) (statsdto.ReportOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Today statsdto.ReportOutput
	Total statsdto.ReportOutput
	Err   error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port      StatsPort
	table     table.Model
	showTotal bool
	archived  bool
	today     statsdto.ReportOutput
	total     statsdto.ReportOutput
	err       error
	width     int
	height    int
}

func New(port StatsPort) Model {
	t := table.New(
		table.WithColumns(columns(40)),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Surface1).
		BorderBottom(true).
		Foreground(theme.Sapphire).
		Bold(true)
	styles.Selected = styles.Selected.Foreground(theme.Base).Background(theme.Lavender)
	t.SetStyles(styles)
	return Model{port: port, table: t}
}

func (m Model) Init() tea.Cmd {
	return m.Reload()
}

// Reload refetches both views so switching between them never stalls.
func (m Model) Reload() tea.Cmd {
	archived := m.archived
	return func() tea.Msg {
		ctx := context.Background()
		today, err := m.port.Today(ctx, archived)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		total, err := m.port.Total(ctx, archived)
		return LoadedMsg{Today: today, Total: total, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetColumns(columns(m.width - 30))
		m.table.SetHeight(max(3, m.height-6))

	case LoadedMsg:
		m.err = msg.Err
		if msg.Err == nil {
			m.today, m.total = msg.Today, msg.Total
			m.refreshRows()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "t":
			m.showTotal = !m.showTotal
			m.refreshRows()
			return m, nil
		case "a":
			m.archived = !m.archived
			return m, m.Reload()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	report := m.current()
	heading := "Today " + report.Day
	if m.showTotal {
		heading = "Total"
	}
	if m.archived {
		heading += theme.Muted.Render("  (archived included)")
	}
	footer := fmt.Sprintf("%d min  ·  %.1f h", report.TotalMinutes, report.TotalHours)
	if m.err != nil {
		footer = theme.Error.Render("stats: " + m.err.Error())
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render(heading),
		m.table.View(),
		footer,
		theme.Muted.Render("t: today/total  a: archived"),
	)
	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(body)
}

// ShowingTotal reports whether the Total view is selected.
func (m Model) ShowingTotal() bool { return m.showTotal }

// IncludeArchived toggles archived subjects and reloads.
func (m *Model) IncludeArchived(on bool) tea.Cmd {
	m.archived = on
	return m.Reload()
}

func (m Model) current() statsdto.ReportOutput {
	if m.showTotal {
		return m.total
	}
	return m.today
}

func (m *Model) refreshRows() {
	report := m.current()
	rows := make([]table.Row, 0, len(report.Rows))
	for _, r := range report.Rows {
		name := r.Name
		if r.Archived {
			name += " (archived)"
		}
		rows = append(rows, table.Row{name, fmt.Sprint(r.Minutes), fmt.Sprintf("%.1f", float64(r.Minutes)/60)})
	}
	m.table.SetRows(rows)
}

func columns(nameWidth int) []table.Column {
	if nameWidth < 12 {
		nameWidth = 12
	}
	return []table.Column{
		{Title: "Subject", Width: nameWidth},
		{Title: "Minutes", Width: 10},
		{Title: "Hours", Width: 8},
	}
}
