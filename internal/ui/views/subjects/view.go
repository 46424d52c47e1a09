package subjects

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	subjectdto "studytracker/internal/modules/subject/dto"
	"studytracker/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type SubjectPort interface {
	List(ctx context.Context, includeArchived bool) ([]subjectdto.SubjectOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Subjects []subjectdto.SubjectOutput
	Err      error
}

// ─── list item ───────────────────────────────────────────────────────────────

type subjectItem struct {
	subject subjectdto.SubjectOutput
}

func (i subjectItem) Title() string { return i.subject.Name }
func (i subjectItem) Description() string {
	if i.subject.Archived {
		return fmt.Sprintf("#%d  archived", i.subject.ID)
	}
	return fmt.Sprintf("#%d", i.subject.ID)
}
func (i subjectItem) FilterValue() string { return i.subject.Name }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    SubjectPort
	list    list.Model
	spinner spinner.Model
	loading bool
	// keep selects this id once the next load lands.
	keep   int64
	width  int
	height int
}

func New(port SubjectPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Subjects"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, list: l, spinner: sp, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Reload refetches the visible subjects.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		subjects, err := m.port.List(context.Background(), false)
		return LoadedMsg{Subjects: subjects, Err: err}
	}
}

// Keep asks the next load to select id.
func (m *Model) Keep(id int64) { m.keep = id }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width*5/10, m.height)

	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Subjects: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Subjects"
		current, _ := m.Selected()
		want := current.ID
		if m.keep != 0 {
			want, m.keep = m.keep, 0
		}
		items := make([]list.Item, len(msg.Subjects))
		selected := 0
		for i, s := range msg.Subjects {
			items[i] = subjectItem{subject: s}
			if s.ID == want {
				selected = i
			}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.list.Select(selected)
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading subjects…")
	}
	listW := m.width * 5 / 10
	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	detailPane := theme.Pane.
		Width(m.width - listW - 4).
		Height(m.height - 4).
		Render(m.renderDetail())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Selected returns the highlighted subject, if any.
func (m Model) Selected() (subjectdto.SubjectOutput, bool) {
	if item, ok := m.list.SelectedItem().(subjectItem); ok {
		return item.subject, true
	}
	return subjectdto.SubjectOutput{}, false
}

// Filtering reports whether the list's search filter is open.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) renderDetail() string {
	s, ok := m.Selected()
	if !ok {
		return theme.Muted.Render("No subjects yet. Add one with :subject:add <name>")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(s.Name) + "\n\n")
	sb.WriteString(theme.Muted.Render("id: ") + fmt.Sprint(s.ID) + "\n\n")
	sb.WriteString(theme.Muted.Render("s        start a session\n"))
	sb.WriteString(theme.Muted.Render(":subject:rename <name>\n"))
	sb.WriteString(theme.Muted.Render(":subject:delete [keep|cascade|archive]\n"))
	sb.WriteString(theme.Muted.Render(":reset:subject"))
	return sb.String()
}
