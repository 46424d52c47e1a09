package timer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "studytracker/internal/modules/session/dto"
	timerdto "studytracker/internal/modules/timer/dto"
	"studytracker/internal/ui/theme"
)

// Model renders the countdown. It holds no port; the app feeds it driver
// state and events.
type Model struct {
	bar       progress.Model
	state     timerdto.StateOutput
	subject   string
	minutes   int
	presets   []int
	lastStart sessiondto.LastStartOutput
	width     int
	height    int
}

func New(defaultMinutes int, presets []int) Model {
	bar := progress.New(progress.WithGradient(string(theme.Sapphire), string(theme.Green)))
	return Model{bar: bar, minutes: defaultMinutes, presets: presets}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
		m.bar.Width = min(60, max(10, m.width-8))
	}
	return m, nil
}

// SetState replaces the driver snapshot shown.
func (m *Model) SetState(state timerdto.StateOutput) { m.state = state }

// Apply folds a driver event into the view.
func (m *Model) Apply(event timerdto.Event) {
	if event.Kind == timerdto.EventTick {
		m.state = timerdto.StateOutput{Running: true, Countdown: event.Countdown, Progress: event.Progress}
		return
	}
	m.state = timerdto.StateOutput{}
}

func (m *Model) SetSubject(name string) { m.subject = name }

func (m *Model) SetLastStart(last sessiondto.LastStartOutput) { m.lastStart = last }

// Minutes is the duration the next start will request.
func (m Model) Minutes() int { return m.minutes }

// Preset selects presets[i]; out-of-range indexes are ignored.
func (m *Model) Preset(i int) {
	if i >= 0 && i < len(m.presets) {
		m.minutes = m.presets[i]
	}
}

// Adjust changes the requested minutes, never below one.
func (m *Model) Adjust(delta int) {
	m.minutes = max(1, m.minutes+delta)
}

func (m Model) Running() bool { return m.state.Running }

func (m Model) View() string {
	var sb strings.Builder
	if m.state.Running {
		c := m.state.Countdown
		sb.WriteString(theme.Hot.Render("● "+c.SubjectName) + "\n\n")
		sb.WriteString(theme.Clock.Render(m.state.Progress.Remaining) + "\n\n")
		sb.WriteString(m.bar.ViewAs(m.state.Progress.Fraction) + "\n\n")
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("started %s  ·  ends %s",
			c.StartTime.Format("15:04"), c.PlannedEndTime.Format("15:04"))) + "\n\n")
		sb.WriteString(theme.Muted.Render("e: end now"))
	} else {
		subject := m.subject
		if subject == "" {
			subject = theme.Muted.Render("select a subject on the Subjects tab")
		}
		sb.WriteString(theme.Title.Render("Idle") + "\n\n")
		sb.WriteString(theme.Muted.Render("subject  ") + subject + "\n")
		sb.WriteString(theme.Muted.Render("minutes  ") + fmt.Sprint(m.minutes) + "  " + m.renderPresets() + "\n")
		if m.lastStart.Available {
			sb.WriteString(theme.Muted.Render("last     ") +
				fmt.Sprintf("%s, %d min", m.lastStart.SubjectName, m.lastStart.Minutes) + "\n")
		}
		sb.WriteString("\n" + theme.Muted.Render("s: start  r: repeat last  1-9: preset  +/-: minutes"))
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		theme.Pane.Padding(1, 4).Render(sb.String()))
}

func (m Model) renderPresets() string {
	parts := make([]string, 0, len(m.presets))
	for i, p := range m.presets {
		label := fmt.Sprintf("%d:%d", i+1, p)
		if p == m.minutes {
			label = theme.Hot.Render(label)
		} else {
			label = theme.Muted.Render(label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " ")
}
