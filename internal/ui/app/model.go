package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	backupdto "studytracker/internal/modules/backup/dto"
	sessiondto "studytracker/internal/modules/session/dto"
	statsdto "studytracker/internal/modules/stats/dto"
	subjectdto "studytracker/internal/modules/subject/dto"
	timerdto "studytracker/internal/modules/timer/dto"
	apperrors "studytracker/internal/platform/errors"
	"studytracker/internal/ui/components"
	"studytracker/internal/ui/theme"
	statsview "studytracker/internal/ui/views/stats"
	subjectsview "studytracker/internal/ui/views/subjects"
	timerview "studytracker/internal/ui/views/timer"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type SubjectPort interface {
	Add(ctx context.Context, name string) (subjectdto.SubjectOutput, error)
	List(ctx context.Context, includeArchived bool) ([]subjectdto.SubjectOutput, error)
	Rename(ctx context.Context, id int64, name string) (subjectdto.SubjectOutput, error)
	Delete(ctx context.Context, id int64, policy string) (subjectdto.DeleteOutput, error)
}

type SessionPort interface {
	LastStart(ctx context.Context) (sessiondto.LastStartOutput, error)
	ResetToday(ctx context.Context) (sessiondto.ResetOutput, error)
	ResetAll(ctx context.Context) (sessiondto.ResetOutput, error)
	ResetSubject(ctx context.Context, subjectID int64) (sessiondto.ResetOutput, error)
}

type StatsPort interface {
	Today(ctx context.Context, includeArchived bool) (statsdto.ReportOutput, error)
	Total(ctx context.Context, includeArchived bool) (statsdto.ReportOutput, error)
}

type BackupPort interface {
	ExportTo(ctx context.Context, path string) (string, backupdto.ExportOutput, error)
	ImportFrom(ctx context.Context, path string) (backupdto.ImportOutput, error)
}

type TimerPort interface {
	Begin(ctx context.Context, subjectID int64, minutes float64) (timerdto.StateOutput, error)
	Repeat(ctx context.Context) (timerdto.StateOutput, error)
	Resume(ctx context.Context) (timerdto.StateOutput, error)
	EndNow(ctx context.Context) (timerdto.CompletionOutput, error)
	Watch(buffer int) <-chan timerdto.Event
}

type Ports struct {
	Subjects SubjectPort
	Sessions SessionPort
	Stats    StatsPort
	Backup   BackupPort
	Timer    TimerPort
}

type Settings struct {
	DefaultMinutes int
	Presets        []int
	DeletePolicy   string
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabTimer tabID = iota
	tabSubjects
	tabStats
	tabCount
)

var tabLabels = [tabCount]string{"Timer", "Subjects", "Stats"}

// ─── async messages ──────────────────────────────────────────────────────────

type timerEventMsg struct{ event timerdto.Event }

type timerStateMsg struct {
	state timerdto.StateOutput
	err   error
	// verb names the action for the status line; empty on recovery.
	verb string
}

type lastStartMsg struct{ last sessiondto.LastStartOutput }

type endedMsg struct {
	out timerdto.CompletionOutput
	err error
}

// doneMsg reports a palette action that changed stored data.
type doneMsg struct {
	status string
	err    error
	keep   int64
}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Start   key.Binding
	End     key.Binding
	Repeat  key.Binding
	Preset  key.Binding
	Minutes key.Binding
	Stats   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Start:   key.NewBinding(key.WithKeys("s", "enter"), key.WithHelp("s", "start session")),
		End:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end now")),
		Repeat:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repeat last")),
		Preset:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "preset")),
		Minutes: key.NewBinding(key.WithKeys("+", "-"), key.WithHelp("+/-", "minutes")),
		Stats:   key.NewBinding(key.WithKeys("t", "a"), key.WithHelp("t/a", "today·total / archived")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.End, k.Repeat},
		{k.Preset, k.Minutes, k.Stats},
		{k.Tab, k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the countdown
// event feed, the help overlay and the command palette.
type Model struct {
	ports    Ports
	settings Settings
	events   <-chan timerdto.Event

	timerView    timerview.Model
	subjectsView subjectsview.Model
	statsView    statsview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	failed    bool
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

// NewModel subscribes to countdown events; it must be built once per program.
func NewModel(ports Ports, settings Settings) Model {
	return Model{
		ports:        ports,
		settings:     settings,
		events:       ports.Timer.Watch(16),
		timerView:    timerview.New(settings.DefaultMinutes, settings.Presets),
		subjectsView: subjectsview.New(ports.Subjects),
		statsView:    statsview.New(ports.Stats),
		activeTab:    tabTimer,
		keys:         defaultKeys(),
		help:         help.New(),
		palette:      components.NewPalette(),
		status:       "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.subjectsView.Init(),
		m.statsView.Init(),
		m.resumeCmd(),
		m.lastStartCmd(),
		m.waitEventCmd(),
	)
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Countdown events arrive regardless of palette or help state.
	if ev, ok := msg.(timerEventMsg); ok {
		return m.applyEvent(ev.event)
	}

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case timerStateMsg:
		if msg.err != nil {
			m.setError(msg.verb, msg.err)
			return m, nil
		}
		m.timerView.SetState(msg.state)
		if msg.state.Running {
			c := msg.state.Countdown
			switch msg.verb {
			case "":
				m.setStatus("resumed: " + c.SubjectName)
			default:
				m.setStatus(fmt.Sprintf("%s: %s until %s", msg.verb, c.SubjectName, c.PlannedEndTime.Format("15:04")))
			}
			m.activeTab = tabTimer
		}
		return m, m.lastStartCmd()

	case lastStartMsg:
		m.timerView.SetLastStart(msg.last)
		return m, nil

	case endedMsg:
		if msg.err != nil {
			m.setError("end", msg.err)
		}
		return m, nil

	case doneMsg:
		if msg.err != nil {
			m.setError("", msg.err)
			return m, nil
		}
		m.setStatus(msg.status)
		if msg.keep != 0 {
			m.subjectsView.Keep(msg.keep)
		}
		return m, tea.Batch(m.subjectsView.Reload(), m.statsView.Reload(), m.resumeCmd(), m.lastStartCmd())

	case subjectsview.LoadedMsg:
		var cmd tea.Cmd
		m.subjectsView, cmd = m.subjectsView.Update(msg)
		m.syncSelection()
		return m, cmd

	case statsview.LoadedMsg:
		var cmd tea.Cmd
		m.statsView, cmd = m.statsView.Update(msg)
		return m, cmd

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.setStatus("ready")
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to the subject list while its filter is being typed.
		if m.activeTab == tabSubjects && m.subjectsView.Filtering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			cmd := m.palette.Open()
			return m, cmd
		case "s", "enter":
			if m.activeTab != tabStats {
				return m, m.beginCmd(float64(m.timerView.Minutes()))
			}
		case "e":
			if m.timerView.Running() {
				return m, m.endCmd()
			}
		case "r":
			if m.activeTab != tabStats {
				return m, m.repeatCmd()
			}
		case "+", "=":
			if m.activeTab == tabTimer {
				m.timerView.Adjust(1)
				return m, nil
			}
		case "-":
			if m.activeTab == tabTimer {
				m.timerView.Adjust(-1)
				return m, nil
			}
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			if m.activeTab == tabTimer {
				m.timerView.Preset(int(msg.String()[0] - '1'))
				return m, nil
			}
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabTimer:
		m.timerView, tabCmd = m.timerView.Update(msg)
	case tabSubjects:
		m.subjectsView, tabCmd = m.subjectsView.Update(msg)
		m.syncSelection()
	case tabStats:
		m.statsView, tabCmd = m.statsView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	// Spinner ticks belong to the subject list even when it is hidden.
	if _, ok := msg.(tea.KeyMsg); !ok && m.activeTab != tabSubjects {
		var cmd tea.Cmd
		m.subjectsView, cmd = m.subjectsView.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) applyEvent(ev timerdto.Event) (tea.Model, tea.Cmd) {
	m.timerView.Apply(ev)
	next := m.waitEventCmd()
	switch ev.Kind {
	case timerdto.EventTick:
		return m, next
	case timerdto.EventCompleted:
		m.setStatus(fmt.Sprintf("completed: %s, %d min", ev.Completion.SubjectName, ev.Completion.DurationMin))
	case timerdto.EventStopped:
		if ev.Completion.SessionID != 0 {
			m.setStatus(fmt.Sprintf("ended: %s, %d min", ev.Completion.SubjectName, ev.Completion.DurationMin))
		} else {
			m.setStatus("session ended elsewhere")
		}
	case timerdto.EventError:
		m.setError("timer", ev.Err)
	}
	return m, tea.Batch(next, m.statsView.Reload(), m.lastStartCmd())
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabTimer:
		return m.timerView.View()
	case tabSubjects:
		return m.subjectsView.View()
	case tabStats:
		return m.statsView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := " " + tabLabels[i] + " "
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(label)
		} else {
			parts[i] = theme.Muted.Render(label)
		}
	}
	bar := "studytracker  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.failed {
		left = theme.Error.Render(left)
	}
	if m.timerView.Running() {
		left = theme.Hot.Render("●") + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ───────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}
	rest := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))
	selected, hasSelected := m.subjectsView.Selected()

	switch parts[0] {
	case "subject:add":
		if rest == "" {
			m.setStatus("usage: subject:add <name>")
			return m, nil
		}
		return m, m.addSubjectCmd(rest)

	case "subject:rename":
		if !hasSelected || rest == "" {
			m.setStatus("usage: subject:rename <name> (on the selected subject)")
			return m, nil
		}
		return m, m.renameSubjectCmd(selected.ID, rest)

	case "subject:delete":
		if !hasSelected {
			m.setStatus("no subject selected")
			return m, nil
		}
		policy := rest
		if policy == "" {
			policy = m.settings.DeletePolicy
		}
		return m, m.deleteSubjectCmd(selected, policy)

	case "session:start":
		minutes := float64(m.timerView.Minutes())
		if rest != "" {
			v, err := strconv.ParseFloat(rest, 64)
			if err != nil {
				m.setStatus("invalid minutes: " + rest)
				return m, nil
			}
			minutes = v
		}
		return m, m.beginCmd(minutes)

	case "session:end":
		return m, m.endCmd()

	case "session:repeat":
		return m, m.repeatCmd()

	case "reset:today":
		return m, m.resetCmd("today", m.ports.Sessions.ResetToday)

	case "reset:all":
		return m, m.resetCmd("all", m.ports.Sessions.ResetAll)

	case "reset:subject":
		if !hasSelected {
			m.setStatus("no subject selected")
			return m, nil
		}
		return m, m.resetCmd(selected.Name, func(ctx context.Context) (sessiondto.ResetOutput, error) {
			return m.ports.Sessions.ResetSubject(ctx, selected.ID)
		})

	case "stats:archived":
		on := rest != "off"
		m.activeTab = tabStats
		m.setStatus(fmt.Sprintf("archived subjects in stats: %t", on))
		cmd := m.statsView.IncludeArchived(on)
		return m, cmd

	case "backup:export":
		return m, m.exportCmd(rest)

	case "backup:import":
		if rest == "" {
			m.setStatus("usage: backup:import <path>")
			return m, nil
		}
		return m, m.importCmd(rest)

	default:
		m.setStatus("unknown command: " + parts[0])
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) setStatus(s string) {
	m.status = s
	m.failed = false
}

func (m *Model) setError(verb string, err error) {
	msg := err.Error()
	switch {
	case errors.Is(err, apperrors.ErrNoActiveSession):
		msg = "no active session"
	case errors.Is(err, apperrors.ErrActiveSessionExists):
		msg = "a session is already running"
	case errors.Is(err, apperrors.ErrMissingSelection):
		msg = "no subject selected"
	}
	if verb != "" {
		msg = verb + ": " + msg
	}
	m.status = msg
	m.failed = true
}

func (m *Model) syncSelection() {
	if s, ok := m.subjectsView.Selected(); ok {
		m.timerView.SetSubject(s.Name)
	} else {
		m.timerView.SetSubject("")
	}
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.timerView, _ = m.timerView.Update(sz)
	m.subjectsView, _ = m.subjectsView.Update(sz)
	m.statsView, _ = m.statsView.Update(sz)
}

// ─── async commands ──────────────────────────────────────────────────────────

// waitEventCmd blocks for the next countdown event. It is re-armed after
// every delivered event.
func (m Model) waitEventCmd() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return timerEventMsg{event: ev}
	}
}

func (m Model) resumeCmd() tea.Cmd {
	return func() tea.Msg {
		state, err := m.ports.Timer.Resume(context.Background())
		return timerStateMsg{state: state, err: err}
	}
}

func (m Model) lastStartCmd() tea.Cmd {
	return func() tea.Msg {
		last, err := m.ports.Sessions.LastStart(context.Background())
		if err != nil {
			return nil
		}
		return lastStartMsg{last: last}
	}
}

func (m Model) beginCmd(minutes float64) tea.Cmd {
	selected, ok := m.subjectsView.Selected()
	if !ok {
		return func() tea.Msg {
			return timerStateMsg{verb: "start", err: apperrors.ErrMissingSelection}
		}
	}
	return func() tea.Msg {
		state, err := m.ports.Timer.Begin(context.Background(), selected.ID, minutes)
		return timerStateMsg{state: state, err: err, verb: "started"}
	}
}

func (m Model) repeatCmd() tea.Cmd {
	return func() tea.Msg {
		state, err := m.ports.Timer.Repeat(context.Background())
		return timerStateMsg{state: state, err: err, verb: "repeated"}
	}
}

func (m Model) endCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.ports.Timer.EndNow(context.Background())
		return endedMsg{out: out, err: err}
	}
}

func (m Model) addSubjectCmd(name string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.ports.Subjects.Add(context.Background(), name)
		return doneMsg{status: "added subject " + out.Name, err: err, keep: out.ID}
	}
}

func (m Model) renameSubjectCmd(id int64, name string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.ports.Subjects.Rename(context.Background(), id, name)
		return doneMsg{status: "renamed to " + out.Name, err: err, keep: out.ID}
	}
}

func (m Model) deleteSubjectCmd(subject subjectdto.SubjectOutput, policy string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.ports.Subjects.Delete(context.Background(), subject.ID, policy)
		if err != nil {
			return doneMsg{err: err}
		}
		status := fmt.Sprintf("deleted %s (%s)", out.Name, out.Policy)
		if out.SessionsDeleted > 0 {
			status += fmt.Sprintf(", %d sessions removed", out.SessionsDeleted)
		}
		return doneMsg{status: status}
	}
}

func (m Model) resetCmd(scope string, reset func(context.Context) (sessiondto.ResetOutput, error)) tea.Cmd {
	return func() tea.Msg {
		out, err := reset(context.Background())
		if err != nil {
			return doneMsg{err: err}
		}
		status := fmt.Sprintf("reset %s: %d sessions deleted", scope, out.Deleted)
		if out.EndedActive {
			status += ", running session ended first"
		}
		return doneMsg{status: status}
	}
}

func (m Model) exportCmd(path string) tea.Cmd {
	return func() tea.Msg {
		written, out, err := m.ports.Backup.ExportTo(context.Background(), path)
		if err != nil {
			return doneMsg{err: err}
		}
		return doneMsg{status: fmt.Sprintf("exported %d subjects, %d sessions to %s", out.Subjects, out.Sessions, written)}
	}
}

func (m Model) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.ports.Backup.ImportFrom(context.Background(), path)
		if err != nil {
			return doneMsg{err: err}
		}
		return doneMsg{status: fmt.Sprintf("imported %d subjects, %d sessions", out.Subjects, out.Sessions)}
	}
}
