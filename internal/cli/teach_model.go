package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/erpacad/erpacad/internal/cli/formatter"
	"github.com/erpacad/erpacad/internal/contract"
	"github.com/erpacad/erpacad/internal/domain"
	"github.com/erpacad/erpacad/internal/service"
)

type teachKeyMap struct {
	Complete key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultTeachKeys() teachKeyMap {
	return teachKeyMap{
		Complete: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete unit")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", " "), key.WithHelp("pgdn", "page down")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k teachKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Complete, k.Help, k.Quit}
}

func (k teachKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Complete, k.Quit},
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Help},
	}
}

// teachModel walks one chapter unit by unit. Only the unlocked unit is
// shown and the only transition offered is completing it.
type teachModel struct {
	ctx       context.Context
	execution service.ExecutionService
	session   *service.Session
	key       domain.ChapterKey

	keys   teachKeyMap
	help   help.Model
	vp     viewport.Model
	width  int
	height int

	snapshot *contract.ChapterPlanView
	unit     *contract.UnitView
	notice   string
	err      error
	loading  bool
	quitting bool
}

type unitLoadedMsg struct {
	snapshot *contract.ChapterPlanView
	unit     *contract.UnitView
	err      error
}

type unitCompletedMsg struct {
	done *contract.CompletionView
	err  error
}

func newTeachModel(ctx context.Context, exec service.ExecutionService, sess *service.Session, key domain.ChapterKey) teachModel {
	return teachModel{
		ctx:       ctx,
		execution: exec,
		session:   sess,
		key:       key,
		keys:      defaultTeachKeys(),
		help:      help.New(),
		vp:        viewport.New(0, 0),
		loading:   true,
	}
}

func (m teachModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m teachModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.execution.Snapshot(m.ctx, m.session, m.key)
		if err != nil || snap.State == domain.PlanFinished {
			return unitLoadedMsg{snapshot: snap, err: err}
		}
		unit, err := m.execution.Current(m.ctx, m.session, m.key)
		return unitLoadedMsg{snapshot: snap, unit: unit, err: err}
	}
}

func (m teachModel) completeCmd() tea.Cmd {
	return func() tea.Msg {
		done, err := m.execution.Complete(m.ctx, m.session, m.key)
		return unitCompletedMsg{done: done, err: err}
	}
}

func (m teachModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case unitLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.snapshot != nil {
			m.snapshot = msg.snapshot
		}
		m.unit = msg.unit
		m.resize()
		m.setContent()
		return m, nil

	case unitCompletedMsg:
		if msg.err != nil {
			m.loading = false
			m.err = msg.err
			return m, nil
		}
		m.notice = strings.TrimRight(formatter.FormatCompletion(msg.done), "\n")
		return m, m.loadCmd()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
			return m, nil
		case key.Matches(msg, m.keys.Complete):
			if m.loading || m.unit == nil || m.finished() {
				return m, nil
			}
			m.loading = true
			m.err = nil
			return m, m.completeCmd()
		case key.Matches(msg, m.keys.Up):
			m.vp.ScrollUp(1)
		case key.Matches(msg, m.keys.Down):
			m.vp.ScrollDown(1)
		case key.Matches(msg, m.keys.PageUp):
			m.vp.PageUp()
		case key.Matches(msg, m.keys.PageDown):
			m.vp.PageDown()
		}
		return m, nil
	}
	return m, nil
}

func (m teachModel) finished() bool {
	return m.snapshot != nil && m.snapshot.State == domain.PlanFinished
}

func (m *teachModel) setContent() {
	switch {
	case m.finished():
		m.vp.SetContent(formatter.Bold("Chapter finished.") + "\n" +
			formatter.Dim("Every unit is completed. Submit the plan for approval with `erpacad submit`."))
	case m.unit != nil:
		m.vp.SetContent(formatter.FormatUnit(m.unit))
	default:
		m.vp.SetContent("")
	}
	m.vp.GotoTop()
}

// resize gives the viewport whatever height the header and footer leave.
func (m *teachModel) resize() {
	chrome := lipgloss.Height(m.headerView()) + lipgloss.Height(m.footerView())
	m.vp.Width = m.width
	m.vp.Height = max(m.height-chrome, 3)
}

func (m teachModel) headerView() string {
	title := formatter.StyleHeader.Render(strings.ToUpper(m.key.String()))
	if m.snapshot == nil {
		return title
	}
	return fmt.Sprintf("%s  %s  %s", title,
		formatter.RenderProgress(m.snapshot.Completed, m.snapshot.Total, 20),
		formatter.LockIndicator(m.snapshot.Locked))
}

func (m teachModel) footerView() string {
	var lines []string
	switch {
	case m.err != nil:
		lines = append(lines, formatter.StyleRed.Render("Error: "+m.err.Error()))
	case m.notice != "":
		lines = append(lines, m.notice)
	}
	lines = append(lines, m.help.View(m.keys))
	return strings.Join(lines, "\n")
}

func (m teachModel) View() string {
	if m.quitting {
		return ""
	}
	body := m.vp.View()
	if m.loading && m.unit == nil && !m.finished() {
		body = formatter.Dim("Loading…")
	}
	return m.headerView() + "\n" + body + "\n" + m.footerView()
}
