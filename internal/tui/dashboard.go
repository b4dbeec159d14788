// Package tui renders the live stats dashboard for `restwell stats --watch`.
package tui

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/restwell/internal/constants"
	"github.com/julianstephens/restwell/internal/models"
	"github.com/julianstephens/restwell/internal/storage"
)

type KeyMap struct {
	Refresh key.Binding
	Quit    key.Binding
	Help    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Quit, k.Help}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Refresh, k.Quit, k.Help}}
}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(30*time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

type Model struct {
	store      storage.Provider
	keys       KeyMap
	help       help.Model
	summaries  []models.DailyAggregate
	rate       float64
	skipsToday int
	skipRun    int
	loadErr    error
	lastLoaded time.Time
	quitting   bool
	width      int
}

func NewModel(store storage.Provider) Model {
	m := Model{
		store: store,
		keys:  DefaultKeyMap(),
		help:  help.New(),
	}
	m.refresh()
	return m
}

func (m *Model) refresh() {
	now := time.Now()
	day := now.Format(constants.DateFormat)

	summaries, err := m.store.DailySummary(day)
	if err != nil {
		m.loadErr = err
		return
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].TaskName < summaries[j].TaskName })

	rate, err := m.store.CompletionRate(7)
	if err != nil {
		m.loadErr = err
		return
	}
	skips, err := m.store.SkipsToday()
	if err != nil {
		m.loadErr = err
		return
	}
	run, err := m.store.ConsecutiveSkipsToday()
	if err != nil {
		m.loadErr = err
		return
	}

	m.summaries = summaries
	m.rate = rate
	m.skipsToday = skips
	m.skipRun = run
	m.loadErr = nil
	m.lastLoaded = now
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case TickMsg:
		m.refresh()
		return m, tick()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	header := titleStyle.Render("restwell - today")
	body := RenderSummary(m.summaries, m.rate, m.skipsToday, m.skipRun)
	if m.loadErr != nil {
		body = dangerStyle.Render(fmt.Sprintf("stats unavailable: %v", m.loadErr))
	}

	footer := dimStyle.Render("updated " + m.lastLoaded.Format("15:04:05"))

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		"",
		body,
		"",
		footer,
		m.help.View(m.keys),
	))
}

// RenderSummary formats today's numbers as a plain table. The one-shot
// `stats` command prints this directly without entering the TUI.
func RenderSummary(summaries []models.DailyAggregate, rate float64, skipsToday, skipRun int) string {
	rows := []string{
		headerRowStyle.Render(fmt.Sprintf("%-16s %9s %9s %9s %7s", "task", "done", "deferred", "skipped", "total")),
	}
	if len(summaries) == 0 {
		rows = append(rows, dimStyle.Render("no reminders answered yet today"))
	}
	for _, s := range summaries {
		rows = append(rows, fmt.Sprintf("%-16s %9d %9d %9d %7d",
			s.TaskName, s.CompletedCount, s.DeferredCount, s.SkippedCount, s.TotalCount))
	}

	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("7-day completion rate: %s", rateStyle(rate).Render(fmt.Sprintf("%.1f%%", rate))))
	rows = append(rows, fmt.Sprintf("skips today: %d (current run: %d)", skipsToday, skipRun))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func rateStyle(rate float64) lipgloss.Style {
	switch {
	case rate >= 75:
		return goodStyle
	case rate >= 40:
		return warningStyle
	default:
		return dangerStyle
	}
}
