package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/pagemap-sessions/internal/idle"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type idleStatsFetchedMsg struct {
	stats idle.Stats
	err   error
}

// idleStatsSpinnerModel shows a spinner while the stats of one server are
// fetched, then leaves a one-line summary of what came back.
type idleStatsSpinnerModel struct {
	spinner spinner.Model
	server  string
	fetch   tea.Cmd

	stats idle.Stats
	err   error
	done  bool

	okStyle   lipgloss.Style
	failStyle lipgloss.Style
}

func newIdleStatsSpinnerModel(server string, fetch tea.Cmd) idleStatsSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return idleStatsSpinnerModel{
		spinner:   s,
		server:    server,
		fetch:     fetch,
		okStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		failStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
}

func (m idleStatsSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch)
}

func (m idleStatsSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case idleStatsFetchedMsg:
		m.done = true
		m.stats = msg.stats
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m idleStatsSpinnerModel) View() string {
	if !m.done {
		return fmt.Sprintf("%s Fetching idle stats from %s...", m.spinner.View(), m.server)
	}
	if m.err != nil {
		return m.failStyle.Render("✗") + fmt.Sprintf(" %s: unreachable\n", m.server)
	}

	summary := fmt.Sprintf(" %s: %s tracked", m.server, pluralPageMaps(m.stats.Tracked))
	if m.stats.Tracked > 0 && m.stats.OldestIdleFor >= m.stats.IdleTimeout {
		summary += ", eviction due"
	}

	return m.okStyle.Render("✓") + summary + "\n"
}

func pluralPageMaps(n int) string {
	if n == 1 {
		return "1 page map"
	}
	return fmt.Sprintf("%d page maps", n)
}

// fetchIdleStatsWithSpinner runs fetch behind a spinner on output and returns
// the stats it produced.
func fetchIdleStatsWithSpinner(ctx context.Context, output io.Writer, server string, fetch func(context.Context) (idle.Stats, error)) (idle.Stats, error) {
	fetchCmd := func() tea.Msg {
		stats, err := fetch(ctx)
		return idleStatsFetchedMsg{stats: stats, err: err}
	}

	p := tea.NewProgram(
		newIdleStatsSpinnerModel(server, fetchCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return idle.Stats{}, err
	}

	result, ok := finalModel.(idleStatsSpinnerModel)
	if !ok {
		return idle.Stats{}, fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.stats, result.err
}
