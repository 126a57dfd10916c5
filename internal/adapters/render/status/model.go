package status

import (
	"errors"
	"io"
	"time"

	"github.com/bnema/pagemap-sessions/internal/idle"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type health int

const (
	healthEmpty health = iota
	healthOK
	healthDue
)

func (h health) String() string {
	switch h {
	case healthEmpty:
		return "nothing tracked"
	case healthDue:
		return "eviction due"
	default:
		return "ok"
	}
}

// assessment is what the view derives from one stats snapshot before drawing.
type assessment struct {
	health health
	// nextSweepIn is negative once the sweeper is late. Only meaningful when
	// swept is true.
	nextSweepIn time.Duration
	swept       bool
}

func assess(stats idle.Stats, now time.Time) assessment {
	a := assessment{health: healthOK}
	switch {
	case stats.Tracked == 0:
		a.health = healthEmpty
	case stats.IdleTimeout > 0 && stats.OldestIdleFor >= stats.IdleTimeout:
		a.health = healthDue
	}

	if !stats.LastSweepAt.IsZero() && !now.IsZero() {
		a.swept = true
		a.nextSweepIn = stats.LastSweepAt.Add(stats.SweepPeriod).Sub(now)
	}

	return a
}

type assessedMsg struct {
	assessment assessment
}

type model struct {
	stats      idle.Stats
	opts       RenderOptions
	styles     styles
	assessment assessment
	output     string
}

func newModel(stats idle.Stats, opts RenderOptions) model {
	return model{
		stats:  stats,
		opts:   opts,
		styles: newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	stats, now := m.stats, m.opts.Now
	return func() tea.Msg {
		return assessedMsg{assessment: assess(stats, now)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case assessedMsg:
		m.assessment = msg.assessment
		m.output = renderView(m.stats, m.assessment, m.opts, m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

// Render draws stats once, without a terminal, and returns the frame.
func Render(stats idle.Stats, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		newModel(stats, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
