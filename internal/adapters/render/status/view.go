package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/pagemap-sessions/internal/idle"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now    time.Time
	Server string
}

func renderView(stats idle.Stats, a assessment, opts RenderOptions, s styles) string {
	header := fmt.Sprintf("tracked: %d", stats.Tracked)
	if opts.Server != "" {
		header += "  server: " + opts.Server
	}

	lines := []string{
		s.title.Render("Idle Page Maps"),
		s.header.Render(header),
		healthLine(a, s),
		s.detail.Render(fmt.Sprintf("timeout %s, sweep every %s", formatDuration(stats.IdleTimeout), formatDuration(stats.SweepPeriod))),
	}

	if stats.Tracked == 0 {
		lines = append(lines, s.section.Render(s.empty.Render("No page maps are holding a last page.")))
	} else {
		lines = append(lines, s.section.Render(oldestLine(stats, a, s)))
	}

	lines = append(lines, s.section.Render(sweepLines(stats, a, opts, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func healthLine(a assessment, s styles) string {
	label := s.key.Render("status: ")
	if a.health == healthDue {
		return label + s.warning.Render(a.health.String())
	}
	return label + s.detail.Render(a.health.String())
}

func oldestLine(stats idle.Stats, a assessment, s styles) string {
	percent := idlePercent(stats.OldestIdleFor, stats.IdleTimeout)
	label := s.key.Render("oldest idle:")
	bar := renderProgressBar(percent, 24, s)
	percentStyle := lipgloss.NewStyle().Foreground(interpolateColor(percent, 0, 100))
	meta := percentStyle.Render(fmt.Sprintf("%s of %s", formatDuration(stats.OldestIdleFor), formatDuration(stats.IdleTimeout)))

	line := lipgloss.JoinHorizontal(lipgloss.Top, label, " ", bar, " ", meta)
	if a.health == healthDue {
		line += " " + s.warning.Render("[due]")
	}

	return line
}

func sweepLines(stats idle.Stats, a assessment, opts RenderOptions, s styles) string {
	parts := []string{
		s.key.Render("sweeps: ") + s.detail.Render(fmt.Sprintf("%d passes, %d evicted, %d stale, %d failed",
			stats.Passes, stats.Evicted, stats.Stale, stats.Failures)),
		s.meta.Render("last sweep: " + formatLastSweep(stats.LastSweepAt, opts.Now)),
	}
	if a.swept {
		parts = append(parts, s.meta.Render("next sweep: "+formatNextSweep(a.nextSweepIn)))
	}

	if stats.LastError != "" {
		parts = append(parts, s.warning.Render("last error: "+stats.LastError))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func idlePercent(idleFor, timeout time.Duration) float64 {
	if timeout <= 0 {
		return 0
	}
	return clampPercent(100 * idleFor.Seconds() / timeout.Seconds())
}

func renderProgressBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(percent) / 100.0))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

func formatLastSweep(at, now time.Time) string {
	if at.IsZero() {
		return "never"
	}
	if now.IsZero() {
		return at.Format(time.RFC3339)
	}
	if at.After(now) {
		return "just now"
	}
	return formatDuration(now.Sub(at)) + " ago"
}

func formatNextSweep(in time.Duration) string {
	if in < 0 {
		return "late by " + formatDuration(-in)
	}
	return "in " + formatDuration(in)
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp, faded at min and bright white at max.
	baseColor := 240.0
	targetColor := 255.0
	colorCode := int(baseColor + (targetColor-baseColor)*normalized)

	return lipgloss.Color(fmt.Sprintf("%d", colorCode))
}
