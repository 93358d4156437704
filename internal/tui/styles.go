package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/beautycrafthq/bchq/pkg/domain"
)

// Shimmer animation for the header wordmark.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders the wordmark as a slow wave running from deep
// plum (#4a1f33) to rose (#f0879f). Spaces are kept and never coloured.
func renderShimmerLogo(frame int) string {
	const text = "BEAUTY CRAFT HQ"
	n := len(text)
	t := float64(frame)

	var out strings.Builder
	for i := 0; i < n; i++ {
		if text[i] == ' ' {
			out.WriteString("   ")
			continue
		}
		x := float64(i) / float64(n-1)

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)
		b = b*0.75 + math.Sin(t*0.035)*0.12 + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(74 + b*(240-74))
		g := clampByte(31 + b*(135-31))
		bl := clampByte(51 + b*(159-51))

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, bl)))
		out.WriteString(s.Render(string(text[i])))
		if i < n-1 && text[i+1] != ' ' {
			out.WriteString(" ")
		}
	}
	return out.String()
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9a8a8f"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f4ecee")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d6c8cc"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6b5a60"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9a8a8f"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6b5a60"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e26d8a"))

	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5fbf8f"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0a84c"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d05a5a"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#7a6a70"))

	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#2a1a20"))

	planColors = map[string]lipgloss.Color{
		domain.PlanFree:         lipgloss.Color("#9a8a8f"),
		domain.PlanStarter:      lipgloss.Color("#7fb6e0"),
		domain.PlanProfessional: lipgloss.Color("#e26d8a"),
		domain.PlanEnterprise:   lipgloss.Color("#d4a844"),
	}
)

// PlanStyle returns the style for a plan badge. Unknown plans render dim.
func PlanStyle(plan string) lipgloss.Style {
	if c, ok := planColors[plan]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return dimStyle
}

// PlanBadge renders "[plan]" in the plan's colour, or "" for no plan.
func PlanBadge(plan string) string {
	if plan == "" {
		return ""
	}
	return PlanStyle(plan).Render("[" + plan + "]")
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}
