package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(8)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F4A261")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27")).Bold(true)
	goodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2EC4B6")).Bold(true)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))
	lowBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
)

// lowFraction is where a consumable gauge turns to the warning color.
const lowFraction = 0.15

// renderGauge draws a bracketed bar filled to frac of width.
func renderGauge(frac float64, width int) string {
	if width <= 0 {
		return "[]"
	}
	if !(frac > 0) {
		frac = 0
	}
	filled := int(math.Round(frac * float64(width)))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	style := barStyle
	if frac < lowFraction {
		style = lowBarStyle
	}
	return "[" + style.Render(bar) + "]"
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// sparkline scales values between their min and max onto eight block heights,
// keeping only the last width values.
func sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var b strings.Builder
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkRunes)-1))
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

// gradientColor returns a hex color for column col of a title of the given
// width: blue through purple to magenta.
func gradientColor(col, width int) string {
	x := 0.0
	if width > 1 {
		x = float64(col) / float64(width-1)
	}

	var r, g, b float64
	if x < 0.5 {
		t := x / 0.5
		r = 59 + t*(139-59)
		g = 130 + t*(92-130)
		b = 246
	} else {
		t := (x - 0.5) / 0.5
		r = 139 + t*(217-139)
		g = 92 + t*(70-92)
		b = 246 + t*(239-246)
	}
	return fmt.Sprintf("#%02X%02X%02X", clampByte(r), clampByte(g), clampByte(b))
}

func clampByte(f float64) int {
	return int(math.Max(0, math.Min(255, f)))
}

// renderTitle paints text with the title gradient.
func renderTitle(text string) string {
	runes := []rune(text)
	var b strings.Builder
	for i, r := range runes {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradientColor(i, len(runes)))).Bold(true)
		b.WriteString(style.Render(string(r)))
	}
	return b.String()
}
