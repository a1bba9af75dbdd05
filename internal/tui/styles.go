package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/okian/fideboard/internal/rankview"
)

// Color palette.
var (
	ColorHeader   = lipgloss.AdaptiveColor{Light: "#1F4E79", Dark: "#7FB3E0"}
	ColorPositive = lipgloss.AdaptiveColor{Light: "#1E7B34", Dark: "#5FD068"}
	ColorNegative = lipgloss.AdaptiveColor{Light: "#B3261E", Dark: "#FF6B6B"}
	ColorNeutral  = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"}
	ColorMuted    = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"}
	ColorAccent   = lipgloss.AdaptiveColor{Light: "#7A4CC2", Dark: "#B48EFF"}
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).Underline(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	errorStyle  = lipgloss.NewStyle().Foreground(ColorNegative).Bold(true)
	disabledKey = lipgloss.NewStyle().Foreground(ColorMuted).Faint(true)
	enabledKey  = lipgloss.NewStyle().Foreground(ColorAccent)
	ruleStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	toneStyles  = map[rankview.Tone]lipgloss.Style{
		rankview.ToneNone:     lipgloss.NewStyle().Foreground(ColorMuted),
		rankview.ToneNeutral:  lipgloss.NewStyle().Foreground(ColorNeutral),
		rankview.TonePositive: lipgloss.NewStyle().Foreground(ColorPositive),
		rankview.ToneNegative: lipgloss.NewStyle().Foreground(ColorNegative),
	}
)
