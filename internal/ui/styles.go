package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Icon constants
const (
	HostIcon   = "👑"
	FinishFlag = "🏁"
	TrackDot   = "·"
)

// Lipgloss Styles
var (
	docStyle       = lipgloss.NewStyle().Margin(1, 2)
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	boxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	hostStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	winnerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	countdownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
)
