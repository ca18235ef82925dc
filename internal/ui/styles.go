package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
// - Default (white/black): Primary text
// - Accent (soft purple #A78BFA): Paths, note names, headers
// - Muted (gray): Secondary info, skip reasons, hunk headers
// - Diff lines are the only colored status output; everything else uses symbols

const accentHex = "#A78BFA"

var (
	// Accent style for file paths and highlights
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(accentHex))

	// Muted style for secondary info and hints
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)

	// AccentBold combines accent color with bold
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(accentHex)).Bold(true)

	// Added and Removed color diff lines
	Added   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	Removed = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))
)
