package ui

import "github.com/charmbracelet/lipgloss"

// Palette used by table and status rendering. Degrades gracefully on
// non-TTY output since callers check ShouldUseColor before styling.
var (
	ColorAccent = lipgloss.AdaptiveColor{Light: "25", Dark: "86"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "130", Dark: "214"}
	ColorPass   = lipgloss.AdaptiveColor{Light: "28", Dark: "82"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "241", Dark: "243"}
)
