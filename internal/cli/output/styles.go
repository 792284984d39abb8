package output

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used by text output.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Key     lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Code    lipgloss.Style
}

var (
	colorAccent  = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#02BA84", Dark: "#02BF87"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#D9A100", Dark: "#F2C94C"}
	colorError   = lipgloss.AdaptiveColor{Light: "#E03E3E", Dark: "#FF6B6B"}
)

// NewStyles builds the styles for a lipgloss renderer.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Header1: r.NewStyle().Bold(true).Foreground(colorAccent),
		Header2: r.NewStyle().Bold(true),
		Bold:    r.NewStyle().Bold(true),
		Key:     r.NewStyle().Foreground(colorAccent),
		Muted:   r.NewStyle().Foreground(colorMuted),
		Success: r.NewStyle().Foreground(colorSuccess),
		Warning: r.NewStyle().Foreground(colorWarning),
		Error:   r.NewStyle().Foreground(colorError).Bold(true),
		Code:    r.NewStyle().Foreground(colorMuted),
	}
}
