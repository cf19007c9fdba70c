package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by commands.
type Styles struct {
	Header1  lipgloss.Style
	Header2  lipgloss.Style
	Bold     lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	RootPath lipgloss.Style
	Added    lipgloss.Style
	Removed  lipgloss.Style

	SuccessIcon string
	FailIcon    string
}

// NewStyles builds styles bound to a lipgloss renderer so that colour is
// dropped automatically when the renderer has no colour profile.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header1:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Bold:     r.NewStyle().Bold(true),
		Muted:    r.NewStyle().Foreground(lipgloss.Color("8")),
		Success:  r.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:  r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:    r.NewStyle().Foreground(lipgloss.Color("9")),
		Info:     r.NewStyle().Foreground(lipgloss.Color("12")),
		RootPath: r.NewStyle().Foreground(lipgloss.Color("13")),
		Added:    r.NewStyle().Foreground(lipgloss.Color("9")),
		Removed:  r.NewStyle().Foreground(lipgloss.Color("11")),

		SuccessIcon: "✓",
		FailIcon:    "✗",
	}
}
