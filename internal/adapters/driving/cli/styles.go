package cli

import "github.com/charmbracelet/lipgloss"

// Colour palette for terminal output.
var (
	colourPrimary = lipgloss.Color("#7C3AED")
	colourAccent  = lipgloss.Color("#06B6D4")
	colourMuted   = lipgloss.Color("#6C7086")
	colourSuccess = lipgloss.Color("#A6E3A1")
	colourWarning = lipgloss.Color("#F9E2AF")
	colourError   = lipgloss.Color("#F38BA8")
)

// styles holds pre-configured lipgloss styles for command output.
var styles = struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Brief    lipgloss.Style
}{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(colourPrimary),
	Subtitle: lipgloss.NewStyle().Bold(true).Foreground(colourAccent),
	Muted:    lipgloss.NewStyle().Foreground(colourMuted),
	Success:  lipgloss.NewStyle().Foreground(colourSuccess),
	Warning:  lipgloss.NewStyle().Foreground(colourWarning),
	Error:    lipgloss.NewStyle().Foreground(colourError),
	Brief: lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colourMuted).
		Padding(0, 1),
}

// heading renders a section title with an underline.
func heading(title string) string {
	return styles.Title.Render(title) + "\n" + styles.Muted.Render(underline(title))
}

func underline(s string) string {
	n := lipgloss.Width(s)
	out := make([]byte, n)
	for i := range out {
		out[i] = '='
	}
	return string(out)
}
