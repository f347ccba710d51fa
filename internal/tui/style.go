package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#15202b")).
			Background(lipgloss.Color("#f56a96")).
			Padding(0, 1)

	statusMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#f56a96", Dark: "#f23a74"}).
				Render

	methodStyles = map[string]lipgloss.Style{
		"GET":    lipgloss.NewStyle().Foreground(lipgloss.Color("#56FF4E")),
		"POST":   lipgloss.NewStyle().Foreground(lipgloss.Color("#4EA8FF")),
		"PUT":    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB84E")),
		"PATCH":  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB84E")),
		"DELETE": lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4E4E")),
	}
)

var docStyle = lipgloss.NewStyle().Margin(1, 2)

func methodStyle(method string) lipgloss.Style {
	if style, ok := methodStyles[method]; ok {
		return style
	}
	return lipgloss.NewStyle()
}
