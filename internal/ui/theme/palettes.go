package theme

import "github.com/charmbracelet/lipgloss"

// Dark is the Nord palette on Polar Night backgrounds
// https://www.nordtheme.com/
var Dark = Theme{
	Name: "dark",
	Dark: true,

	Background: lipgloss.Color("#2E3440"),
	Foreground: lipgloss.Color("#ECEFF4"),
	Subtle:     lipgloss.Color("#4C566A"),
	Highlight:  lipgloss.Color("#3B4252"),
	Border:     lipgloss.Color("#4C566A"),

	Primary:   lipgloss.Color("#88C0D0"), // Nord8
	Secondary: lipgloss.Color("#81A1C1"), // Nord9
	Info:      lipgloss.Color("#5E81AC"), // Nord10

	Success: lipgloss.Color("#A3BE8C"), // Nord14
	Warning: lipgloss.Color("#EBCB8B"), // Nord13
	Error:   lipgloss.Color("#BF616A"), // Nord11

	PriorityLow:    lipgloss.Color("#A3BE8C"),
	PriorityMedium: lipgloss.Color("#EBCB8B"),
	PriorityHigh:   lipgloss.Color("#BF616A"),
}

// Light is the Nord palette on Snow Storm backgrounds
var Light = Theme{
	Name: "light",

	Background: lipgloss.Color("#ECEFF4"),
	Foreground: lipgloss.Color("#2E3440"),
	Subtle:     lipgloss.Color("#7B88A1"),
	Highlight:  lipgloss.Color("#D8DEE9"),
	Border:     lipgloss.Color("#B6BECC"),

	Primary:   lipgloss.Color("#5E81AC"),
	Secondary: lipgloss.Color("#81A1C1"),
	Info:      lipgloss.Color("#4C6A92"),

	Success: lipgloss.Color("#6F8F52"),
	Warning: lipgloss.Color("#B58A2E"),
	Error:   lipgloss.Color("#BF616A"),

	PriorityLow:    lipgloss.Color("#6F8F52"),
	PriorityMedium: lipgloss.Color("#B58A2E"),
	PriorityHigh:   lipgloss.Color("#BF616A"),
}
