package main

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Heading lipgloss.Style
	Label   lipgloss.Style
	Faint   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

func newStyles() styles {
	return styles{
		Heading: lipgloss.NewStyle().Bold(true).Underline(true),
		Label:   lipgloss.NewStyle().Bold(true),
		Faint:   lipgloss.NewStyle().Faint(true),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	}
}
