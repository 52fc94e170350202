package main

import "github.com/charmbracelet/lipgloss"

var (
	citationStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	headingStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)
