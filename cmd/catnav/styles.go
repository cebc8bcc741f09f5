package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/danielpatrickdp/catnav/internal/validation"
)

// #region palette
var (
	colorAccent  = lipgloss.Color("#5FAFD7")
	colorSuccess = lipgloss.Color("#5FD787")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#6C7A89")
)

var styles = struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Box     lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	Header:  lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	Success: lipgloss.NewStyle().Foreground(colorSuccess),
	Warning: lipgloss.NewStyle().Foreground(colorWarning),
	Error:   lipgloss.NewStyle().Foreground(colorError),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1),
}

// #endregion palette

func passFail(ok bool) string {
	if ok {
		return styles.Success.Render("PASS")
	}
	return styles.Error.Render("FAIL")
}

func statusStyle(s validation.Status) lipgloss.Style {
	switch s {
	case validation.StatusExcellent, validation.StatusGood:
		return styles.Success
	case validation.StatusAcceptable:
		return styles.Warning
	default:
		return styles.Error
	}
}
