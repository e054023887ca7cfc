// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the revu TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// CODE PANE STYLES
	// ==========================================================================

	CodePane        lipgloss.Style
	CodePaneFocused lipgloss.Style
	LineNumber      lipgloss.Style
	CursorLine      lipgloss.Style
	SelectedLine    lipgloss.Style
	GutterMarker    lipgloss.Style

	// ==========================================================================
	// THREAD PANEL STYLES
	// ==========================================================================

	ThreadPanel        lipgloss.Style
	ThreadPanelFocused lipgloss.Style
	ThreadItem         lipgloss.Style
	ThreadItemActive   lipgloss.Style
	ThreadResolved     lipgloss.Style
	ThreadAnchor       lipgloss.Style
	ThreadPreview      lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserMessage      lipgloss.Style
	AssistantMessage lipgloss.Style
	MessageMeta      lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputFocused   lipgloss.Style
	CharCount      lipgloss.Style
	CharCountMax   lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	StatusError  lipgloss.Style
	Spinner      lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	t := &Theme{}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// App container
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Code pane
	t.CodePane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.CodePaneFocused = t.CodePane.
		BorderForeground(Cyan)

	t.LineNumber = lipgloss.NewStyle().
		Foreground(TextMuted).
		Align(lipgloss.Right)

	t.CursorLine = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.SelectedLine = lipgloss.NewStyle().
		Background(SelectionBg)

	t.GutterMarker = lipgloss.NewStyle().
		Bold(true)

	// Thread panel
	t.ThreadPanel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.ThreadPanelFocused = t.ThreadPanel.
		BorderForeground(Cyan)

	t.ThreadItem = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.ThreadItemActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.ThreadResolved = lipgloss.NewStyle().
		Foreground(TextMuted).
		Strikethrough(true)

	t.ThreadAnchor = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.ThreadPreview = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Messages
	t.UserMessage = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.AssistantMessage = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.MessageMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Input
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputFocused = t.InputContainer.
		BorderForeground(Cyan)

	t.CharCount = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.CharCountMax = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.StatusError = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Amber)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
}
