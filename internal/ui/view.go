// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the revu terminal interface.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/revu-tui/internal/review"
)

// View renders the full application frame.
func (m *Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')
	b.WriteString(m.renderMain())
	b.WriteByte('\n')
	b.WriteString(m.renderInput())
	b.WriteByte('\n')
	b.WriteString(m.renderStatusBar())

	if m.showHelp {
		return b.String() + "\n" + m.renderHelp()
	}
	return b.String()
}

// renderHeader shows the document name and language.
func (m *Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("revu")
	doc := ""
	if m.doc != nil {
		name := m.doc.FileName
		if name == "" {
			name = "untitled"
		}
		doc = m.theme.HeaderSubtitle.Render(fmt.Sprintf("  %s · %s", name, m.doc.Language))
	}
	count := m.theme.HeaderSubtitle.Render(fmt.Sprintf("  %d threads", m.store.Count()))
	return m.theme.Header.Width(m.width).Render(title + doc + count)
}

// renderMain lays the code pane and thread panel side by side.
func (m *Model) renderMain() string {
	codeStyle := m.theme.CodePane
	if m.focus == FocusCode {
		codeStyle = m.theme.CodePaneFocused
	}
	panelStyle := m.theme.ThreadPanel
	if m.focus == FocusThreads {
		panelStyle = m.theme.ThreadPanelFocused
	}

	code := codeStyle.Render(m.codePane.View())
	panel := panelStyle.Render(m.panelView.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, code, panel)
}

// renderInput shows the textarea with a live character count against the
// turn limit.
func (m *Model) renderInput() string {
	style := m.theme.InputContainer
	if m.focus == FocusInput {
		style = m.theme.InputFocused
	}

	used := len([]rune(m.input.Value()))
	countStyle := m.theme.CharCount
	if used >= review.MaxTurnLength {
		countStyle = m.theme.CharCountMax
	}
	count := countStyle.Render(fmt.Sprintf("%d/%d", used, review.MaxTurnLength))

	return style.Width(m.width - 2).Render(m.input.View() + "\n" + count)
}

// renderStatusBar shows streaming state, transient status, and shortcuts.
func (m *Model) renderStatusBar() string {
	var left string
	switch {
	case m.streaming:
		left = m.spin.View() + " streaming..."
	case m.statusIsErr:
		left = m.theme.StatusError.Render(m.statusMsg)
	case m.statusMsg != "":
		left = m.statusMsg
	default:
		left = focusName(m.focus)
	}

	var shortcuts []string
	for _, binding := range m.keys.ShortHelp() {
		h := binding.Help()
		shortcuts = append(shortcuts,
			m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	right := strings.Join(shortcuts, "  ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// renderHelp shows the full key binding reference.
func (m *Model) renderHelp() string {
	var b strings.Builder
	for _, group := range m.keys.FullHelp() {
		var parts []string
		for _, binding := range group {
			h := binding.Help()
			parts = append(parts,
				m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
		}
		b.WriteString(strings.Join(parts, "  "))
		b.WriteByte('\n')
	}
	return m.theme.Container.Render(strings.TrimRight(b.String(), "\n"))
}

func focusName(f Focus) string {
	switch f {
	case FocusCode:
		return "code"
	case FocusThreads:
		return "threads"
	case FocusInput:
		return "input"
	}
	return ""
}
