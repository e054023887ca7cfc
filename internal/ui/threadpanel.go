// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the revu terminal interface.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/revu-tui/internal/thread"
	"github.com/jeranaias/revu-tui/internal/ui/styles"
	"github.com/jeranaias/revu-tui/internal/util"
)

// =============================================================================
// THREAD PANEL
// =============================================================================

// previewRunes caps the first-user-message preview shown per thread row.
const previewRunes = 48

// ThreadPanel renders the review threads: a list with anchors and previews,
// and the active thread's full conversation. Assistant messages render as
// markdown once sealed; while streaming they show as raw text so partial
// markdown never flickers through the renderer.
type ThreadPanel struct {
	theme *styles.Theme
	store *thread.Store

	markdown *glamour.TermRenderer

	selected int // index into store.Threads()
	width    int
}

// NewThreadPanel creates a thread panel over the given store.
func NewThreadPanel(theme *styles.Theme, store *thread.Store) *ThreadPanel {
	return &ThreadPanel{
		theme: theme,
		store: store,
		width: 40,
	}
}

// SetWidth updates the panel's content width and rebuilds the markdown
// renderer to wrap at it.
func (p *ThreadPanel) SetWidth(width int) {
	if width < 10 {
		width = 10
	}
	if width == p.width && p.markdown != nil {
		return
	}
	p.width = width

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		p.markdown = r
	}
}

// =============================================================================
// SELECTION
// =============================================================================

// MoveSelection moves the list selection by delta, clamped.
func (p *ThreadPanel) MoveSelection(delta int) {
	n := p.store.Count()
	if n == 0 {
		p.selected = 0
		return
	}
	p.selected += delta
	if p.selected < 0 {
		p.selected = 0
	}
	if p.selected >= n {
		p.selected = n - 1
	}
}

// SelectedThread returns the thread under the list selection, or nil.
func (p *ThreadPanel) SelectedThread() *thread.Thread {
	threads := p.store.Threads()
	if p.selected < 0 || p.selected >= len(threads) {
		return nil
	}
	return threads[p.selected]
}

// SelectThread moves the list selection to the thread with the given id.
func (p *ThreadPanel) SelectThread(id string) {
	for i, th := range p.store.Threads() {
		if th.ID == id {
			p.selected = i
			return
		}
	}
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the thread list followed by the active conversation.
func (p *ThreadPanel) View() string {
	threads := p.store.Threads()
	if len(threads) == 0 {
		return p.theme.ThreadPreview.Render("no threads yet\nselect lines in the code pane and press Enter")
	}

	p.clampSelection(len(threads))

	var b strings.Builder
	activeID := p.store.ActiveThreadID()

	for i, th := range threads {
		b.WriteString(p.renderThreadRow(th, i == p.selected, th.ID == activeID))
		b.WriteByte('\n')
	}

	if active := p.store.ActiveThread(); active != nil {
		b.WriteByte('\n')
		b.WriteString(p.renderConversation(active))
	}

	return b.String()
}

// renderThreadRow renders one list entry: colored marker, anchor span,
// message count, preview of the opening question.
func (p *ThreadPanel) renderThreadRow(th *thread.Thread, selected, active bool) string {
	marker := lipgloss.NewStyle().
		Foreground(styles.ThreadColor(th.ColorIndex)).
		Bold(true).
		Render("●")

	anchor := p.theme.ThreadAnchor.Render(
		fmt.Sprintf("L%d-%d", th.Selection.StartLine, th.Selection.EndLine))

	label := fmt.Sprintf("%s %s (%d)", marker, anchor, len(th.Messages))

	style := p.theme.ThreadItem
	switch {
	case th.Resolved:
		style = p.theme.ThreadResolved
	case active:
		style = p.theme.ThreadItemActive
	}

	cursor := "  "
	if selected {
		cursor = p.theme.ThreadItemActive.Render("> ")
	}

	row := cursor + style.Render(label)
	if preview := threadPreview(th); preview != "" {
		row += " " + p.theme.ThreadPreview.Render(preview)
	}
	return row
}

// renderConversation renders the active thread's messages in order.
func (p *ThreadPanel) renderConversation(th *thread.Thread) string {
	var b strings.Builder

	header := p.theme.HeaderSubtitle.Render(
		fmt.Sprintf("── thread on lines %d-%d ──", th.Selection.StartLine, th.Selection.EndLine))
	b.WriteString(header)
	b.WriteByte('\n')

	for _, msg := range th.Messages {
		switch msg.Role {
		case thread.RoleUser:
			b.WriteString(p.theme.UserMessage.Render("You"))
			b.WriteByte('\n')
			b.WriteString(msg.Content)
		case thread.RoleAssistant:
			b.WriteString(p.theme.AssistantMessage.Render("Assistant"))
			if msg.Metadata != nil && msg.Metadata.Model != "" {
				b.WriteString(p.theme.MessageMeta.Render(" · " + msg.Metadata.Model))
			}
			b.WriteByte('\n')
			b.WriteString(p.renderAssistantContent(msg))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// renderAssistantContent picks raw text mid-stream and markdown once sealed.
func (p *ThreadPanel) renderAssistantContent(msg *thread.Message) string {
	if !msg.StreamComplete {
		return msg.Content
	}
	if p.markdown != nil {
		if out, err := p.markdown.Render(msg.Content); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	return msg.Content
}

// threadPreview returns the rune-truncated first line of the thread's first
// user message.
func threadPreview(th *thread.Thread) string {
	for _, msg := range th.Messages {
		if msg.Role == thread.RoleUser && msg.Content != "" {
			return util.TruncateRunes(util.FirstLine(msg.Content), previewRunes)
		}
	}
	return ""
}

func (p *ThreadPanel) clampSelection(n int) {
	if p.selected >= n {
		p.selected = n - 1
	}
	if p.selected < 0 {
		p.selected = 0
	}
}
