// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the revu terminal interface.
package ui

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/revu-tui/internal/thread"
	"github.com/jeranaias/revu-tui/internal/ui/styles"
)

// =============================================================================
// CODE PANE
// =============================================================================

// CodePane renders the document under review: syntax-highlighted lines, a
// line-number gutter, per-line thread markers, and the keyboard-driven line
// selection that anchors new threads.
type CodePane struct {
	theme *styles.Theme
	store *thread.Store

	raw         []string // document lines, unstyled
	highlighted []string // same lines after chroma

	cursor int // 1-based current line
	anchor int // 1-based selection anchor, 0 when no selection

	top    int // first visible line, 1-based
	width  int
	height int
}

// NewCodePane creates a code pane over the given store.
func NewCodePane(theme *styles.Theme, store *thread.Store) *CodePane {
	return &CodePane{
		theme:  theme,
		store:  store,
		cursor: 1,
		top:    1,
		width:  80,
		height: 20,
	}
}

// SetDocument loads document text into the pane and resets the cursor.
func (p *CodePane) SetDocument(content, language string) {
	p.raw = strings.Split(content, "\n")
	p.highlighted = highlightLines(content, language)
	p.cursor = 1
	p.anchor = 0
	p.top = 1
}

// SetSize updates the pane's render dimensions (content area, borders
// excluded).
func (p *CodePane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.scrollToCursor()
}

// LineCount returns the number of document lines.
func (p *CodePane) LineCount() int {
	return len(p.raw)
}

// Cursor returns the 1-based cursor line.
func (p *CodePane) Cursor() int {
	return p.cursor
}

// =============================================================================
// CURSOR AND SELECTION
// =============================================================================

// MoveCursor moves the cursor by delta lines, clamped to the document.
func (p *CodePane) MoveCursor(delta int) {
	p.cursor += delta
	if p.cursor < 1 {
		p.cursor = 1
	}
	if n := len(p.raw); p.cursor > n {
		p.cursor = n
	}
	p.scrollToCursor()
}

// PageSize returns the cursor jump for page up/down.
func (p *CodePane) PageSize() int {
	if p.height < 2 {
		return 1
	}
	return p.height - 1
}

// StartSelection anchors a selection at the cursor. Moving the cursor
// afterwards extends it.
func (p *CodePane) StartSelection() {
	p.anchor = p.cursor
}

// ClearSelection drops the in-progress selection.
func (p *CodePane) ClearSelection() {
	p.anchor = 0
}

// HasSelection reports whether a selection is in progress.
func (p *CodePane) HasSelection() bool {
	return p.anchor != 0
}

// SelectionLines returns the selected line span in ascending order. With no
// explicit selection the cursor line alone is the span.
func (p *CodePane) SelectionLines() (start, end int) {
	if p.anchor == 0 {
		return p.cursor, p.cursor
	}
	if p.anchor <= p.cursor {
		return p.anchor, p.cursor
	}
	return p.cursor, p.anchor
}

// scrollToCursor keeps the cursor inside the visible window.
func (p *CodePane) scrollToCursor() {
	if p.cursor < p.top {
		p.top = p.cursor
	}
	if bottom := p.top + p.height - 1; p.cursor > bottom {
		p.top = p.cursor - p.height + 1
	}
	if p.top < 1 {
		p.top = 1
	}
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the visible window of the document.
func (p *CodePane) View() string {
	if len(p.raw) == 0 {
		return p.theme.ThreadPreview.Render("no document loaded")
	}

	selStart, selEnd := 0, -1
	if p.anchor != 0 {
		selStart, selEnd = p.SelectionLines()
	}

	numWidth := len(fmt.Sprintf("%d", len(p.raw)))
	var b strings.Builder

	end := p.top + p.height - 1
	if end > len(p.raw) {
		end = len(p.raw)
	}

	for line := p.top; line <= end; line++ {
		b.WriteString(p.renderLine(line, numWidth, selStart, selEnd))
		if line < end {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// renderLine renders one document line: gutter marker, line number, cursor
// indicator, then the (possibly highlighted) text.
func (p *CodePane) renderLine(line, numWidth, selStart, selEnd int) string {
	// Resolved threads keep their anchors in the store but drop out of the
	// gutter; only open conversations get a marker.
	marker := " "
	for _, th := range p.store.ThreadsContainingLine(line) {
		if th.Resolved {
			continue
		}
		marker = p.theme.GutterMarker.
			Foreground(styles.ThreadColor(th.ColorIndex)).
			Render("┃")
		break
	}

	num := p.theme.LineNumber.Width(numWidth).Render(fmt.Sprintf("%d", line))

	indicator := " "
	if line == p.cursor {
		indicator = p.theme.CursorLine.Render(">")
	}

	text := p.raw[line-1]
	selected := line >= selStart && line <= selEnd
	if selected {
		// Raw text under the selection highlight; chroma's ANSI codes
		// would fight the background color.
		textWidth := p.width - numWidth - 4
		if textWidth < 1 {
			textWidth = 1
		}
		text = p.theme.SelectedLine.Render(runewidth.FillRight(runewidth.Truncate(text, textWidth, ""), textWidth))
	} else if line-1 < len(p.highlighted) {
		text = p.highlighted[line-1]
	}

	return marker + num + indicator + text
}

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// highlightLines runs the whole document through chroma once and returns it
// split back into lines. Falls back to the raw lines if highlighting fails.
func highlightLines(content, language string) []string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(content)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return strings.Split(content, "\n")
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return strings.Split(content, "\n")
	}

	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
}
