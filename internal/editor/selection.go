// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package editor

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultContextLines is the number of surrounding lines captured with a
// selection when the caller does not say otherwise.
const DefaultContextLines = 10

// ErrEmptySelection indicates a zero-width range, which cannot anchor a
// thread.
var ErrEmptySelection = errors.New("selection is empty")

// Range is a highlighted span in the document. Lines and columns are
// 1-based; the end column is exclusive.
type Range struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
}

// Validate reports whether the range is a usable thread anchor.
// A zero-width range (same start and end position) is rejected.
func (r Range) Validate() error {
	if r.StartLine < 1 || r.StartColumn < 1 || r.EndLine < 1 || r.EndColumn < 1 {
		return fmt.Errorf("range positions must be 1-based, got %d:%d-%d:%d",
			r.StartLine, r.StartColumn, r.EndLine, r.EndColumn)
	}
	if r.StartLine > r.EndLine {
		return fmt.Errorf("range start line %d after end line %d", r.StartLine, r.EndLine)
	}
	if r.StartLine == r.EndLine && r.StartColumn >= r.EndColumn {
		return ErrEmptySelection
	}
	return nil
}

// ContainsLine reports whether the range covers the given line.
func (r Range) ContainsLine(line int) bool {
	return line >= r.StartLine && line <= r.EndLine
}

// Selection is the immutable snapshot anchoring a thread: the highlighted
// range, its exact text, and up to contextLines of surrounding code captured
// once at creation time.
type Selection struct {
	Range
	SelectedText  string `json:"selectedText"`
	ContextBefore string `json:"contextBefore"`
	ContextAfter  string `json:"contextAfter"`
}

// NewSelection snapshots the given range against the document content,
// capturing up to contextLines lines before and after the range.
// contextLines <= 0 falls back to DefaultContextLines.
func NewSelection(r Range, content string, contextLines int) (Selection, error) {
	if err := r.Validate(); err != nil {
		return Selection{}, err
	}
	if contextLines <= 0 {
		contextLines = DefaultContextLines
	}

	lines := strings.Split(content, "\n")

	// Clamp to the document; the editor hands us 1-based positions.
	startIdx := r.StartLine - 1
	endIdx := r.EndLine
	if startIdx > len(lines) {
		startIdx = len(lines)
	}
	if endIdx > len(lines) {
		endIdx = len(lines)
	}

	selected := strings.Join(lines[startIdx:endIdx], "\n")
	selected = trimToColumns(selected, r)

	beforeStart := startIdx - contextLines
	if beforeStart < 0 {
		beforeStart = 0
	}
	afterEnd := endIdx + contextLines
	if afterEnd > len(lines) {
		afterEnd = len(lines)
	}

	return Selection{
		Range:         r,
		SelectedText:  selected,
		ContextBefore: strings.Join(lines[beforeStart:startIdx], "\n"),
		ContextAfter:  strings.Join(lines[endIdx:afterEnd], "\n"),
	}, nil
}

// trimToColumns narrows the first and last line of a multi-line extract to
// the selected columns. Column positions index runes, not bytes.
func trimToColumns(text string, r Range) string {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 {
		return text
	}

	last := len(lines) - 1
	if r.StartLine == r.EndLine {
		lines[0] = sliceRunes(lines[0], r.StartColumn-1, r.EndColumn-1)
	} else {
		lines[0] = sliceRunes(lines[0], r.StartColumn-1, -1)
		lines[last] = sliceRunes(lines[last], 0, r.EndColumn-1)
	}
	return strings.Join(lines, "\n")
}

// sliceRunes returns s[start:end] by rune index; end < 0 means to the end.
func sliceRunes(s string, start, end int) string {
	runes := []rune(s)
	if start < 0 {
		start = 0
	}
	if start > len(runes) {
		return ""
	}
	if end < 0 || end > len(runes) {
		end = len(runes)
	}
	if start >= end {
		return ""
	}
	return string(runes[start:end])
}

// LineRange selects whole lines, a convenience for keyboard-driven
// selection where columns span the full line. The end column extends one
// past the last line's length so the selection is never zero-width.
func LineRange(content string, startLine, endLine int) Range {
	lines := strings.Split(content, "\n")
	endCol := 2
	if endLine >= 1 && endLine <= len(lines) {
		endCol = len([]rune(lines[endLine-1])) + 1
		if endCol < 2 {
			endCol = 2
		}
	}
	return Range{
		StartLine:   startLine,
		StartColumn: 1,
		EndLine:     endLine,
		EndColumn:   endCol,
	}
}
