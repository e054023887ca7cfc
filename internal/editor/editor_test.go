// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package editor

import (
	"errors"
	"strings"
	"testing"
)

const sampleCode = `line one
line two
line three
line four
line five
line six
line seven
line eight`

func TestRangeValidate(t *testing.T) {
	tests := []struct {
		name    string
		r       Range
		wantErr bool
	}{
		{"valid multi-line", Range{1, 1, 3, 5}, false},
		{"valid single-line", Range{2, 1, 2, 4}, false},
		{"zero-width", Range{2, 3, 2, 3}, true},
		{"inverted columns", Range{2, 5, 2, 3}, true},
		{"inverted lines", Range{4, 1, 2, 1}, true},
		{"zero-based line", Range{0, 1, 1, 2}, true},
		{"negative column", Range{1, -1, 1, 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRangeValidate_ZeroWidthIsErrEmptySelection(t *testing.T) {
	err := Range{3, 7, 3, 7}.Validate()
	if !errors.Is(err, ErrEmptySelection) {
		t.Errorf("expected ErrEmptySelection, got %v", err)
	}
}

func TestNewSelection_CapturesContext(t *testing.T) {
	sel, err := NewSelection(LineRange(sampleCode, 3, 5), sampleCode, 2)
	if err != nil {
		t.Fatalf("NewSelection failed: %v", err)
	}

	if sel.SelectedText != "line three\nline four\nline five" {
		t.Errorf("SelectedText = %q", sel.SelectedText)
	}
	if sel.ContextBefore != "line one\nline two" {
		t.Errorf("ContextBefore = %q", sel.ContextBefore)
	}
	if sel.ContextAfter != "line six\nline seven" {
		t.Errorf("ContextAfter = %q", sel.ContextAfter)
	}
}

func TestNewSelection_ContextClampedAtDocumentEdges(t *testing.T) {
	sel, err := NewSelection(LineRange(sampleCode, 1, 2), sampleCode, 5)
	if err != nil {
		t.Fatalf("NewSelection failed: %v", err)
	}
	if sel.ContextBefore != "" {
		t.Errorf("ContextBefore at top of file = %q, want empty", sel.ContextBefore)
	}
	if !strings.HasPrefix(sel.ContextAfter, "line three") {
		t.Errorf("ContextAfter = %q", sel.ContextAfter)
	}
}

func TestNewSelection_ColumnPrecise(t *testing.T) {
	sel, err := NewSelection(Range{1, 6, 1, 9}, sampleCode, 0)
	if err != nil {
		t.Fatalf("NewSelection failed: %v", err)
	}
	if sel.SelectedText != "one" {
		t.Errorf("SelectedText = %q, want %q", sel.SelectedText, "one")
	}
}

func TestNewSelection_RejectsEmptyRange(t *testing.T) {
	_, err := NewSelection(Range{1, 1, 1, 1}, sampleCode, 10)
	if !errors.Is(err, ErrEmptySelection) {
		t.Errorf("expected ErrEmptySelection, got %v", err)
	}
}

func TestContainsLine(t *testing.T) {
	r := Range{3, 1, 5, 2}
	for line, want := range map[int]bool{2: false, 3: true, 4: true, 5: true, 6: false} {
		if got := r.ContainsLine(line); got != want {
			t.Errorf("ContainsLine(%d) = %v, want %v", line, got, want)
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"javascript", "const x = 1;\nfunction go() { return x; }", "javascript"},
		{"typescript", "interface Point { x: number }\nconst p = { x: 1 };", "typescript"},
		{"python", "def main():\n    import os\n    return os.getcwd()", "python"},
		{"go", "package main\n\nfunc main() {\n}", "go"},
		{"java", "public class Main {\n  private static void run() {}\n}", "java"},
		{"cpp", "#include <iostream>\nint main() { std::cout << 1; }", "cpp"},
		{"rust", "fn add(a: i32) -> i32 {\n    a + 1\n}", "rust"},
		{"php", "<?php echo 'hi'; ?>", "php"},
		{"plaintext", "just some prose with nothing special", "plaintext"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLanguage(tt.code); got != tt.want {
				t.Errorf("DetectLanguage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExampleDocument(t *testing.T) {
	doc := ExampleDocument("go")
	if doc.Language != "go" {
		t.Errorf("Language = %q, want go", doc.Language)
	}
	if doc.Content == "" || doc.FileName == "" {
		t.Error("example document missing content or file name")
	}
	if !strings.HasPrefix(doc.ID, "doc_") {
		t.Errorf("ID = %q, want doc_ prefix", doc.ID)
	}

	// Unknown language falls back to the JavaScript sample.
	fallback := ExampleDocument("cobol")
	if fallback.Language != "javascript" {
		t.Errorf("fallback Language = %q, want javascript", fallback.Language)
	}
}
