// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jeranaias/revu-tui/internal/editor"
	"github.com/jeranaias/revu-tui/internal/thread"
)

func newTestStore(t *testing.T) *WorkspaceStore {
	t.Helper()
	s, err := NewWorkspaceStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestThreadsRoundTrip(t *testing.T) {
	ws := newTestStore(t)

	src := thread.NewStore(ws)
	content := "package main\n\nfunc main() {}\n"
	sel, err := editor.NewSelection(editor.LineRange(content, 1, 1), content, editor.DefaultContextLines)
	if err != nil {
		t.Fatal(err)
	}
	th, err := src.CreateThread(sel, "doc_test")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := src.AddMessage(th.ID, thread.RoleUser, "what is this package?", true); err != nil {
		t.Fatal(err)
	}

	loaded := thread.NewStore(nil)
	loaded.Restore(ws.LoadThreads(), "doc_test")

	got := loaded.Thread(th.ID)
	if got == nil {
		t.Fatal("thread missing after reload")
	}
	if len(got.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(got.Messages))
	}
	if got.Messages[0].Content != "what is this package?" {
		t.Errorf("content = %q", got.Messages[0].Content)
	}
	if got.Selection.Range.StartLine != 1 {
		t.Errorf("selection startLine = %d, want 1", got.Selection.Range.StartLine)
	}
	if loaded.ActiveThreadID() != th.ID {
		t.Errorf("active = %q, want %q", loaded.ActiveThreadID(), th.ID)
	}
}

func TestLoadThreadsMissingFile(t *testing.T) {
	ws := newTestStore(t)
	snap := ws.LoadThreads()
	if len(snap.Threads) != 0 || snap.ActiveThreadID != "" {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
}

func TestLoadThreadsCorruptFile(t *testing.T) {
	ws := newTestStore(t)
	path := filepath.Join(ws.BaseDir, threadsFile)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	snap := ws.LoadThreads()
	if len(snap.Threads) != 0 {
		t.Errorf("corrupt file yielded %d threads, want 0", len(snap.Threads))
	}

	// Original bytes are set aside, not destroyed.
	if _, err := os.Stat(path + ".corrupt"); err != nil {
		t.Errorf("corrupt file not set aside: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("corrupt file still in place: %v", err)
	}
}

func TestEditorRoundTrip(t *testing.T) {
	ws := newTestStore(t)

	doc := editor.NewDocument("const x = 1;\nconst y = 2;\n", "javascript", "example.js")
	sel, err := editor.NewSelection(editor.LineRange(doc.Content, 2, 2), doc.Content, 5)
	if err != nil {
		t.Fatal(err)
	}
	if err := ws.SaveEditor(EditorState{Document: doc, CurrentSelection: &sel}); err != nil {
		t.Fatal(err)
	}

	got := ws.LoadEditor()
	if got.Document == nil || got.Document.Content != doc.Content {
		t.Errorf("document not restored: %+v", got.Document)
	}
	if got.Document.Language != "javascript" {
		t.Errorf("language = %q", got.Document.Language)
	}
	if got.CurrentSelection == nil || got.CurrentSelection.SelectedText != sel.SelectedText {
		t.Errorf("selection not restored: %+v", got.CurrentSelection)
	}
}

func TestLoadEditorCorruptFile(t *testing.T) {
	ws := newTestStore(t)
	if err := os.WriteFile(filepath.Join(ws.BaseDir, editorFile), []byte("]["), 0644); err != nil {
		t.Fatal(err)
	}
	got := ws.LoadEditor()
	if got.Document != nil || got.CurrentSelection != nil {
		t.Errorf("expected empty editor state, got %+v", got)
	}
}

func TestSaveOverwritesAtomically(t *testing.T) {
	ws := newTestStore(t)
	for i := 0; i < 3; i++ {
		if err := ws.SaveEditor(EditorState{Document: editor.NewDocument("x", "go", "x.go")}); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := os.ReadDir(ws.BaseDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("stray files after repeated saves: %d entries", len(entries))
	}
}
