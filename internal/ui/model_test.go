// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"testing"

	"github.com/jeranaias/revu-tui/internal/anthropic"
	"github.com/jeranaias/revu-tui/internal/editor"
	"github.com/jeranaias/revu-tui/internal/review"
	"github.com/jeranaias/revu-tui/internal/storage"
	"github.com/jeranaias/revu-tui/internal/thread"
)

// silentStreamer satisfies the controller without network access.
type silentStreamer struct{}

func (silentStreamer) StreamMessage(ctx context.Context, req anthropic.MessageRequest, onDelta anthropic.DeltaFunc) (*anthropic.StreamResult, error) {
	return &anthropic.StreamResult{}, nil
}

type fixedResolver struct{}

func (fixedResolver) ResolveTier(ctx context.Context, tier string) string { return "test-model" }

func newTestModel(t *testing.T) (*Model, *storage.WorkspaceStore, *editor.Document) {
	t.Helper()
	ws, err := storage.NewWorkspaceStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store := thread.NewStore(ws)
	ctrl := review.NewController(store, silentStreamer{}, fixedResolver{})
	doc := editor.NewDocument(paneDoc, "go", "main.go")
	m := New(store, ctrl, ws, doc, Options{MaxContextLines: 5})
	return m, ws, doc
}

func TestNewPersistsDocument(t *testing.T) {
	_, ws, doc := newTestModel(t)

	state := ws.LoadEditor()
	if state.Document == nil {
		t.Fatal("editor state not written at startup")
	}
	if state.Document.ID != doc.ID {
		t.Errorf("persisted document id = %q, want %q", state.Document.ID, doc.ID)
	}
	if state.Document.Content != doc.Content {
		t.Error("persisted document content does not match")
	}
}

func TestClosePersistsSelectionSpan(t *testing.T) {
	m, ws, _ := newTestModel(t)

	m.codePane.MoveCursor(2) // line 3
	m.codePane.StartSelection()
	m.codePane.MoveCursor(1) // extend to line 4
	m.Close()

	state := ws.LoadEditor()
	if state.CurrentSelection == nil {
		t.Fatal("in-progress selection not persisted on close")
	}
	r := state.CurrentSelection.Range
	if r.StartLine != 3 || r.EndLine != 4 {
		t.Errorf("persisted span = %d-%d, want 3-4", r.StartLine, r.EndLine)
	}
}

func TestCloseWithoutSelectionPersistsDocumentOnly(t *testing.T) {
	m, ws, doc := newTestModel(t)
	m.Close()

	state := ws.LoadEditor()
	if state.Document == nil || state.Document.ID != doc.ID {
		t.Fatal("document not persisted on close")
	}
	if state.CurrentSelection != nil {
		t.Errorf("unexpected persisted selection: %+v", state.CurrentSelection)
	}
}
