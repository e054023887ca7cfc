// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"
	"testing"

	"github.com/jeranaias/revu-tui/internal/editor"
	"github.com/jeranaias/revu-tui/internal/thread"
	"github.com/jeranaias/revu-tui/internal/ui/styles"
)

const panelDoc = "alpha\nbeta\ngamma\ndelta\nepsilon\n"

func newTestPanel(t *testing.T) (*ThreadPanel, *thread.Store) {
	t.Helper()
	store := thread.NewStore(nil)
	panel := NewThreadPanel(styles.NewTheme(), store)
	panel.SetWidth(60)
	return panel, store
}

func makeThread(t *testing.T, store *thread.Store, startLine, endLine int) *thread.Thread {
	t.Helper()
	sel, err := editor.NewSelection(editor.LineRange(panelDoc, startLine, endLine), panelDoc, editor.DefaultContextLines)
	if err != nil {
		t.Fatalf("NewSelection failed: %v", err)
	}
	th, err := store.CreateThread(sel, "doc_test")
	if err != nil {
		t.Fatalf("CreateThread failed: %v", err)
	}
	return th
}

func TestEmptyPanelPrompt(t *testing.T) {
	panel, _ := newTestPanel(t)
	if !strings.Contains(panel.View(), "no threads yet") {
		t.Error("empty panel should prompt for thread creation")
	}
}

func TestPanelListsThreadAnchors(t *testing.T) {
	panel, store := newTestPanel(t)
	makeThread(t, store, 1, 2)
	makeThread(t, store, 4, 5)

	view := panel.View()
	if !strings.Contains(view, "L1-2") {
		t.Errorf("view should show first anchor, got:\n%s", view)
	}
	if !strings.Contains(view, "L4-5") {
		t.Errorf("view should show second anchor, got:\n%s", view)
	}
}

func TestPanelShowsPreviewOfFirstQuestion(t *testing.T) {
	panel, store := newTestPanel(t)
	th := makeThread(t, store, 1, 2)
	longQuestion := strings.Repeat("why ", 40)
	if _, err := store.AddMessage(th.ID, thread.RoleUser, longQuestion, true); err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}

	view := panel.View()
	if !strings.Contains(view, "...") {
		t.Error("long preview should be truncated with an ellipsis")
	}
	if strings.Contains(view, longQuestion) {
		t.Error("full question must not appear in the list row")
	}
}

func TestPanelRendersActiveConversation(t *testing.T) {
	panel, store := newTestPanel(t)
	th := makeThread(t, store, 2, 3)
	if _, err := store.AddMessage(th.ID, thread.RoleUser, "what does this do?", true); err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}
	if _, err := store.AddMessage(th.ID, thread.RoleAssistant, "It iterates the list.", true); err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}

	view := panel.View()
	if !strings.Contains(view, "what does this do?") {
		t.Error("conversation should include the user question")
	}
	if !strings.Contains(view, "iterates the list") {
		t.Error("conversation should include the assistant reply")
	}
}

func TestStreamingMessageRendersRaw(t *testing.T) {
	panel, store := newTestPanel(t)
	th := makeThread(t, store, 1, 2)
	msg, err := store.AddMessage(th.ID, thread.RoleAssistant, "", false)
	if err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}
	store.UpdateMessage(msg.ID, thread.MessageUpdate{Content: strPtr("**partial markdo")})

	// Mid-stream content passes through untouched, even broken markdown.
	got := panel.renderAssistantContent(store.Thread(th.ID).Messages[0])
	if got != "**partial markdo" {
		t.Errorf("streaming content = %q, want raw passthrough", got)
	}
}

func TestMoveSelectionClamps(t *testing.T) {
	panel, store := newTestPanel(t)
	makeThread(t, store, 1, 2)
	makeThread(t, store, 3, 4)

	panel.MoveSelection(-5)
	if th := panel.SelectedThread(); th == nil || th.Selection.StartLine != 1 {
		t.Error("selection should clamp to the first thread")
	}

	panel.MoveSelection(10)
	if th := panel.SelectedThread(); th == nil || th.Selection.StartLine != 3 {
		t.Error("selection should clamp to the last thread")
	}
}

func TestSelectThreadByID(t *testing.T) {
	panel, store := newTestPanel(t)
	makeThread(t, store, 1, 2)
	second := makeThread(t, store, 3, 4)

	panel.SelectThread(second.ID)
	if th := panel.SelectedThread(); th == nil || th.ID != second.ID {
		t.Error("SelectThread should move the list selection")
	}
}

func strPtr(s string) *string { return &s }
