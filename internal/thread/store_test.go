// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package thread

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jeranaias/revu-tui/internal/editor"
)

const testDoc = "doc_test"

func testSelection(t *testing.T, start, end int) editor.Selection {
	t.Helper()
	content := ""
	for i := 1; i <= end+2; i++ {
		content += fmt.Sprintf("line %d\n", i)
	}
	sel, err := editor.NewSelection(editor.LineRange(content, start, end), content, editor.DefaultContextLines)
	if err != nil {
		t.Fatalf("NewSelection(%d, %d): %v", start, end, err)
	}
	return sel
}

func TestCreateThreadAssignsColorAndActivates(t *testing.T) {
	s := NewStore(nil)
	for i := 1; i <= 10; i++ {
		th, err := s.CreateThread(testSelection(t, i, i), testDoc)
		if err != nil {
			t.Fatalf("CreateThread %d: %v", i, err)
		}
		want := ((i - 1) % ColorCount) + 1
		if th.ColorIndex != want {
			t.Errorf("thread %d: colorIndex = %d, want %d", i, th.ColorIndex, want)
		}
		if s.ActiveThreadID() != th.ID {
			t.Errorf("thread %d: not active after creation", i)
		}
	}
}

func TestThreadCapacity(t *testing.T) {
	s := NewStore(nil)
	for i := 0; i < MaxThreads; i++ {
		if _, err := s.CreateThread(testSelection(t, 1, 1), testDoc); err != nil {
			t.Fatalf("CreateThread %d: %v", i, err)
		}
	}
	_, err := s.CreateThread(testSelection(t, 1, 1), testDoc)
	if err == nil {
		t.Fatal("expected capacity error for thread 51")
	}
	if !errors.Is(err, ErrThreadCapacity) {
		t.Errorf("error = %v, want thread CapacityError", err)
	}
	if got := s.Count(); got != MaxThreads {
		t.Errorf("count after refused create = %d, want %d", got, MaxThreads)
	}

	// Deleting one frees a slot.
	s.DeleteThread(s.Threads()[0].ID)
	if _, err := s.CreateThread(testSelection(t, 1, 1), testDoc); err != nil {
		t.Errorf("CreateThread after delete: %v", err)
	}
}

func TestMessageCapacity(t *testing.T) {
	s := NewStore(nil)
	th, err := s.CreateThread(testSelection(t, 1, 3), testDoc)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < MaxMessagesPerThread; i++ {
		if _, err := s.AddMessage(th.ID, RoleUser, fmt.Sprintf("msg %d", i), true); err != nil {
			t.Fatalf("AddMessage %d: %v", i, err)
		}
	}
	_, err = s.AddMessage(th.ID, RoleUser, "one too many", true)
	if !errors.Is(err, ErrMessageCapacity) {
		t.Errorf("error = %v, want message CapacityError", err)
	}
	if got := len(s.Thread(th.ID).Messages); got != MaxMessagesPerThread {
		t.Errorf("message count = %d, want %d", got, MaxMessagesPerThread)
	}
}

func TestAddMessageUnknownThread(t *testing.T) {
	s := NewStore(nil)
	if _, err := s.AddMessage("thr_missing", RoleUser, "hello", true); !errors.Is(err, ErrThreadNotFound) {
		t.Errorf("error = %v, want ErrThreadNotFound", err)
	}
}

func TestMessageOrderingPreserved(t *testing.T) {
	s := NewStore(nil)
	th, _ := s.CreateThread(testSelection(t, 1, 2), testDoc)
	contents := []string{"first", "second", "third", "fourth"}
	for _, c := range contents {
		if _, err := s.AddMessage(th.ID, RoleUser, c, true); err != nil {
			t.Fatal(err)
		}
	}
	got := s.Thread(th.ID)
	for i, m := range got.Messages {
		if m.Content != contents[i] {
			t.Errorf("message %d = %q, want %q", i, m.Content, contents[i])
		}
	}
}

func TestUpdateMessagePartialPatch(t *testing.T) {
	s := NewStore(nil)
	th, _ := s.CreateThread(testSelection(t, 1, 2), testDoc)
	m, _ := s.AddMessage(th.ID, RoleAssistant, "", false)

	content := "streamed text"
	s.UpdateMessage(m.ID, MessageUpdate{Content: &content})

	got := s.Thread(th.ID).MessageByID(m.ID)
	if got.Content != content {
		t.Errorf("content = %q, want %q", got.Content, content)
	}
	if got.StreamComplete {
		t.Error("StreamComplete flipped by content-only patch")
	}

	sealed := true
	model := "claude-3-5-sonnet-20241022"
	s.UpdateMessage(m.ID, MessageUpdate{StreamComplete: &sealed, Model: &model})

	got = s.Thread(th.ID).MessageByID(m.ID)
	if !got.StreamComplete {
		t.Error("message not sealed")
	}
	if got.Content != content {
		t.Errorf("seal patch clobbered content: %q", got.Content)
	}
	if got.Metadata == nil || got.Metadata.Model != model {
		t.Errorf("metadata = %+v, want model %q", got.Metadata, model)
	}
}

func TestUpdateAfterDeleteIsNoOp(t *testing.T) {
	s := NewStore(nil)
	th, _ := s.CreateThread(testSelection(t, 1, 2), testDoc)
	m, _ := s.AddMessage(th.ID, RoleAssistant, "", false)

	s.DeleteThread(th.ID)

	// A streaming callback landing after deletion must neither fail nor
	// resurrect the thread.
	content := "late delta"
	s.UpdateMessage(m.ID, MessageUpdate{Content: &content})

	if s.Count() != 0 {
		t.Errorf("thread count = %d after late update, want 0", s.Count())
	}
	if s.MessageExists(m.ID) {
		t.Error("deleted message reported as existing")
	}
}

func TestDeleteActiveClearsActive(t *testing.T) {
	s := NewStore(nil)
	th, _ := s.CreateThread(testSelection(t, 1, 1), testDoc)
	s.DeleteThread(th.ID)
	if s.ActiveThreadID() != "" {
		t.Errorf("active = %q after deleting active thread, want empty", s.ActiveThreadID())
	}
}

func TestResolveReopenLifecycle(t *testing.T) {
	s := NewStore(nil)
	th, _ := s.CreateThread(testSelection(t, 2, 4), testDoc)

	if err := s.ResolveThread(th.ID); err != nil {
		t.Fatal(err)
	}
	got := s.Thread(th.ID)
	if !got.Resolved {
		t.Error("thread not resolved")
	}
	// Resolution only flips status: the thread stays active and stays
	// anchored to its lines.
	if s.ActiveThreadID() != th.ID {
		t.Errorf("active = %q after resolve, want %q", s.ActiveThreadID(), th.ID)
	}
	markers := s.ThreadsContainingLine(3)
	if len(markers) != 1 {
		t.Fatalf("resolved thread missing from line 3: %d", len(markers))
	}
	if !markers[0].Resolved {
		t.Error("line query lost the resolved flag")
	}

	if err := s.ReopenThread(th.ID); err != nil {
		t.Fatal(err)
	}
	got = s.Thread(th.ID)
	if got.Resolved {
		t.Error("thread still resolved after reopen")
	}
	if len(got.Messages) != 0 {
		t.Errorf("reopen changed message count: %d", len(got.Messages))
	}

	if err := s.ResolveThread("thr_missing"); !errors.Is(err, ErrThreadNotFound) {
		t.Errorf("resolve unknown = %v, want ErrThreadNotFound", err)
	}
}

func TestThreadsContainingLine(t *testing.T) {
	s := NewStore(nil)
	a, _ := s.CreateThread(testSelection(t, 1, 5), testDoc)
	b, _ := s.CreateThread(testSelection(t, 3, 3), testDoc)
	_, _ = s.CreateThread(testSelection(t, 10, 12), testDoc)

	got := s.ThreadsContainingLine(3)
	if len(got) != 2 {
		t.Fatalf("line 3 threads = %d, want 2", len(got))
	}
	if got[0].ID != a.ID || got[1].ID != b.ID {
		t.Error("threads not in creation order")
	}
	if got := s.ThreadsContainingLine(0); got != nil {
		t.Errorf("line 0 should return nil, got %d threads", len(got))
	}
}

func TestSetActiveThread(t *testing.T) {
	s := NewStore(nil)
	a, _ := s.CreateThread(testSelection(t, 1, 1), testDoc)
	b, _ := s.CreateThread(testSelection(t, 2, 2), testDoc)

	if s.ActiveThreadID() != b.ID {
		t.Fatal("latest thread should be active")
	}
	s.SetActiveThread(a.ID)
	if s.ActiveThreadID() != a.ID {
		t.Error("SetActiveThread did not switch")
	}
	s.SetActiveThread("")
	if s.ActiveThreadID() != "" {
		t.Error("empty id should clear the active thread")
	}
	// Existence is not validated; a dangling id reads as no active thread.
	s.SetActiveThread("thr_missing")
	if s.ActiveThread() != nil {
		t.Error("dangling active id resolved to a thread")
	}
}

func TestIsStreaming(t *testing.T) {
	s := NewStore(nil)
	th, _ := s.CreateThread(testSelection(t, 1, 1), testDoc)
	if s.IsStreaming(th.ID) {
		t.Error("empty thread reported streaming")
	}
	m, _ := s.AddMessage(th.ID, RoleAssistant, "", false)
	if !s.IsStreaming(th.ID) {
		t.Error("open placeholder not reported streaming")
	}
	sealed := true
	s.UpdateMessage(m.ID, MessageUpdate{StreamComplete: &sealed})
	if s.IsStreaming(th.ID) {
		t.Error("sealed thread reported streaming")
	}
}

func TestHistorySkipsOpenAndEmpty(t *testing.T) {
	s := NewStore(nil)
	th, _ := s.CreateThread(testSelection(t, 1, 1), testDoc)
	s.AddMessage(th.ID, RoleUser, "what does this do?", true)
	s.AddMessage(th.ID, RoleAssistant, "It declares a constant.", true)
	s.AddMessage(th.ID, RoleUser, "thanks", true)
	s.AddMessage(th.ID, RoleAssistant, "partial answ", false) // still streaming

	turns := s.History(th.ID)
	if len(turns) != 3 {
		t.Fatalf("history length = %d, want 3", len(turns))
	}
	if turns[0].Role != RoleUser || turns[1].Role != RoleAssistant {
		t.Error("history roles out of order")
	}
}

func TestSubscribeNotifyUnsubscribe(t *testing.T) {
	s := NewStore(nil)
	calls := 0
	unsub := s.Subscribe(func() { calls++ })

	th, _ := s.CreateThread(testSelection(t, 1, 1), testDoc)
	s.AddMessage(th.ID, RoleUser, "hi", true)
	if calls != 2 {
		t.Errorf("listener calls = %d, want 2", calls)
	}

	unsub()
	s.DeleteThread(th.ID)
	if calls != 2 {
		t.Errorf("listener called after unsubscribe: %d", calls)
	}
}

type countingPersister struct {
	saves int
	last  Snapshot
}

func (p *countingPersister) SaveThreads(snap Snapshot) error {
	p.saves++
	p.last = snap
	return nil
}

func TestPersistAfterEveryMutation(t *testing.T) {
	p := &countingPersister{}
	s := NewStore(p)

	th, _ := s.CreateThread(testSelection(t, 1, 2), testDoc)
	m, _ := s.AddMessage(th.ID, RoleUser, "hello", true)
	content := "hello there"
	s.UpdateMessage(m.ID, MessageUpdate{Content: &content})
	s.ResolveThread(th.ID)
	s.DeleteThread(th.ID)

	if p.saves != 5 {
		t.Errorf("persist calls = %d, want 5", p.saves)
	}
	if len(p.last.Threads) != 0 {
		t.Errorf("final snapshot has %d threads, want 0", len(p.last.Threads))
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	s := NewStore(nil)
	th, _ := s.CreateThread(testSelection(t, 2, 4), testDoc)
	s.AddMessage(th.ID, RoleUser, "question", true)
	s.AddMessage(th.ID, RoleAssistant, "cut off mid-str", false)

	snap := s.SnapshotState()

	restored := NewStore(nil)
	restored.Restore(snap, testDoc)

	got := restored.Thread(th.ID)
	if got == nil {
		t.Fatal("thread lost in round trip")
	}
	if len(got.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(got.Messages))
	}
	if !got.Messages[1].StreamComplete {
		t.Error("interrupted stream not sealed on restore")
	}
	if restored.ActiveThreadID() != th.ID {
		t.Errorf("active = %q, want %q", restored.ActiveThreadID(), th.ID)
	}

	// Active id that no longer resolves is cleared, not kept dangling.
	snap.ActiveThreadID = "thr_gone"
	restored.Restore(snap, testDoc)
	if restored.ActiveThreadID() != "" {
		t.Error("dangling active id not cleared")
	}
}

func TestRestoreFiltersOtherDocuments(t *testing.T) {
	s := NewStore(nil)
	mine, _ := s.CreateThread(testSelection(t, 1, 2), testDoc)
	other, _ := s.CreateThread(testSelection(t, 3, 4), "doc_other")
	snap := s.SnapshotState()

	restored := NewStore(nil)
	restored.Restore(snap, testDoc)

	if restored.Thread(mine.ID) == nil {
		t.Error("thread for the open document lost on restore")
	}
	if restored.Thread(other.ID) != nil {
		t.Error("thread for a different document re-attached on restore")
	}
	if restored.Count() != 1 {
		t.Errorf("restored count = %d, want 1", restored.Count())
	}
	// The filtered-out thread was active; the active id must not dangle.
	if restored.ActiveThreadID() != "" {
		t.Errorf("active = %q, want empty after its thread was filtered", restored.ActiveThreadID())
	}
}

func TestRestoreKeepsThreadsWithoutDocumentID(t *testing.T) {
	// Records written before the document id existed load as belonging to
	// the open document.
	s := NewStore(nil)
	th, _ := s.CreateThread(testSelection(t, 1, 2), "")
	snap := s.SnapshotState()

	restored := NewStore(nil)
	restored.Restore(snap, testDoc)
	if restored.Thread(th.ID) == nil {
		t.Error("thread with empty document id dropped on restore")
	}
}
