// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package thread

import (
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/revu-tui/internal/editor"
)

// ============================================================================
// PERSISTENCE CONTRACT
// ============================================================================

// Snapshot is the serializable state of a Store. It is what persisters save
// and what Restore loads.
type Snapshot struct {
	Threads        []*Thread `json:"threads"`
	ActiveThreadID string    `json:"activeThreadId,omitempty"`
}

// Persister receives a snapshot after every successful mutation. Failures
// must not block the conversation, so the store logs them and moves on.
type Persister interface {
	SaveThreads(snap Snapshot) error
}

// ============================================================================
// STORE
// ============================================================================

// Store owns all threads for one document. All methods are safe for
// concurrent use.
type Store struct {
	mu        sync.Mutex
	threads   []*Thread
	active    string
	msgIndex  map[string]string // message id -> thread id
	listeners map[int]func()
	nextSub   int
	persist   Persister
}

// NewStore returns an empty store. persist may be nil for ephemeral use
// (tests, dry runs).
func NewStore(persist Persister) *Store {
	return &Store{
		msgIndex:  make(map[string]string),
		listeners: make(map[int]func()),
		persist:   persist,
	}
}

// Subscribe registers fn to run after every mutation. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// afterMutation persists and notifies. Call with the lock HELD; it releases
// nothing itself but snapshots what it needs so listeners run unlocked.
func (s *Store) afterMutation() (fns []func()) {
	if s.persist != nil {
		if err := s.persist.SaveThreads(s.snapshotLocked()); err != nil {
			// RELIABILITY: a failed save must never take down the
			// conversation. The in-memory state stays authoritative.
			log.Printf("thread: persist failed: %v", err)
		}
	}
	fns = make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	return fns
}

func runListeners(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

// ============================================================================
// THREAD LIFECYCLE
// ============================================================================

// CreateThread anchors a new thread to sel on the given document and makes
// it active. The color index is assigned from the palette by creation order:
// the Nth thread ever created while N-1 others exist gets
// ((count) mod ColorCount) + 1.
func (s *Store) CreateThread(sel editor.Selection, documentID string) (*Thread, error) {
	s.mu.Lock()
	if len(s.threads) >= MaxThreads {
		s.mu.Unlock()
		return nil, &CapacityError{Resource: "threads", Limit: MaxThreads}
	}
	now := time.Now()
	t := &Thread{
		ID:         newThreadID(),
		DocumentID: documentID,
		Selection:  sel,
		Messages:   []*Message{},
		CreatedAt:  now,
		UpdatedAt:  now,
		ColorIndex: (len(s.threads) % ColorCount) + 1,
	}
	s.threads = append(s.threads, t)
	s.active = t.ID
	fns := s.afterMutation()
	out := t.clone()
	s.mu.Unlock()
	runListeners(fns)
	return out, nil
}

// DeleteThread removes a thread and all its messages. Deleting the active
// thread clears the active selection. Deleting an unknown id is a no-op.
func (s *Store) DeleteThread(id string) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	for _, m := range s.threads[idx].Messages {
		delete(s.msgIndex, m.ID)
	}
	s.threads = append(s.threads[:idx], s.threads[idx+1:]...)
	if s.active == id {
		s.active = ""
	}
	fns := s.afterMutation()
	s.mu.Unlock()
	runListeners(fns)
}

// ResolveThread marks a thread resolved. Resolution only flips status; the
// active thread is untouched.
func (s *Store) ResolveThread(id string) error {
	return s.setResolved(id, true)
}

// ReopenThread clears the resolved flag. It does not change which thread is
// active.
func (s *Store) ReopenThread(id string) error {
	return s.setResolved(id, false)
}

func (s *Store) setResolved(id string, resolved bool) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrThreadNotFound
	}
	t := s.threads[idx]
	t.Resolved = resolved
	t.UpdatedAt = time.Now()
	fns := s.afterMutation()
	s.mu.Unlock()
	runListeners(fns)
	return nil
}

// SetActiveThread switches focus. Pass "" to clear. Existence is not
// validated; the UI may legitimately point at a thread it is about to
// create, and readers already treat a dangling id as no active thread.
func (s *Store) SetActiveThread(id string) {
	s.mu.Lock()
	if s.active == id {
		s.mu.Unlock()
		return
	}
	s.active = id
	fns := s.afterMutation()
	s.mu.Unlock()
	runListeners(fns)
}

// ============================================================================
// MESSAGES
// ============================================================================

// AddMessage appends a message to a thread. Role and content are the
// caller's; the store assigns the id, timestamp, and thread linkage. Newly
// added messages start with StreamComplete=false so streaming placeholders
// and user turns share one path; callers seal user turns immediately.
func (s *Store) AddMessage(threadID string, role Role, content string, streamComplete bool) (*Message, error) {
	s.mu.Lock()
	idx := s.indexLocked(threadID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, ErrThreadNotFound
	}
	t := s.threads[idx]
	if len(t.Messages) >= MaxMessagesPerThread {
		s.mu.Unlock()
		return nil, &CapacityError{Resource: "messages", Limit: MaxMessagesPerThread}
	}
	m := &Message{
		ID:             NewMessageID(),
		ThreadID:       t.ID,
		Role:           role,
		Content:        content,
		Timestamp:      time.Now(),
		StreamComplete: streamComplete,
	}
	t.Messages = append(t.Messages, m)
	t.UpdatedAt = m.Timestamp
	s.msgIndex[m.ID] = t.ID
	fns := s.afterMutation()
	out := *m
	s.mu.Unlock()
	runListeners(fns)
	return &out, nil
}

// UpdateMessage patches a message in place. A missing message id is a benign
// no-op: streaming callbacks routinely land after the user deletes the
// thread, and that race must not resurrect anything or fail.
func (s *Store) UpdateMessage(messageID string, upd MessageUpdate) {
	s.mu.Lock()
	threadID, ok := s.msgIndex[messageID]
	if !ok {
		s.mu.Unlock()
		return
	}
	idx := s.indexLocked(threadID)
	if idx < 0 {
		// Stale index entry; the thread is gone.
		delete(s.msgIndex, messageID)
		s.mu.Unlock()
		return
	}
	t := s.threads[idx]
	m := t.MessageByID(messageID)
	if m == nil {
		delete(s.msgIndex, messageID)
		s.mu.Unlock()
		return
	}
	if upd.Content != nil {
		m.Content = *upd.Content
	}
	if upd.StreamComplete != nil {
		m.StreamComplete = *upd.StreamComplete
	}
	if upd.Model != nil || upd.TokensUsed != nil {
		if m.Metadata == nil {
			m.Metadata = &MessageMetadata{}
		}
		if upd.Model != nil {
			m.Metadata.Model = *upd.Model
		}
		if upd.TokensUsed != nil {
			m.Metadata.TokensUsed = *upd.TokensUsed
		}
	}
	t.UpdatedAt = time.Now()
	fns := s.afterMutation()
	s.mu.Unlock()
	runListeners(fns)
}

// ============================================================================
// QUERIES
// ============================================================================

// Thread returns a deep copy of the thread with the given id, or nil.
func (s *Store) Thread(id string) *Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return nil
	}
	return s.threads[idx].clone()
}

// Threads returns deep copies of all threads in creation order.
func (s *Store) Threads() []*Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Thread, len(s.threads))
	for i, t := range s.threads {
		out[i] = t.clone()
	}
	return out
}

// Count returns the number of live threads.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.threads)
}

// ActiveThreadID returns the active thread id, or "" when none is active.
func (s *Store) ActiveThreadID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ActiveThread returns a deep copy of the active thread, or nil.
func (s *Store) ActiveThread() *Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == "" {
		return nil
	}
	idx := s.indexLocked(s.active)
	if idx < 0 {
		return nil
	}
	return s.threads[idx].clone()
}

// ThreadsContainingLine returns every thread whose anchored selection spans
// the given 1-based line, resolved or not, ordered by creation time. Callers
// that want only open threads filter on Resolved themselves. Line numbers
// below 1 are a caller bug.
func (s *Store) ThreadsContainingLine(line int) []*Thread {
	if line < 1 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Thread
	for _, t := range s.threads {
		if t.Selection.Range.ContainsLine(line) {
			out = append(out, t.clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// MessageExists reports whether a message id is still live. The conversation
// controller uses this to detect deletion races mid-stream.
func (s *Store) MessageExists(messageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	threadID, ok := s.msgIndex[messageID]
	if !ok {
		return false
	}
	return s.indexLocked(threadID) >= 0
}

// IsStreaming reports whether any message in the thread is still streaming.
func (s *Store) IsStreaming(threadID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(threadID)
	if idx < 0 {
		return false
	}
	for _, m := range s.threads[idx].Messages {
		if m.Role == RoleAssistant && !m.StreamComplete {
			return true
		}
	}
	return false
}

// History returns role/content pairs for a thread's sealed turns, oldest
// first, formatted for prompt assembly. Empty and unsealed messages are
// skipped.
func (s *Store) History(threadID string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(threadID)
	if idx < 0 {
		return nil
	}
	var out []Turn
	for _, m := range s.threads[idx].Messages {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		if m.Role == RoleAssistant && !m.StreamComplete {
			continue
		}
		out = append(out, Turn{Role: m.Role, Content: m.Content})
	}
	return out
}

// Turn is one completed exchange entry used for prompt history.
type Turn struct {
	Role    Role
	Content string
}

// ============================================================================
// SNAPSHOT / RESTORE
// ============================================================================

// SnapshotState returns a deep copy of the current state for persistence.
func (s *Store) SnapshotState() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Threads:        make([]*Thread, len(s.threads)),
		ActiveThreadID: s.active,
	}
	for i, t := range s.threads {
		snap.Threads[i] = t.clone()
	}
	return snap
}

// Restore replaces the store's state with a loaded snapshot, keeping only
// threads anchored to the given document: a persisted thread decorating a
// different file must not re-attach to whatever opens next. Threads with no
// recorded document id load as belonging to the open document. Threads
// beyond the capacity cap are dropped, and an active id that no longer
// resolves is cleared. Restore does not persist or notify; it runs before
// the UI starts.
func (s *Store) Restore(snap Snapshot, documentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	threads := snap.Threads
	if len(threads) > MaxThreads {
		threads = threads[:MaxThreads]
	}
	s.threads = make([]*Thread, 0, len(threads))
	s.msgIndex = make(map[string]string)
	for _, t := range threads {
		if t == nil || t.ID == "" {
			continue
		}
		if t.DocumentID != "" && documentID != "" && t.DocumentID != documentID {
			continue
		}
		cp := t.clone()
		if len(cp.Messages) > MaxMessagesPerThread {
			cp.Messages = cp.Messages[:MaxMessagesPerThread]
		}
		for _, m := range cp.Messages {
			m.ThreadID = cp.ID
			// Anything still marked streaming at load time was cut off
			// mid-flight; seal it so the UI never spins forever.
			if !m.StreamComplete {
				m.StreamComplete = true
			}
			s.msgIndex[m.ID] = cp.ID
		}
		s.threads = append(s.threads, cp)
	}
	s.active = ""
	if snap.ActiveThreadID != "" && s.indexLocked(snap.ActiveThreadID) >= 0 {
		s.active = snap.ActiveThreadID
	}
}

func (s *Store) indexLocked(id string) int {
	for i, t := range s.threads {
		if t.ID == id {
			return i
		}
	}
	return -1
}
