// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package thread

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/revu-tui/internal/editor"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// MaxThreads caps live threads per document.
	MaxThreads = 50

	// MaxMessagesPerThread caps messages within a single thread.
	MaxMessagesPerThread = 100

	// ColorCount is the size of the thread marker palette. Color indices
	// cycle 1..ColorCount in creation order.
	ColorCount = 8
)

// ============================================================================
// TYPES
// ============================================================================

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageMetadata carries optional provenance for assistant messages.
type MessageMetadata struct {
	Model      string `json:"model,omitempty"`
	TokensUsed int    `json:"tokensUsed,omitempty"`
}

// Message is one turn in a thread. Messages are append-only: once added the
// only fields that change are Content, StreamComplete, and Metadata, and only
// through Store.UpdateMessage.
type Message struct {
	ID             string           `json:"id"`
	ThreadID       string           `json:"threadId"`
	Role           Role             `json:"role"`
	Content        string           `json:"content"`
	Timestamp      time.Time        `json:"timestamp"`
	StreamComplete bool             `json:"streamComplete"`
	Metadata       *MessageMetadata `json:"metadata,omitempty"`
}

// MessageUpdate is a partial patch applied by Store.UpdateMessage. Nil fields
// are left untouched.
type MessageUpdate struct {
	Content        *string
	StreamComplete *bool
	Model          *string
	TokensUsed     *int
}

// Thread is a conversation anchored to a code selection. The selection is
// fixed at creation and never changes afterward, even if the document does.
type Thread struct {
	ID         string           `json:"id"`
	DocumentID string           `json:"documentId"`
	Selection  editor.Selection `json:"selection"`
	Messages   []*Message       `json:"messages"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
	Resolved   bool             `json:"resolved"`
	ColorIndex int              `json:"colorIndex"`
}

// newThreadID returns a fresh thread identifier.
func newThreadID() string {
	return "thr_" + uuid.NewString()
}

// NewMessageID returns a fresh message identifier. Exported so the
// conversation controller can mint placeholder ids before streaming begins.
func NewMessageID() string {
	return "msg_" + uuid.NewString()
}

// MessageByID returns the message with the given id, or nil.
func (t *Thread) MessageByID(id string) *Message {
	for _, m := range t.Messages {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// LastMessage returns the most recent message, or nil for an empty thread.
func (t *Thread) LastMessage() *Message {
	if len(t.Messages) == 0 {
		return nil
	}
	return t.Messages[len(t.Messages)-1]
}

// clone returns a deep copy so callers can hold snapshots without racing the
// store's own mutations.
func (t *Thread) clone() *Thread {
	cp := *t
	cp.Messages = make([]*Message, len(t.Messages))
	for i, m := range t.Messages {
		mc := *m
		if m.Metadata != nil {
			md := *m.Metadata
			mc.Metadata = &md
		}
		cp.Messages[i] = &mc
	}
	return &cp
}
