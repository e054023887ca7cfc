// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the revu terminal interface.
//
// This file defines the Bubble Tea messages that flow through the update
// loop and the commands that produce them.
package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/revu-tui/internal/review"
)

// =============================================================================
// MESSAGES
// =============================================================================

// StoreChangedMsg signals that the thread store mutated and the view must
// re-render from store state.
type StoreChangedMsg struct{}

// TurnDoneMsg signals that a SendTurn call finished, successfully or not.
// The store already holds the sealed assistant message either way; Err is
// only used for the status line.
type TurnDoneMsg struct {
	ThreadID string
	Err      error
}

// StatusExpiredMsg clears a transient status line message.
type StatusExpiredMsg struct{}

// =============================================================================
// COMMANDS
// =============================================================================

// waitForChange blocks on the store notification channel and converts the
// next notification into a StoreChangedMsg. The update loop re-issues it
// after every delivery.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return StoreChangedMsg{}
	}
}

// sendTurn runs a full conversation turn in the background. Streaming
// progress surfaces through store notifications; this command only reports
// the final outcome.
func sendTurn(ctrl *review.Controller, threadID, text string) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.SendTurn(context.Background(), threadID, text)
		return TurnDoneMsg{ThreadID: threadID, Err: err}
	}
}

// expireStatus clears the status line after the given delay.
func expireStatus(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return StatusExpiredMsg{}
	})
}
