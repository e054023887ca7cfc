// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package review

import (
	"sync"
	"time"
)

// DefaultThrottleWindow is the delay between committed updates while a
// stream is running. Deltas arrive far faster than a screen needs to
// repaint; everything inside one window collapses into the latest payload.
const DefaultThrottleWindow = 50 * time.Millisecond

// CommitFunc receives the coalesced payload when the gate fires.
type CommitFunc func(content string)

// Gate coalesces rapid updates into at most one commit per delay window.
// The first Update schedules a commit; updates landing before it fires
// replace the pending payload rather than queueing. One gate serves exactly
// one streaming turn, so concurrent threads never share timers.
type Gate struct {
	mu      sync.Mutex
	delay   time.Duration
	commit  CommitFunc
	timer   *time.Timer
	payload string
	pending bool
}

// NewGate creates a gate that calls commit with the latest payload at most
// once per delay window. delay <= 0 falls back to DefaultThrottleWindow.
func NewGate(delay time.Duration, commit CommitFunc) *Gate {
	if delay <= 0 {
		delay = DefaultThrottleWindow
	}
	return &Gate{
		delay:  delay,
		commit: commit,
	}
}

// Update records content as the pending payload, replacing any payload not
// yet committed. If no commit is scheduled, one is scheduled after the delay
// window.
func (g *Gate) Update(content string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payload = content
	if g.pending {
		return
	}
	g.pending = true
	g.timer = time.AfterFunc(g.delay, g.fire)
}

// fire commits the pending payload on timer expiry.
func (g *Gate) fire() {
	g.mu.Lock()
	if !g.pending {
		g.mu.Unlock()
		return
	}
	payload := g.payload
	g.pending = false
	g.timer = nil
	g.mu.Unlock()
	g.commit(payload)
}

// Flush commits any pending payload immediately and cancels the timer.
// No-op when nothing is pending. Callers must flush before sealing a
// message so the final committed content matches the true final buffer.
func (g *Gate) Flush() {
	g.mu.Lock()
	if !g.pending {
		g.mu.Unlock()
		return
	}
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	payload := g.payload
	g.pending = false
	g.mu.Unlock()
	g.commit(payload)
}
