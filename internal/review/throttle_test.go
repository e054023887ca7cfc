// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package review

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// commitRecorder collects gate commits in order.
type commitRecorder struct {
	mu      sync.Mutex
	commits []string
}

func (r *commitRecorder) commit(content string) {
	r.mu.Lock()
	r.commits = append(r.commits, content)
	r.mu.Unlock()
}

func (r *commitRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.commits))
	copy(out, r.commits)
	return out
}

func TestGateCoalescesRapidUpdates(t *testing.T) {
	rec := &commitRecorder{}
	gate := NewGate(50*time.Millisecond, rec.commit)

	// Fire far faster than the window; every update carries the buffer so
	// far, mimicking a streaming accumulation.
	var buf strings.Builder
	const n = 40
	for i := 0; i < n; i++ {
		buf.WriteString(fmt.Sprintf("%d ", i))
		gate.Update(buf.String())
	}
	gate.Flush()

	commits := rec.all()
	if len(commits) >= n {
		t.Errorf("commits = %d, want fewer than %d increments", len(commits), n)
	}
	if len(commits) == 0 {
		t.Fatal("no commits at all")
	}
	if got := commits[len(commits)-1]; got != buf.String() {
		t.Errorf("final commit = %q, want full buffer %q", got, buf.String())
	}
}

func TestGateFlushWithoutFire(t *testing.T) {
	rec := &commitRecorder{}
	gate := NewGate(time.Hour, rec.commit) // never fires on its own

	updates := []string{"a", "ab", "abc"}
	for _, u := range updates {
		gate.Update(u)
	}
	gate.Flush()

	commits := rec.all()
	if len(commits) != 1 {
		t.Fatalf("commits = %d, want exactly 1", len(commits))
	}
	if commits[0] != "abc" {
		t.Errorf("commit = %q, want latest payload %q", commits[0], "abc")
	}
}

func TestGateFlushIdleIsNoOp(t *testing.T) {
	rec := &commitRecorder{}
	gate := NewGate(time.Millisecond, rec.commit)

	gate.Flush()
	if len(rec.all()) != 0 {
		t.Error("flush with nothing pending committed something")
	}

	// After a fire the gate is idle again; a second flush stays silent.
	gate.Update("x")
	time.Sleep(20 * time.Millisecond)
	gate.Flush()
	if got := rec.all(); len(got) != 1 || got[0] != "x" {
		t.Errorf("commits = %v, want exactly [x]", got)
	}
}

func TestGateScheduledFire(t *testing.T) {
	rec := &commitRecorder{}
	gate := NewGate(10*time.Millisecond, rec.commit)

	gate.Update("first")
	gate.Update("second") // replaces pending payload

	time.Sleep(40 * time.Millisecond)

	commits := rec.all()
	if len(commits) != 1 {
		t.Fatalf("commits = %d, want 1", len(commits))
	}
	if commits[0] != "second" {
		t.Errorf("commit = %q, intermediate payload not replaced", commits[0])
	}
}

func TestGateIndependentInstances(t *testing.T) {
	recA := &commitRecorder{}
	recB := &commitRecorder{}
	gateA := NewGate(time.Hour, recA.commit)
	gateB := NewGate(time.Hour, recB.commit)

	gateA.Update("thread A")
	gateB.Update("thread B")
	gateA.Flush()

	if got := recA.all(); len(got) != 1 || got[0] != "thread A" {
		t.Errorf("gate A commits = %v", got)
	}
	if len(recB.all()) != 0 {
		t.Error("flushing one gate drained another")
	}
}
