// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"github.com/jeranaias/revu-tui/internal/editor"
	"github.com/jeranaias/revu-tui/internal/thread"
	"github.com/jeranaias/revu-tui/internal/util"
)

const (
	threadsFile = "threads.json"
	editorFile  = "editor.json"
)

// EditorState is the persisted editor record: the open document and the
// current (uncommitted) selection, if any.
type EditorState struct {
	Document         *editor.Document  `json:"document,omitempty"`
	CurrentSelection *editor.Selection `json:"currentSelection,omitempty"`
}

// =============================================================================
// WORKSPACE STORE
// =============================================================================

// WorkspaceStore reads and writes the two workspace records. It satisfies
// thread.Persister so the thread store can save after every mutation.
type WorkspaceStore struct {
	// BaseDir is the directory holding the records.
	// Default: ~/.revu/workspace/
	BaseDir string
}

// NewWorkspaceStore creates a store rooted at ~/.revu/workspace.
func NewWorkspaceStore() (*WorkspaceStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewWorkspaceStoreWithDir(filepath.Join(homeDir, ".revu", "workspace"))
}

// NewWorkspaceStoreWithDir creates a store with a custom directory.
func NewWorkspaceStoreWithDir(baseDir string) (*WorkspaceStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &WorkspaceStore{BaseDir: baseDir}, nil
}

// =============================================================================
// THREAD RECORD
// =============================================================================

// SaveThreads persists the thread snapshot. Implements thread.Persister.
func (s *WorkspaceStore) SaveThreads(snap thread.Snapshot) error {
	return s.writeRecord(threadsFile, snap)
}

// LoadThreads reads the thread record. A missing or unreadable record comes
// back empty so a damaged file never blocks startup.
func (s *WorkspaceStore) LoadThreads() thread.Snapshot {
	var snap thread.Snapshot
	if !s.readRecord(threadsFile, &snap) {
		return thread.Snapshot{}
	}
	return snap
}

// =============================================================================
// EDITOR RECORD
// =============================================================================

// SaveEditor persists the editor record.
func (s *WorkspaceStore) SaveEditor(state EditorState) error {
	return s.writeRecord(editorFile, state)
}

// LoadEditor reads the editor record, empty on any failure.
func (s *WorkspaceStore) LoadEditor() EditorState {
	var state EditorState
	if !s.readRecord(editorFile, &state) {
		return EditorState{}
	}
	return state
}

// =============================================================================
// RECORD I/O
// =============================================================================

func (s *WorkspaceStore) writeRecord(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	return util.AtomicWriteFile(filepath.Join(s.BaseDir, name), data, 0644)
}

// readRecord fills v from the named record and reports whether the decode
// succeeded. On corruption the bad file is set aside with a .corrupt suffix
// so the next save starts clean and the original bytes stay recoverable.
func (s *WorkspaceStore) readRecord(name string, v any) bool {
	path := filepath.Join(s.BaseDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("storage: read %s: %v", name, err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Printf("storage: %s is corrupt, starting fresh: %v", name, err)
		if renameErr := os.Rename(path, path+".corrupt"); renameErr != nil {
			log.Printf("storage: set aside %s: %v", name, renameErr)
		}
		return false
	}
	return true
}
