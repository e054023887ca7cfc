// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists review workspaces to disk as JSON.
//
// Two records live under the base directory: threads.json holds every
// thread plus the active thread id, and editor.json holds the open document
// and current selection. Writes are atomic (temp file, fsync, rename) so a
// crash mid-save never leaves a truncated record. Loads are tolerant: a
// missing or corrupt file yields an empty record, never an error that would
// block startup.
package storage
