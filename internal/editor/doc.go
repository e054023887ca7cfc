// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package editor provides the code document model and selection capture.
//
// A Selection is an immutable snapshot of a highlighted code range plus the
// surrounding lines at the moment a thread is created; it is never refreshed
// when the underlying document changes. The package also carries the
// language auto-detection heuristics and the bundled example documents the
// app opens with.
package editor
