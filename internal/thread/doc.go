// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package thread owns review threads and their messages.
//
// The Store is the single source of truth for the thread collection, the
// active-thread pointer, thread lifecycle (create, resolve, reopen, delete)
// and message append/update. Every mutation is atomic, persisted through the
// configured Persister, and announced to subscribers. Update paths treat
// missing entities as benign no-ops so that delete races coming from the UI
// never fail.
package thread
