// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package review drives one conversation turn from submission to a sealed
// assistant reply.
//
// The Controller composes the thread store and the streaming client: it
// appends the user message and an assistant placeholder, streams the model's
// answer into the placeholder through a coalescing throttle gate, and seals
// the message when the stream ends or fails. A failed stream keeps whatever
// partial text arrived, followed by a visible error line; the thread is
// never left stuck with an open placeholder.
package review
