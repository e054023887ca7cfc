// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for revu.
//
// It contains string truncation utilities that are safe for UTF-8 and
// wide (CJK) characters, and a crash-safe atomic file writer used by the
// persistence layer.
package util
