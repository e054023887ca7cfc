// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package anthropic is a client for the Anthropic Messages API.
//
// It covers the two surfaces revu needs: streaming message completion over
// SSE, and the model catalog with tier resolution (haiku/sonnet/opus mapped
// to the newest matching model id, with hardcoded fallbacks when the catalog
// is unreachable). Catalog lookups are cached for an hour and a single
// refresh is shared between concurrent callers.
package anthropic
