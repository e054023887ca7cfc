// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// CatalogTTL is how long a fetched model list stays fresh.
const CatalogTTL = time.Hour

// FallbackModels maps a tier to a known-good model id used whenever the
// catalog cannot be reached. Tier resolution never fails; it degrades to
// these.
var FallbackModels = map[string]string{
	"haiku":  "claude-3-5-haiku-20241022",
	"sonnet": "claude-3-5-sonnet-20241022",
	"opus":   "claude-3-opus-20240229",
}

// ModelInfo describes one entry in the model catalog.
type ModelInfo struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// modelsResponse is one page of the paginated models listing.
type modelsResponse struct {
	Data    []ModelInfo `json:"data"`
	HasMore bool        `json:"has_more"`
	FirstID string      `json:"first_id"`
	LastID  string      `json:"last_id"`
}

// =============================================================================
// MODEL CATALOG
// =============================================================================

// Catalog caches the model listing with a TTL. Concurrent callers share a
// single in-flight refresh instead of piling requests onto the API.
type Catalog struct {
	client *Client

	mu        sync.Mutex
	models    []ModelInfo
	fetchedAt time.Time
	ttl       time.Duration
	inflight  chan struct{} // non-nil while a refresh is running
}

// NewCatalog creates a catalog backed by the given client.
func NewCatalog(client *Client) *Catalog {
	return &Catalog{
		client: client,
		ttl:    CatalogTTL,
	}
}

// WithTTL overrides the cache lifetime.
func (cat *Catalog) WithTTL(ttl time.Duration) *Catalog {
	cat.mu.Lock()
	cat.ttl = ttl
	cat.mu.Unlock()
	return cat
}

// Models returns the cached listing, refreshing it when stale. When a
// refresh is already running the caller waits for that one rather than
// starting another. On refresh failure any stale cache is returned instead
// of an error so the caller can still resolve a model.
func (cat *Catalog) Models(ctx context.Context) ([]ModelInfo, error) {
	for {
		cat.mu.Lock()
		if cat.models != nil && time.Since(cat.fetchedAt) < cat.ttl {
			models := cat.models
			cat.mu.Unlock()
			return models, nil
		}
		if cat.inflight != nil {
			done := cat.inflight
			cat.mu.Unlock()
			select {
			case <-done:
				continue // re-check the cache the refresh just filled
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		done := make(chan struct{})
		cat.inflight = done
		cat.mu.Unlock()

		models, err := cat.fetchAll(ctx)

		cat.mu.Lock()
		cat.inflight = nil
		close(done)
		if err != nil {
			stale := cat.models
			cat.mu.Unlock()
			if stale != nil {
				log.Printf("anthropic: model refresh failed, serving stale catalog: %v", err)
				return stale, nil
			}
			return nil, err
		}
		cat.models = models
		cat.fetchedAt = time.Now()
		cat.mu.Unlock()
		return models, nil
	}
}

// Invalidate drops the cache so the next call refetches.
func (cat *Catalog) Invalidate() {
	cat.mu.Lock()
	cat.models = nil
	cat.fetchedAt = time.Time{}
	cat.mu.Unlock()
}

// fetchAll walks every page of the models listing.
func (cat *Catalog) fetchAll(ctx context.Context) ([]ModelInfo, error) {
	if !cat.client.IsConfigured() {
		return nil, ErrNoCredential
	}

	var all []ModelInfo
	afterID := ""

	for {
		reqURL := cat.client.baseURL + "/models"
		if afterID != "" {
			reqURL += "?after_id=" + url.QueryEscape(afterID)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		cat.client.setHeaders(req)

		resp, err := sharedHTTPClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}

		body, err := readResponse(resp)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			return nil, cat.client.handleErrorResponse(resp.StatusCode, body)
		}

		var page modelsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to parse models response: %w", err)
		}

		all = append(all, page.Data...)
		if !page.HasMore || page.LastID == "" {
			return all, nil
		}
		afterID = page.LastID
	}
}

// =============================================================================
// TIER RESOLUTION
// =============================================================================

// ResolveTier maps a tier name (haiku, sonnet, opus) to the newest model id
// whose id contains the tier. It never returns an error; when the catalog is
// unreachable or has no match it falls back to a known-good id. An input
// that is already a full model id passes through unchanged.
func (cat *Catalog) ResolveTier(ctx context.Context, tier string) string {
	tier = strings.ToLower(strings.TrimSpace(tier))
	fallback, known := FallbackModels[tier]
	if !known {
		// Already a concrete model id.
		return tier
	}

	models, err := cat.Models(ctx)
	if err != nil {
		log.Printf("anthropic: model catalog unavailable, using fallback for %q: %v", tier, err)
		return fallback
	}

	// The listing is newest-first; latest wins regardless by comparing
	// created_at in case ordering ever changes.
	var best *ModelInfo
	for i := range models {
		m := &models[i]
		if !strings.Contains(strings.ToLower(m.ID), tier) {
			continue
		}
		if best == nil || m.CreatedAt.After(best.CreatedAt) {
			best = m
		}
	}
	if best == nil {
		return fallback
	}
	return best.ID
}
