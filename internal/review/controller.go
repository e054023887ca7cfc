// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/revu-tui/internal/anthropic"
	"github.com/jeranaias/revu-tui/internal/thread"
)

// MaxTurnLength is the longest user turn accepted, in runes. Input surfaces
// truncate before submitting; the controller refuses anything longer.
const MaxTurnLength = 2000

// DefaultTier is the model tier used when the caller does not pick one.
const DefaultTier = "haiku"

// Error variables for turn preconditions.
var (
	// ErrEmptyTurn indicates the user text was empty after trimming.
	ErrEmptyTurn = errors.New("message is empty")

	// ErrTurnTooLong indicates the user text exceeds MaxTurnLength.
	ErrTurnTooLong = errors.New("message exceeds maximum length")

	// ErrThreadStreaming indicates the thread already has an open
	// assistant message; one stream per thread at a time.
	ErrThreadStreaming = errors.New("thread is already streaming")
)

// ModelResolver resolves a tier name to a concrete model id.
// *anthropic.Catalog satisfies it.
type ModelResolver interface {
	ResolveTier(ctx context.Context, tier string) string
}

// Controller orchestrates conversation turns against one thread store. All
// durable state lives in the store; the controller holds only the document
// metadata used for prompt assembly and the per-turn buffer and gate.
type Controller struct {
	store  *thread.Store
	client anthropic.Streamer
	models ModelResolver

	tier   string
	window time.Duration

	mu       sync.Mutex
	language string
	fileName string
}

// NewController creates a controller for the given store and streaming
// client.
func NewController(store *thread.Store, client anthropic.Streamer, models ModelResolver) *Controller {
	return &Controller{
		store:  store,
		client: client,
		models: models,
		tier:   DefaultTier,
		window: DefaultThrottleWindow,
	}
}

// WithTier overrides the model tier.
func (c *Controller) WithTier(tier string) *Controller {
	c.tier = tier
	return c
}

// WithThrottleWindow overrides the commit window, mainly for tests.
func (c *Controller) WithThrottleWindow(d time.Duration) *Controller {
	c.window = d
	return c
}

// SetDocument records the metadata of the document under review, used when
// assembling prompts.
func (c *Controller) SetDocument(language, fileName string) {
	c.mu.Lock()
	c.language = language
	c.fileName = fileName
	c.mu.Unlock()
}

func (c *Controller) document() (language, fileName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.language, c.fileName
}

// SendTurn drives one user turn to completion: it appends the user message
// and an assistant placeholder, streams the reply into the placeholder
// through a throttle gate, and seals the placeholder when the stream ends.
//
// On stream failure the placeholder is still sealed, keeping the partial
// reply plus a visible error line, and the error is returned so the caller
// can surface it. The thread is always left ready for the next turn.
func (c *Controller) SendTurn(ctx context.Context, threadID, userText string) error {
	text := strings.TrimSpace(userText)
	if text == "" {
		return ErrEmptyTurn
	}
	if len([]rune(text)) > MaxTurnLength {
		return ErrTurnTooLong
	}

	th := c.store.Thread(threadID)
	if th == nil {
		return thread.ErrThreadNotFound
	}
	if c.store.IsStreaming(threadID) {
		return ErrThreadStreaming
	}

	// History snapshots the conversation as it stood before this turn; the
	// prompt builder appends the new question itself.
	history := c.store.History(threadID)

	if _, err := c.store.AddMessage(threadID, thread.RoleUser, text, true); err != nil {
		return err
	}
	placeholder, err := c.store.AddMessage(threadID, thread.RoleAssistant, "", false)
	if err != nil {
		return err
	}

	model := c.models.ResolveTier(ctx, c.tier)
	req := c.buildRequest(model, th, history, text)

	gate := NewGate(c.window, func(content string) {
		c.store.UpdateMessage(placeholder.ID, thread.MessageUpdate{Content: &content})
	})

	var buf strings.Builder
	result, streamErr := c.client.StreamMessage(ctx, req, func(delta string) {
		// Deletion race: once the placeholder is gone there is nobody to
		// deliver to; stop forwarding, let the stream drain.
		if !c.store.MessageExists(placeholder.ID) {
			return
		}
		buf.WriteString(delta)
		gate.Update(buf.String())
	})

	// The gate must drain before sealing so the final committed content
	// never lags the true buffer.
	gate.Flush()

	if result != nil && result.Model != "" {
		model = result.Model
	}
	c.seal(placeholder.ID, buf.String(), model, result, streamErr)

	if streamErr != nil {
		return fmt.Errorf("turn failed: %w", streamErr)
	}
	return nil
}

// seal finalizes the assistant placeholder exactly once per turn.
func (c *Controller) seal(messageID, content, model string, result *anthropic.StreamResult, streamErr error) {
	if streamErr != nil {
		notice := "Error: " + userFacing(streamErr)
		if content != "" {
			content = content + "\n\n" + notice
		} else {
			content = notice
		}
	}

	sealed := true
	upd := thread.MessageUpdate{
		Content:        &content,
		StreamComplete: &sealed,
		Model:          &model,
	}
	if result != nil && result.OutputTokens > 0 {
		tokens := result.OutputTokens
		upd.TokensUsed = &tokens
	}
	c.store.UpdateMessage(messageID, upd)
}

// buildRequest assembles the Messages API request for one turn.
func (c *Controller) buildRequest(model string, th *thread.Thread, history []thread.Turn, question string) anthropic.MessageRequest {
	language, fileName := c.document()

	turns := make([]anthropic.HistoryTurn, len(history))
	for i, t := range history {
		turns[i] = anthropic.HistoryTurn{Role: string(t.Role), Content: t.Content}
	}

	prompt := anthropic.BuildPrompt(anthropic.ReviewPrompt{
		Selection: th.Selection,
		Language:  language,
		FileName:  fileName,
		History:   turns,
		Question:  question,
	})

	return anthropic.MessageRequest{
		Model:    model,
		Messages: []anthropic.MessageParam{anthropic.NewUserMessage(prompt)},
	}
}

// userFacing reduces a stream error to the line shown inside the thread.
func userFacing(err error) string {
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var streamErr *anthropic.StreamError
	if errors.As(err, &streamErr) {
		return userFacing(streamErr.Err)
	}
	return err.Error()
}
