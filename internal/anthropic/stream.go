// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package anthropic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// STREAMING: Robust SSE parsing with error handling

// MaxChunkSize is the maximum allowed size for a single SSE event (64KB).
const MaxChunkSize = 64 * 1024

// =============================================================================
// STREAM EVENT TYPES
// =============================================================================

// streamEvent is the wire shape of a Messages API stream event. Only the
// fields revu consumes are decoded; everything else is ignored.
type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Message struct {
		Model string `json:"model"`
	} `json:"message"`
	Usage struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// StreamResult carries the metadata collected over a completed stream.
type StreamResult struct {
	Model        string
	OutputTokens int
}

// DeltaFunc receives each text fragment as it arrives, in order.
type DeltaFunc func(text string)

// Streamer is the streaming contract the conversation layer depends on.
// *Client satisfies it; tests substitute scripted fakes.
type Streamer interface {
	StreamMessage(ctx context.Context, req MessageRequest, onDelta DeltaFunc) (*StreamResult, error)
}

// =============================================================================
// SSE READER
// =============================================================================

// SSEReader parses Server-Sent Events from a stream.
type SSEReader struct {
	reader *bufio.Reader
}

// NewSSEReader creates a new SSE reader from an io.Reader.
func NewSSEReader(r io.Reader) *SSEReader {
	return &SSEReader{
		reader: bufio.NewReader(r),
	}
}

// ReadEvent reads the next SSE event from the stream, returning the event
// type and data. Returns io.EOF when the stream ends.
func (s *SSEReader) ReadEvent() (string, []byte, error) {
	var eventType string
	var dataLines [][]byte
	total := 0

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				// If we have data, return it before EOF
				if len(dataLines) > 0 {
					return eventType, bytes.Join(dataLines, []byte("\n")), nil
				}
				return "", nil, io.EOF
			}
			return "", nil, err
		}

		total += len(line)
		if total > MaxChunkSize {
			return "", nil, fmt.Errorf("SSE event too large: %d bytes", total)
		}

		// Trim trailing newline and carriage return
		line = bytes.TrimRight(line, "\r\n")

		// Empty line signals end of event
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			eventType = ""
			continue
		}

		if bytes.HasPrefix(line, []byte("event:")) {
			eventType = string(bytes.TrimSpace(line[6:]))
		} else if bytes.HasPrefix(line, []byte("data:")) {
			dataLines = append(dataLines, bytes.TrimSpace(line[5:]))
		}
		// Ignore other fields (id:, retry:, comments starting with :)
	}
}

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamMessage performs a streaming Messages API request. onDelta is called
// for each text fragment in arrival order. On failure the returned error is a
// *StreamError wrapping the cause whenever any content already arrived, so
// callers can keep the partial answer.
func (c *Client) StreamMessage(ctx context.Context, req MessageRequest, onDelta DeltaFunc) (*StreamResult, error) {
	if !c.IsConfigured() {
		return nil, ErrNoCredential
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	req.Stream = true
	if req.MaxTokens == 0 {
		req.MaxTokens = c.maxTokens
	}

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(httpReq)
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")

	// PERFORMANCE: Shared streaming client with connection pooling
	// (timeout handled via context).
	resp, err := sharedStreamingClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		return nil, c.handleErrorResponse(resp.StatusCode, body)
	}

	return c.processStream(ctx, resp.Body, onDelta)
}

// processStream reads SSE events until message_stop, an error event, or EOF.
func (c *Client) processStream(ctx context.Context, body io.Reader, onDelta DeltaFunc) (*StreamResult, error) {
	reader := NewSSEReader(body)
	result := &StreamResult{}
	var received strings.Builder

	fail := func(err error) (*StreamResult, error) {
		return result, &StreamError{Partial: received.String(), Err: err}
	}

	for {
		select {
		case <-ctx.Done():
			return fail(ctx.Err())
		default:
		}

		eventType, data, err := reader.ReadEvent()
		if err != nil {
			if err == io.EOF {
				// Upstream closed without message_stop; what arrived
				// is still a complete best-effort answer.
				return result, nil
			}
			return fail(err)
		}

		var ev streamEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			// Skip malformed events
			continue
		}
		if ev.Type == "" {
			ev.Type = eventType
		}

		switch ev.Type {
		case "message_start":
			if ev.Message.Model != "" {
				result.Model = ev.Message.Model
			}
		case "content_block_delta":
			if ev.Delta.Type == "text_delta" && ev.Delta.Text != "" {
				received.WriteString(ev.Delta.Text)
				onDelta(ev.Delta.Text)
			}
		case "message_delta":
			if ev.Usage.OutputTokens > 0 {
				result.OutputTokens = ev.Usage.OutputTokens
			}
		case "message_stop":
			return result, nil
		case "error":
			return fail(&APIError{
				Type:    ev.Error.Type,
				Message: ev.Error.Message,
				Status:  http.StatusOK, // delivered in-band, after headers
			})
		}
		// ping and unknown event types are ignored
	}
}
