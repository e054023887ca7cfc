// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package editor

import (
	"time"

	"github.com/google/uuid"
)

// Document is the code currently under review.
type Document struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Language  string    `json:"language"`
	FileName  string    `json:"fileName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewDocument creates a document with a generated ID and timestamps set.
func NewDocument(content, language, fileName string) *Document {
	now := time.Now()
	return &Document{
		ID:        "doc_" + uuid.NewString(),
		Content:   content,
		Language:  language,
		FileName:  fileName,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetContent replaces the document text and bumps UpdatedAt.
func (d *Document) SetContent(content string) {
	d.Content = content
	d.UpdatedAt = time.Now()
}

// SetLanguage changes the document language and bumps UpdatedAt.
func (d *Document) SetLanguage(language string) {
	d.Language = language
	d.UpdatedAt = time.Now()
}

// LineCount returns the number of lines in the document.
func (d *Document) LineCount() int {
	if d.Content == "" {
		return 0
	}
	n := 1
	for _, r := range d.Content {
		if r == '\n' {
			n++
		}
	}
	return n
}
