// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package anthropic

import (
	"fmt"
	"strings"

	"github.com/jeranaias/revu-tui/internal/editor"
)

// maxHistoryTurns bounds how much prior conversation is replayed into the
// prompt. Older turns fall off; the anchored code keeps the context stable.
const maxHistoryTurns = 10

// HistoryTurn is one prior exchange included in the prompt.
type HistoryTurn struct {
	Role    string // "user" or "assistant"
	Content string
}

// ReviewPrompt is everything that goes into one review question.
type ReviewPrompt struct {
	Selection editor.Selection
	Language  string
	FileName  string
	History   []HistoryTurn
	Question  string
}

// BuildPrompt renders a review request into the single user prompt sent to
// the model: selection with its line span, surrounding context, recent
// conversation history, the question, and formatting instructions.
func BuildPrompt(r ReviewPrompt) string {
	var sb strings.Builder

	sb.WriteString("You are a code review assistant. Analyze the following code and provide feedback.\n\n")
	sb.WriteString("LANGUAGE: " + r.Language)

	if r.FileName != "" {
		sb.WriteString("\nFILE: " + r.FileName)
	}

	fmt.Fprintf(&sb, "\n\nSELECTED CODE (lines %d-%d):\n", r.Selection.Range.StartLine, r.Selection.Range.EndLine)
	writeFence(&sb, r.Language, r.Selection.SelectedText)

	if r.Selection.ContextBefore != "" {
		sb.WriteString("\nCONTEXT BEFORE:\n")
		writeFence(&sb, r.Language, r.Selection.ContextBefore)
	}

	if r.Selection.ContextAfter != "" {
		sb.WriteString("\nCONTEXT AFTER:\n")
		writeFence(&sb, r.Language, r.Selection.ContextAfter)
	}

	if len(r.History) > 0 {
		sb.WriteString("\nCONVERSATION HISTORY:\n")
		history := r.History
		if len(history) > maxHistoryTurns {
			history = history[len(history)-maxHistoryTurns:]
		}
		for _, turn := range history {
			label := "Assistant"
			if turn.Role == "user" {
				label = "User"
			}
			sb.WriteString(label + ": " + turn.Content + "\n")
		}
	}

	sb.WriteString("\nUSER QUESTION:\n")
	sb.WriteString(r.Question)

	sb.WriteString(`

Provide specific, actionable feedback focusing on:
- Code quality and best practices
- Potential bugs or issues
- Performance considerations
- Suggestions for improvement

Be concise and reference specific line numbers when applicable.

FORMATTING INSTRUCTIONS:
Format your response using markdown with:
- Headers (# ##) for sections
- **Bold** text for emphasis
- Code blocks with language tags (` + "```javascript, ```python" + `, etc.)
- Inline code for variable/function names (` + "`variableName`" + `)
- Bullet points for lists
- Numbered lists for sequential steps`)

	return sb.String()
}

func writeFence(sb *strings.Builder, language, code string) {
	sb.WriteString("```" + language + "\n")
	sb.WriteString(code)
	if !strings.HasSuffix(code, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")
}
