// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package anthropic

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jeranaias/revu-tui/internal/editor"
)

func promptSelection(t *testing.T) editor.Selection {
	t.Helper()
	content := "const a = 1;\nconst MAX_RETRIES = 3;\nconst b = 2;\n"
	sel, err := editor.NewSelection(editor.LineRange(content, 2, 2), content, 1)
	if err != nil {
		t.Fatal(err)
	}
	return sel
}

func TestBuildPromptLayout(t *testing.T) {
	prompt := BuildPrompt(ReviewPrompt{
		Selection: promptSelection(t),
		Language:  "javascript",
		FileName:  "config.js",
		Question:  "Is this constant named well?",
	})

	for _, want := range []string{
		"LANGUAGE: javascript",
		"FILE: config.js",
		"SELECTED CODE (lines 2-2):",
		"```javascript\nconst MAX_RETRIES = 3;\n```",
		"CONTEXT BEFORE:",
		"const a = 1;",
		"CONTEXT AFTER:",
		"const b = 2;",
		"USER QUESTION:\nIs this constant named well?",
		"FORMATTING INSTRUCTIONS:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// No history section when there is no history.
	if strings.Contains(prompt, "CONVERSATION HISTORY:") {
		t.Error("empty history still rendered a history section")
	}
}

func TestBuildPromptOmitsEmptySections(t *testing.T) {
	content := "only line\n"
	sel, err := editor.NewSelection(editor.LineRange(content, 1, 1), content, 10)
	if err != nil {
		t.Fatal(err)
	}

	prompt := BuildPrompt(ReviewPrompt{
		Selection: sel,
		Language:  "go",
		Question:  "what is this?",
	})

	if strings.Contains(prompt, "FILE:") {
		t.Error("FILE line rendered without a file name")
	}
	if strings.Contains(prompt, "CONTEXT BEFORE:") || strings.Contains(prompt, "CONTEXT AFTER:") {
		t.Error("context sections rendered for a selection with no context")
	}
}

func TestBuildPromptHistoryWindow(t *testing.T) {
	var history []HistoryTurn
	for i := 1; i <= 14; i++ {
		role := "user"
		if i%2 == 0 {
			role = "assistant"
		}
		history = append(history, HistoryTurn{Role: role, Content: fmt.Sprintf("turn %d", i)})
	}

	prompt := BuildPrompt(ReviewPrompt{
		Selection: promptSelection(t),
		Language:  "javascript",
		History:   history,
		Question:  "continue",
	})

	if strings.Contains(prompt, "turn 4\n") {
		t.Error("history older than the last 10 turns leaked into the prompt")
	}
	if !strings.Contains(prompt, "User: turn 5\n") {
		t.Error("oldest in-window turn missing")
	}
	if !strings.Contains(prompt, "Assistant: turn 14\n") {
		t.Error("newest turn missing")
	}
}
