// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the revu terminal interface.
package ui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/revu-tui/internal/editor"
	"github.com/jeranaias/revu-tui/internal/thread"
)

// statusLifetime is how long transient status messages stay visible.
const statusLifetime = 5 * time.Second

// Update is the Bubble Tea update loop.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case StoreChangedMsg:
		m.refreshPanel()
		if m.streaming {
			m.panelView.GotoBottom()
		}
		return m, waitForChange(m.changes)

	case TurnDoneMsg:
		m.streaming = false
		if msg.Err != nil {
			// The sealed error notice is already in the thread; the
			// status line just points at it.
			m.setStatus("turn failed, see thread", true)
			m.refreshPanel()
			return m, expireStatus(statusLifetime)
		}
		m.refreshPanel()
		return m, nil

	case StatusExpiredMsg:
		m.setStatus("", false)
		return m, nil

	case spinner.TickMsg:
		if !m.streaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// resize reflows all panes to the terminal size.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	inputHeight := 5 // bordered 3-line textarea
	chromeHeight := 3 // header + status bar
	mainHeight := height - inputHeight - chromeHeight
	if mainHeight < 4 {
		mainHeight = 4
	}

	codeWidth := width * 3 / 5
	panelWidth := width - codeWidth - 4
	if panelWidth < 20 {
		panelWidth = 20
	}

	m.codePane.SetSize(codeWidth-2, mainHeight-2)
	m.panelView.Width = panelWidth
	m.panelView.Height = mainHeight - 2
	m.threadPanel.SetWidth(panelWidth - 2)
	m.input.SetWidth(width - 6)
	m.refreshPanel()
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global bindings first.
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.FocusNext):
		m.cycleFocus()
		return m, nil
	case key.Matches(msg, m.keys.Help) && m.focus != FocusInput:
		m.showHelp = !m.showHelp
		return m, nil
	}

	switch m.focus {
	case FocusCode:
		return m.handleCodeKey(msg)
	case FocusThreads:
		return m.handleThreadKey(msg)
	case FocusInput:
		return m.handleInputKey(msg)
	}
	return m, nil
}

func (m *Model) cycleFocus() {
	switch m.focus {
	case FocusCode:
		m.focus = FocusThreads
	case FocusThreads:
		m.focus = FocusInput
		m.input.Focus()
	case FocusInput:
		m.input.Blur()
		m.focus = FocusCode
	}
}

// handleCodeKey drives the code pane: cursor movement, line selection, and
// thread creation on the selected span.
func (m *Model) handleCodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.codePane.MoveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.codePane.MoveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.codePane.MoveCursor(-m.codePane.PageSize())
	case key.Matches(msg, m.keys.PageDown):
		m.codePane.MoveCursor(m.codePane.PageSize())
	case key.Matches(msg, m.keys.Select):
		if m.codePane.HasSelection() {
			m.codePane.ClearSelection()
		} else {
			m.codePane.StartSelection()
		}
	case key.Matches(msg, m.keys.Cancel):
		m.codePane.ClearSelection()
	case key.Matches(msg, m.keys.NewThread):
		return m.createThread()
	}
	return m, nil
}

// createThread snapshots the selected span into a new thread and moves
// focus to the input so the user can type the opening question.
func (m *Model) createThread() (tea.Model, tea.Cmd) {
	if m.doc == nil {
		return m, nil
	}

	start, end := m.codePane.SelectionLines()
	sel, err := editor.NewSelection(
		editor.LineRange(m.doc.Content, start, end),
		m.doc.Content,
		m.maxContextLines,
	)
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, expireStatus(statusLifetime)
	}

	th, err := m.store.CreateThread(sel, m.doc.ID)
	if err != nil {
		var capErr *thread.CapacityError
		if errors.As(err, &capErr) {
			m.setStatus(err.Error(), true)
		} else {
			m.setStatus("could not create thread: "+err.Error(), true)
		}
		return m, expireStatus(statusLifetime)
	}

	m.codePane.ClearSelection()
	m.threadPanel.SelectThread(th.ID)
	m.focus = FocusInput
	m.input.Focus()
	m.refreshPanel()
	return m, nil
}

// handleThreadKey drives the thread panel: list navigation and lifecycle
// actions on the selected thread.
func (m *Model) handleThreadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextThread):
		m.threadPanel.MoveSelection(1)
	case key.Matches(msg, m.keys.PrevThread):
		m.threadPanel.MoveSelection(-1)
	case key.Matches(msg, m.keys.Resolve):
		if th := m.threadPanel.SelectedThread(); th != nil {
			if err := m.store.ResolveThread(th.ID); err == nil {
				m.setStatus("thread resolved", false)
				return m, expireStatus(statusLifetime)
			}
		}
	case key.Matches(msg, m.keys.Reopen):
		if th := m.threadPanel.SelectedThread(); th != nil {
			if err := m.store.ReopenThread(th.ID); err == nil {
				m.setStatus("thread reopened", false)
				return m, expireStatus(statusLifetime)
			}
		}
	case key.Matches(msg, m.keys.Delete):
		if th := m.threadPanel.SelectedThread(); th != nil {
			m.store.DeleteThread(th.ID)
			m.setStatus("thread deleted", false)
			return m, expireStatus(statusLifetime)
		}
	case key.Matches(msg, m.keys.Reply):
		if th := m.threadPanel.SelectedThread(); th != nil && !th.Resolved {
			m.store.SetActiveThread(th.ID)
			m.focus = FocusInput
			m.input.Focus()
		}
	}
	m.refreshPanel()

	// Viewport scrolling for long conversations.
	var cmd tea.Cmd
	m.panelView, cmd = m.panelView.Update(msg)
	return m, cmd
}

// handleInputKey drives the textarea and submits turns.
func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		m.focus = FocusThreads
		return m, nil
	case tea.KeyEnter:
		return m.submitTurn()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitTurn sends the typed question to the active thread.
func (m *Model) submitTurn() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if m.streaming {
		m.setStatus("a response is still streaming", true)
		return m, expireStatus(statusLifetime)
	}

	threadID := m.store.ActiveThreadID()
	if threadID == "" || m.store.Thread(threadID) == nil {
		m.setStatus("no thread selected", true)
		return m, expireStatus(statusLifetime)
	}

	m.input.Reset()
	m.streaming = true
	m.setStatus("", false)

	return m, tea.Batch(
		sendTurn(m.controller, threadID, text),
		m.spin.Tick,
	)
}
