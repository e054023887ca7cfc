// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the revu terminal interface.
package ui

import (
	"log"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/revu-tui/internal/editor"
	"github.com/jeranaias/revu-tui/internal/review"
	"github.com/jeranaias/revu-tui/internal/storage"
	"github.com/jeranaias/revu-tui/internal/thread"
	"github.com/jeranaias/revu-tui/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

// Focus identifies which pane receives keyboard input.
type Focus int

const (
	FocusCode Focus = iota
	FocusThreads
	FocusInput
)

// =============================================================================
// APP MODEL
// =============================================================================

// Model is the Bubble Tea model for the revu application.
type Model struct {
	// Domain
	store      *thread.Store
	controller *review.Controller
	workspace  *storage.WorkspaceStore
	doc        *editor.Document

	// Styling
	theme *styles.Theme

	// Components
	codePane    *CodePane
	threadPanel *ThreadPanel
	panelView   viewport.Model
	input       textarea.Model
	spin        spinner.Model

	// Key bindings
	keys KeyMap

	// State
	focus           Focus
	streaming       bool
	statusMsg       string
	statusIsErr     bool
	showHelp        bool
	maxContextLines int

	// Dimensions
	width  int
	height int

	// Store change notifications feed the redraw loop.
	changes     chan struct{}
	unsubscribe func()
}

// Options configures the UI beyond its required collaborators.
type Options struct {
	MaxContextLines int
}

// New creates the application model.
func New(store *thread.Store, ctrl *review.Controller, ws *storage.WorkspaceStore, doc *editor.Document, opts Options) *Model {
	theme := styles.NewTheme()

	ta := textarea.New()
	ta.Placeholder = "Ask about the selected code..."
	ta.CharLimit = review.MaxTurnLength
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	m := &Model{
		store:           store,
		controller:      ctrl,
		workspace:       ws,
		doc:             doc,
		theme:           theme,
		codePane:        NewCodePane(theme, store),
		threadPanel:     NewThreadPanel(theme, store),
		panelView:       viewport.New(40, 20),
		input:           ta,
		spin:            sp,
		keys:            DefaultKeyMap(),
		focus:           FocusCode,
		maxContextLines: opts.MaxContextLines,
		changes:         make(chan struct{}, 1),
	}

	if doc != nil {
		m.codePane.SetDocument(doc.Content, doc.Language)
		ctrl.SetDocument(doc.Language, doc.FileName)
		// Persist the resolved document right away so the next run reopens
		// it even if this session ends abruptly.
		m.saveEditorState()
	}

	// Coalescing notify: a slow redraw never blocks store mutations.
	m.unsubscribe = store.Subscribe(func() {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	})

	return m
}

// Init starts the store notification loop.
func (m *Model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

// Close persists the editor state and releases the store subscription.
func (m *Model) Close() {
	m.saveEditorState()
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// setStatus replaces the status line message.
func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusIsErr = isErr
}

// refreshPanel re-renders the thread panel into its viewport.
func (m *Model) refreshPanel() {
	m.panelView.SetContent(m.threadPanel.View())
}

// saveEditorState persists the document and, when one is in progress, the
// current selection span.
func (m *Model) saveEditorState() {
	if m.workspace == nil || m.doc == nil {
		return
	}
	state := storage.EditorState{Document: m.doc}
	if m.codePane.HasSelection() {
		start, end := m.codePane.SelectionLines()
		sel, err := editor.NewSelection(
			editor.LineRange(m.doc.Content, start, end),
			m.doc.Content,
			m.maxContextLines,
		)
		if err == nil {
			state.CurrentSelection = &sel
		}
	}
	if err := m.workspace.SaveEditor(state); err != nil {
		// RELIABILITY: losing editor state is cosmetic; never block quit.
		log.Printf("ui: editor state save failed: %v", err)
	}
}
