// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the revu terminal interface: a code pane with
// per-thread gutter markers, a review thread panel, and a message input.
//
// This file defines keyboard bindings for the three focus areas.
package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the revu interface.
type KeyMap struct {
	// Global
	FocusNext key.Binding
	Quit      key.Binding
	Help      key.Binding

	// Code pane
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Select    key.Binding
	NewThread key.Binding
	Cancel    key.Binding

	// Thread panel
	NextThread key.Binding
	PrevThread key.Binding
	Resolve    key.Binding
	Reopen     key.Binding
	Delete     key.Binding
	Reply      key.Binding

	// Input
	Submit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		FocusNext: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "switch pane"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q"),
			key.WithHelp("C-q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "cursor up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "cursor down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn/C-d", "page down"),
		),
		Select: key.NewBinding(
			key.WithKeys("v", " "),
			key.WithHelp("v/Space", "start/extend selection"),
		),
		NewThread: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "new thread on selection"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel selection"),
		),
		NextThread: key.NewBinding(
			key.WithKeys("down", "j", "n"),
			key.WithHelp("j/n", "next thread"),
		),
		PrevThread: key.NewBinding(
			key.WithKeys("up", "k", "p"),
			key.WithHelp("k/p", "previous thread"),
		),
		Resolve: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "resolve thread"),
		),
		Reopen: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "reopen thread"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "x"),
			key.WithHelp("d/x", "delete thread"),
		),
		Reply: key.NewBinding(
			key.WithKeys("enter", "i"),
			key.WithHelp("Enter/i", "reply"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
	}
}

// ShortHelp returns the most commonly used shortcuts for the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.FocusNext, k.Select, k.NewThread, k.Resolve, k.Quit}
}

// FullHelp returns all bindings grouped for the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Select, k.NewThread, k.Cancel},
		{k.NextThread, k.PrevThread, k.Resolve, k.Reopen, k.Delete},
		{k.Reply, k.Submit, k.FocusNext, k.Help, k.Quit},
	}
}
