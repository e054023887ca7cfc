// revu - terminal code review conversations with the Anthropic API.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/revu-tui/internal/anthropic"
	"github.com/jeranaias/revu-tui/internal/config"
	"github.com/jeranaias/revu-tui/internal/editor"
	"github.com/jeranaias/revu-tui/internal/review"
	"github.com/jeranaias/revu-tui/internal/security"
	"github.com/jeranaias/revu-tui/internal/storage"
	"github.com/jeranaias/revu-tui/internal/thread"
	"github.com/jeranaias/revu-tui/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		setupFlag   = flag.Bool("setup", false, "store the Anthropic API key (encrypted) and exit")
		fileFlag    = flag.String("file", "", "open this file for review")
		langFlag    = flag.String("lang", "", "language override for the opened file")
		versionFlag = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *versionFlag {
		fmt.Printf("revu %s (%s, %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if *setupFlag {
		if err := runSetup(); err != nil {
			fmt.Fprintf(os.Stderr, "Setup failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runTUI(*fileFlag, *langFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// SETUP
// =============================================================================

// runSetup stores the Anthropic API key encrypted at rest. The master
// password and the key are both read without echo.
func runSetup() error {
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}

	vault := security.NewVault(dir)

	password, err := readPassword("Choose a master password: ")
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("master password must not be empty")
	}
	confirm, err := readPassword("Confirm master password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	if err := vault.Initialize(password); err != nil {
		return err
	}

	apiKey, err := readPassword("Anthropic API key: ")
	if err != nil {
		return err
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return fmt.Errorf("API key must not be empty")
	}

	encrypted, err := vault.EncryptString(apiKey)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}
	cfg.API.Key = encrypted

	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println("API key stored. Run revu to start reviewing.")
	return nil
}

// readPassword reads a line without echoing it. Falls back to plain stdin
// when not attached to a terminal (pipes, CI).
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(filePath, langOverride string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	apiKey, err := resolveAPIKey(cfg)
	if err != nil {
		return err
	}
	if apiKey == "" {
		return fmt.Errorf("no API key configured: run 'revu --setup' or set ANTHROPIC_API_KEY")
	}

	ws, err := storage.NewWorkspaceStore()
	if err != nil {
		return fmt.Errorf("could not open workspace storage: %w", err)
	}

	doc := openDocument(ws, filePath, langOverride, cfg.UI.DefaultLanguage)

	// Threads restore against the resolved document: threads persisted for a
	// different file stay out of this session.
	store := thread.NewStore(ws)
	store.Restore(ws.LoadThreads(), doc.ID)

	client := anthropic.NewClient(apiKey)
	if cfg.Model.MaxTokens > 0 {
		client = client.WithMaxTokens(cfg.Model.MaxTokens)
	}
	catalog := anthropic.NewCatalog(client)

	ctrl := review.NewController(store, client, catalog).
		WithTier(cfg.Model.Tier)

	m := ui.New(store, ctrl, ws, doc, ui.Options{
		MaxContextLines: cfg.UI.MaxContextLines,
	})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running revu: %w", err)
	}
	return nil
}

// resolveAPIKey decrypts the stored credential, prompting for the master
// password when needed. Plaintext keys (env overrides) pass through.
func resolveAPIKey(cfg *config.Config) (string, error) {
	key := cfg.API.Key
	if key == "" || !security.IsEncrypted(key) {
		return key, nil
	}

	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	vault := security.NewVault(dir)
	if !vault.IsInitialized() {
		return "", fmt.Errorf("stored key is encrypted but no vault exists: run 'revu --setup' again")
	}

	password, err := readPassword("Master password: ")
	if err != nil {
		return "", err
	}
	if err := vault.Unlock(password); err != nil {
		return "", err
	}

	plaintext, err := vault.DecryptString(key)
	if err != nil {
		return "", fmt.Errorf("could not decrypt API key (wrong password?): %w", err)
	}
	return plaintext, nil
}

// openDocument decides what code the session starts on: an explicit file,
// the previously persisted document, or a bundled example.
func openDocument(ws *storage.WorkspaceStore, filePath, langOverride, defaultLanguage string) *editor.Document {
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not read %s: %v\n", filePath, err)
		} else {
			content := string(data)
			language := langOverride
			if language == "" {
				language = editor.DetectLanguage(content)
			}
			return editor.NewDocument(content, language, filepath.Base(filePath))
		}
	}

	if state := ws.LoadEditor(); state.Document != nil && state.Document.Content != "" {
		return state.Document
	}

	return editor.ExampleDocument(defaultLanguage)
}
