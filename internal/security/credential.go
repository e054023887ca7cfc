// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package security provides encryption at rest for the Anthropic API key.
//
// Keys are protected with:
// - AES-256-GCM authenticated encryption
// - PBKDF2-SHA-256 key derivation from a master password
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/revu-tui/internal/util"
)

// =============================================================================
// SECURITY HELPER FUNCTIONS
// =============================================================================

// ZeroBytes securely zeros sensitive byte slices to prevent memory disclosure.
// SECURITY: Zero key material to prevent memory disclosure via crash dumps.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// =============================================================================
// CONSTANTS
// =============================================================================

// EncryptedPrefix marks a value as encrypted (format: ENC:base64(nonce|ciphertext|tag))
const EncryptedPrefix = "ENC:"

// NonceSize is the size of the nonce/IV for AES-GCM (12 bytes / 96 bits)
const NonceSize = 12

// KeySize is the size of the AES-256 key (32 bytes / 256 bits)
const KeySize = 32

// SaltSize is the size of the salt for key derivation (32 bytes)
const SaltSize = 32

// PBKDF2Iterations is the number of iterations for PBKDF2 key derivation.
// OWASP 2023 recommends 600,000+ for PBKDF2-SHA-256 to provide adequate
// resistance against brute-force attacks with modern hardware.
const PBKDF2Iterations = 600000

// saltFile is the salt file name inside the vault directory.
const saltFile = "credential.salt"

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotInitialized indicates the vault has no salt file yet
	ErrNotInitialized = errors.New("credential vault not initialized: run 'revu --setup'")
	// ErrInvalidCiphertext indicates the ciphertext format is invalid
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
	// ErrDecryptionFailed indicates decryption failed (wrong password or tampered data)
	ErrDecryptionFailed = errors.New("decryption failed: authentication tag mismatch")
)

// =============================================================================
// KEY DERIVATION
// =============================================================================

// GenerateSalt generates a cryptographically secure random salt.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives an encryption key from a password and salt using
// PBKDF2-SHA-256 (NIST SP 800-132).
func DeriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, PBKDF2Iterations, KeySize, sha256.New)
}

// =============================================================================
// CREDENTIAL VAULT
// =============================================================================

// Vault encrypts and decrypts credential values for storage in the config
// file. One vault per config directory; the salt lives alongside the config.
type Vault struct {
	mu     sync.RWMutex
	cipher cipher.AEAD
	dir    string
}

// DefaultVaultDir returns the default vault directory (~/.revu).
func DefaultVaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".revu"), nil
}

// NewVault creates a vault rooted at dir without a cipher. Call Initialize
// or Unlock before encrypting or decrypting.
func NewVault(dir string) *Vault {
	return &Vault{dir: dir}
}

// IsInitialized reports whether a salt file exists for this vault.
func (v *Vault) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(v.dir, saltFile))
	return err == nil
}

// Initialize generates a fresh salt, derives the key from password, and
// readies the cipher. Called once during first-time setup.
func (v *Vault) Initialize(password string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	salt, err := GenerateSalt()
	if err != nil {
		return err
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	saltPath := filepath.Join(v.dir, saltFile)
	if err := util.AtomicWriteFileWithDir(saltPath, salt, 0600, 0700); err != nil {
		return fmt.Errorf("failed to save salt: %w", err)
	}

	key := DeriveKey(password, salt)
	// SECURITY: Zero key material to prevent memory disclosure
	defer ZeroBytes(key)

	if err := v.initCipher(key); err != nil {
		_ = os.Remove(saltPath)
		return err
	}
	return nil
}

// Unlock derives the key from password using the stored salt and readies
// the cipher. Returns ErrNotInitialized if no salt file exists.
func (v *Vault) Unlock(password string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	salt, err := os.ReadFile(filepath.Join(v.dir, saltFile))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("failed to read salt: %w", err)
	}

	key := DeriveKey(password, salt)
	// SECURITY: Zero key material to prevent memory disclosure
	defer ZeroBytes(key)

	return v.initCipher(key)
}

// initCipher initializes the AES-GCM cipher with the given key.
func (v *Vault) initCipher(key []byte) error {
	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to create GCM cipher: %w", err)
	}
	v.cipher = gcm
	return nil
}

// Unlocked reports whether the vault has a usable cipher.
func (v *Vault) Unlocked() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cipher != nil
}

// =============================================================================
// ENCRYPTION OPERATIONS
// =============================================================================

// Encrypt encrypts plaintext using AES-256-GCM.
// Returns: nonce || ciphertext || tag
func (v *Vault) Encrypt(plaintext []byte) ([]byte, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.cipher == nil {
		return nil, ErrNotInitialized
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return v.cipher.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt decrypts ciphertext encrypted with AES-256-GCM.
// Input format: nonce || ciphertext || tag
func (v *Vault) Decrypt(ciphertext []byte) ([]byte, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.cipher == nil {
		return nil, ErrNotInitialized
	}
	if len(ciphertext) < NonceSize {
		return nil, ErrInvalidCiphertext
	}

	nonce := ciphertext[:NonceSize]
	plaintext, err := v.cipher.Open(nil, nonce, ciphertext[NonceSize:], nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// EncryptString encrypts a string and returns base64-encoded ciphertext with
// the ENC: prefix.
func (v *Vault) EncryptString(plaintext string) (string, error) {
	ciphertext, err := v.Encrypt([]byte(plaintext))
	if err != nil {
		return "", err
	}
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptString decrypts a base64-encoded string with the ENC: prefix.
// Values without the prefix are returned unchanged so plaintext keys from
// environment overrides still work.
func (v *Vault) DecryptString(ciphertext string) (string, error) {
	if !strings.HasPrefix(ciphertext, EncryptedPrefix) {
		return ciphertext, nil
	}

	encoded := strings.TrimPrefix(ciphertext, EncryptedPrefix)
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("invalid base64 encoding: %w", err)
	}

	plaintext, err := v.Decrypt(data)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// IsEncrypted checks if a string value is encrypted (has ENC: prefix).
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, EncryptedPrefix)
}
