// Package crypt implements the per-user encryption codec over AES-256-GCM.
// Keys are derived with PBKDF2 from a server-held secret salted by the user
// identity, so payloads sealed for one user never open for another.
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/ajudi46/expense-tracker-server/internal/core/ports/cloud"
	"golang.org/x/crypto/pbkdf2"
)

const keyIterations = 100_000

type codec struct {
	secret []byte
}

// NewCodec creates a codec keyed by the server encryption secret.
func NewCodec(secret string) cloud.Codec {
	return &codec{secret: []byte(secret)}
}

var _ cloud.Codec = (*codec)(nil)

// keyFor derives the 32-byte AES key for one user. Deterministic so both
// directions and every device agree on the key without storing it anywhere.
func (c *codec) keyFor(userID string) []byte {
	return pbkdf2.Key(c.secret, []byte(userID), keyIterations, 32, sha256.New)
}

func (c *codec) gcmFor(userID string) (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.keyFor(userID))
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return aead, nil
}

// Seal encrypts plaintext and returns base64(nonce || ciphertext).
func (c *codec) Seal(userID string, plaintext []byte) (string, error) {
	aead, err := c.gcmFor(userID)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a payload produced by Seal. It fails on truncated input,
// tampered ciphertext, or a payload sealed for a different user.
func (c *codec) Open(userID string, payload string) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	aead, err := c.gcmFor(userID)
	if err != nil {
		return nil, err
	}

	ns := aead.NonceSize()
	if len(sealed) < ns {
		return nil, fmt.Errorf("payload too short")
	}
	nonce, ciphertext := sealed[:ns], sealed[ns:]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}
