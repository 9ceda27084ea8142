package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// ErrCiphertextTooShort is returned by Open for truncated input.
var ErrCiphertextTooShort = errors.New("cryptox: ciphertext too short")

// Sealer encrypts small secrets (OAuth access and refresh tokens) before they
// are written to the database. Output layout: [nonce][ciphertext][tag].
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer builds an AES-256-GCM sealer. key must be 32 bytes, usually the
// output of DeriveKey with PurposeTokenSealing.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("cryptox: sealer key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptox: create gcm: %w", err)
	}
	return &Sealer{aead: gcm}, nil
}

// Seal encrypts plaintext with a fresh random nonce. An empty plaintext seals
// to nil so optional tokens stay NULL in storage.
func (s *Sealer) Seal(plaintext string) ([]byte, error) {
	if plaintext == "" {
		return nil, nil
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("cryptox: generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

// Open reverses Seal. A nil input opens to the empty string.
func (s *Sealer) Open(sealed []byte) (string, error) {
	if len(sealed) == 0 {
		return "", nil
	}

	n := s.aead.NonceSize()
	if len(sealed) < n {
		return "", ErrCiphertextTooShort
	}

	plaintext, err := s.aead.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return "", fmt.Errorf("cryptox: decrypt: %w", err)
	}
	return string(plaintext), nil
}
