package cryptox

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Purposes used with DeriveKey. Each one yields an independent key from the
// same root secret.
const (
	PurposeTokenSealing   = "passport-dc/token-sealing/v1"
	PurposeSessionSigning = "passport-dc/session-signing/v1"
)

// ErrEmptySecret is returned when no root secret was configured.
var ErrEmptySecret = errors.New("cryptox: empty root secret")

// DeriveKey expands secret into a 32 byte key bound to purpose using
// HKDF-SHA256.
func DeriveKey(secret []byte, purpose string) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	key := make([]byte, 32)
	r := hkdf.New(sha256.New, secret, nil, []byte(purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("cryptox: derive %s: %w", purpose, err)
	}
	return key, nil
}
