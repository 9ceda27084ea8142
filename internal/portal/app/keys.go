package app

import (
	"fmt"

	"github.com/marabinga/passport-dc/pkg/cryptox"
	"github.com/marabinga/passport-dc/pkg/jwtx"
)

// Keys are everything derived from the root secret. Rotating PORTAL_SECRET
// logs every session out and makes stored Discord tokens unreadable, so
// users have to log in again.
type Keys struct {
	Sealer   *cryptox.Sealer
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
}

// InitKeys derives independent sealing and signing keys from cfg.Secret.
func InitKeys(cfg Config) (Keys, error) {
	secret := []byte(cfg.Secret)

	sealKey, err := cryptox.DeriveKey(secret, cryptox.PurposeTokenSealing)
	if err != nil {
		return Keys{}, fmt.Errorf("derive sealing key: %w", err)
	}
	sealer, err := cryptox.NewSealer(sealKey)
	if err != nil {
		return Keys{}, fmt.Errorf("init sealer: %w", err)
	}

	signKey, err := cryptox.DeriveKey(secret, cryptox.PurposeSessionSigning)
	if err != nil {
		return Keys{}, fmt.Errorf("derive signing key: %w", err)
	}
	signer, err := jwtx.NewSignerHS256(signKey)
	if err != nil {
		return Keys{}, fmt.Errorf("init signer: %w", err)
	}
	verifier, err := jwtx.NewVerifierHS256(signKey, jwtx.VerifyOptions{Issuer: cfg.Issuer})
	if err != nil {
		return Keys{}, fmt.Errorf("init verifier: %w", err)
	}

	return Keys{Sealer: sealer, Signer: signer, Verifier: verifier}, nil
}
