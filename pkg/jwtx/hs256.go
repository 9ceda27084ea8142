package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

const minHMACKeyLen = 32

// HS256Signer signs session claims with a shared HMAC key.
type HS256Signer struct {
	key []byte
}

// NewSignerHS256 creates a signer. The key should come from
// cryptox.DeriveKey so it is never the raw configured secret.
func NewSignerHS256(key []byte) (*HS256Signer, error) {
	if len(key) < minHMACKeyLen {
		return nil, ErrWeakKey
	}
	return &HS256Signer{key: key}, nil
}

func (s *HS256Signer) Sign(c Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := tok.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// HS256Verifier verifies tokens produced by HS256Signer.
type HS256Verifier struct {
	key  []byte
	opts VerifyOptions
}

func NewVerifierHS256(key []byte, opts VerifyOptions) (*HS256Verifier, error) {
	if len(key) < minHMACKeyLen {
		return nil, ErrWeakKey
	}
	return &HS256Verifier{key: key, opts: opts}, nil
}

func (v *HS256Verifier) Verify(token string) (Claims, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.opts.Leeway),
	}
	if v.opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.opts.Issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.key, nil
	}, parserOpts...)
	if err != nil {
		return Claims{}, mapParseError(err)
	}
	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrAlgMismatch
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
}
