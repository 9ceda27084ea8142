package jwtx_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/marabinga/passport-dc/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "passport-dc",
		},
	}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("passport-dc"))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		err := c.ValidateIssuer("someone-else")
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid window", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		}}
		require.NoError(t, c.ValidateExpiry())
	})

	t.Run("expired", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		}}
		require.ErrorIs(t, c.ValidateExpiry(), jwtx.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
			NotBefore: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
		require.ErrorIs(t, c.ValidateExpiry(), jwtx.ErrNotYetValid)
	})

	t.Run("leeway absorbs skew", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-10 * time.Second)),
		}}
		require.NoError(t, c.ValidateExpiryWithLeeway(time.Minute))
	})
}

func TestNewSessionClaims(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	c := jwtx.NewSessionClaims("80351110224678912", "sess-1", "nelly",
		[]string{"identify", "guilds"}, time.Hour, "passport-dc", now)

	require.Equal(t, "80351110224678912", c.Subject)
	require.Equal(t, "sess-1", c.SID)
	require.Equal(t, "nelly", c.Username)
	require.Equal(t, []string{"identify", "guilds"}, c.Scopes)
	require.Equal(t, now.Add(time.Hour), c.ExpiresAt.Time)
	require.NotEmpty(t, c.ID)
}
