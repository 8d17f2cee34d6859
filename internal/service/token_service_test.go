package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/waste-collection-api/internal/models"
	appErrors "github.com/noah-isme/waste-collection-api/pkg/errors"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "identity"})
	token, expires, err := svc.IssueToken(models.User{ID: "u1", Email: "a@b.c", Role: models.RoleDriver}, time.Hour)
	require.NoError(t, err)
	assert.True(t, expires.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleDriver, claims.Role)
}

func TestTokenRejectsWrongSecretIssuerAndExpiry(t *testing.T) {
	issuer := NewTokenService(TokenConfig{Secret: "secret", Issuer: "identity"})
	token, _, err := issuer.IssueToken(models.User{ID: "u1", Role: models.RoleUser}, time.Hour)
	require.NoError(t, err)

	_, err = NewTokenService(TokenConfig{Secret: "other", Issuer: "identity"}).ValidateToken(token)
	require.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	_, err = NewTokenService(TokenConfig{Secret: "secret", Issuer: "someone-else"}).ValidateToken(token)
	require.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	expired, _, err := issuer.IssueToken(models.User{ID: "u1", Role: models.RoleUser}, -time.Minute)
	require.NoError(t, err)
	_, err = issuer.ValidateToken(expired)
	require.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestTokenRejectsUnknownRole(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret"})
	token, _, err := svc.IssueToken(models.User{ID: "u1", Role: "GUEST"}, time.Hour)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	require.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}
