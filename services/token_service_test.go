package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour, nil)

	token, err := svc.Generate(42, "ada@example.com")
	assert.NoError(t, err)

	userID, err := svc.Validate(context.Background(), token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Hour, nil)
	verifier := NewTokenService("secret-b", time.Hour, nil)

	token, err := issuer.Generate(1, "ada@example.com")
	assert.NoError(t, err)

	_, err = verifier.Validate(context.Background(), token)
	assert.Error(t, err)
}

func TestTokenService_RejectsExpired(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute, nil)

	token, err := svc.Generate(1, "ada@example.com")
	assert.NoError(t, err)

	_, err = svc.Validate(context.Background(), token)
	assert.Error(t, err)
}

func TestTokenService_RevokeUsesRemainingLifetime(t *testing.T) {
	blacklist := newMemBlacklist()
	svc := NewTokenService("test-secret", time.Hour, blacklist)

	token, err := svc.Generate(1, "ada@example.com")
	assert.NoError(t, err)

	assert.NoError(t, svc.Revoke(context.Background(), token))

	expiry := blacklist.tokens[token]
	remaining := time.Until(expiry)
	assert.Greater(t, remaining, 55*time.Minute)
	assert.LessOrEqual(t, remaining, time.Hour)

	_, err = svc.Validate(context.Background(), token)
	assert.Error(t, err)
}
