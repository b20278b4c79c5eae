package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenBlacklist records tokens that were logged out before their natural
// expiry. Backed by Redis in production.
type TokenBlacklist interface {
	Add(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}

// TokenService issues and validates HS256 access tokens.
type TokenService struct {
	secretKey []byte
	ttl       time.Duration
	blacklist TokenBlacklist
}

func NewTokenService(secret string, ttl time.Duration, blacklist TokenBlacklist) *TokenService {
	return &TokenService{secretKey: []byte(secret), ttl: ttl, blacklist: blacklist}
}

// Generate creates an access token carrying the stable user id.
func (s *TokenService) Generate(userID uint, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"sub":     email,
		"iat":     now.Unix(),
		"exp":     now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// Validate parses the token, rejects blacklisted ones, and resolves it to the
// stable user identifier.
func (s *TokenService) Validate(ctx context.Context, tokenStr string) (uint, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}
	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID <= 0 {
		return 0, fmt.Errorf("invalid token claims")
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.Contains(ctx, tokenStr)
		if err != nil {
			return 0, fmt.Errorf("blacklist lookup: %w", err)
		}
		if revoked {
			return 0, fmt.Errorf("token revoked")
		}
	}

	return uint(rawID), nil
}

// Revoke blacklists the token for the remainder of its lifetime.
func (s *TokenService) Revoke(ctx context.Context, tokenStr string) error {
	if s.blacklist == nil {
		return nil
	}

	ttl := s.ttl
	if token, _, err := jwt.NewParser().ParseUnverified(tokenStr, jwt.MapClaims{}); err == nil {
		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if exp, ok := claims["exp"].(float64); ok {
				if remaining := time.Until(time.Unix(int64(exp), 0)); remaining > 0 {
					ttl = remaining
				}
			}
		}
	}
	return s.blacklist.Add(ctx, tokenStr, ttl)
}
