package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmorandi/auth-backend/internal/domain"
)

// TokenManager mints and verifies signed session tokens. Tokens are
// self-contained (user id and type claims) but validity is still decided
// by the persisted token row; the signature alone never authenticates.
type TokenManager struct {
	secret             []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

// NewTokenManager creates a new token manager
func NewTokenManager(secret string, accessTokenExpiry, refreshTokenExpiry time.Duration) *TokenManager {
	return &TokenManager{
		secret:             []byte(secret),
		accessTokenExpiry:  accessTokenExpiry,
		refreshTokenExpiry: refreshTokenExpiry,
	}
}

// Generate mints a signed token of the given type for a user and returns
// the token string together with its expiration time.
func (m *TokenManager) Generate(userID string, tokenType domain.TokenType) (string, time.Time, error) {
	var ttl time.Duration
	switch tokenType {
	case domain.TokenTypeAccess:
		ttl = m.accessTokenExpiry
	case domain.TokenTypeRefresh:
		ttl = m.refreshTokenExpiry
	default:
		return "", time.Time{}, fmt.Errorf("unknown token type %q", tokenType)
	}

	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := jwt.MapClaims{
		"user_id": userID,
		"type":    string(tokenType),
		"exp":     expiresAt.Unix(),
		"iat":     now.Unix(),
		"jti":     uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Parse verifies the signature of a token and returns its claims.
// Claims are never read before the signature has been checked.
func (m *TokenManager) Parse(tokenString string) (*domain.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid user_id in token")
	}

	typ, ok := claims["type"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid type in token")
	}
	tokenType := domain.TokenType(typ)
	if tokenType != domain.TokenTypeAccess && tokenType != domain.TokenTypeRefresh {
		return nil, fmt.Errorf("unknown token type %q", typ)
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid exp in token")
	}

	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid iat in token")
	}

	tc := &domain.TokenClaims{
		UserID:    userID,
		Type:      tokenType,
		ExpiresAt: time.Unix(int64(exp), 0),
		IssuedAt:  time.Unix(int64(iat), 0),
	}

	if time.Now().After(tc.ExpiresAt) {
		return nil, fmt.Errorf("token is expired")
	}

	return tc, nil
}

// AccessTokenExpirySeconds returns the access token lifetime in seconds.
func (m *TokenManager) AccessTokenExpirySeconds() int {
	return int(m.accessTokenExpiry.Seconds())
}
