package domain

import "time"

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// AuthToken is a persisted session token. The stored row is the source
// of truth for validity: a well-formed signed token whose row is absent
// or expired is not valid.
type AuthToken struct {
	ID        string    `json:"id" db:"id" bson:"_id"`
	UserID    string    `json:"user_id" db:"user_id" bson:"user_id"`
	Token     string    `json:"token" db:"token" bson:"token"`
	Type      TokenType `json:"type" db:"type" bson:"type"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at" bson:"created_at"`
}

// IsExpired checks if the token is expired
func (t *AuthToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// TokenClaims represents the claims embedded in a signed token
type TokenClaims struct {
	UserID    string
	Type      TokenType
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// TokenPair represents a pair of access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}
