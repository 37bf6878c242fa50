// internal/pkg/auth/jwt.go
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/healthy-eats/storefront/internal/config"
)

const visitorTokenType = "visitor"

// VisitorClaims identifies one browser across requests
type VisitorClaims struct {
	VisitorID string `json:"visitor_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// JWTManager signs and checks visitor cookies
type JWTManager struct {
	config *config.Config
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(cfg *config.Config) *JWTManager {
	return &JWTManager{
		config: cfg,
	}
}

// NewVisitorID returns a fresh random visitor id
func NewVisitorID() string {
	return uuid.NewString()
}

// GenerateVisitorToken signs a token for visitorID
func (j *JWTManager) GenerateVisitorToken(visitorID string) (string, error) {
	if _, err := uuid.Parse(visitorID); err != nil {
		return "", fmt.Errorf("invalid visitor id: %w", err)
	}

	now := time.Now().UTC()

	claims := &VisitorClaims{
		VisitorID: visitorID,
		TokenType: visitorTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.config.JWT.VisitorExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.config.App.Name,
			Subject:   "visitor:" + visitorID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.config.JWT.Secret))
}

// ValidateVisitorToken validates and parses a visitor token
func (j *JWTManager) ValidateVisitorToken(tokenString string) (*VisitorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &VisitorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.config.JWT.Secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*VisitorClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.TokenType != visitorTokenType {
		return nil, fmt.Errorf("invalid token type: expected %s, got %q", visitorTokenType, claims.TokenType)
	}

	if _, err := uuid.Parse(claims.VisitorID); err != nil {
		return nil, fmt.Errorf("invalid visitor id: %w", err)
	}

	return claims, nil
}
