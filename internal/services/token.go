package services

import (
	"fmt"
	"time"

	"blogapi/internal/apperrors"

	"github.com/dgrijalva/jwt-go"
)

// Claims are the JWT claims carried by an authentication token.
type Claims struct {
	UserID string `json:"id"`
	jwt.StandardClaims
}

// TokenIssuer signs and validates HS256 authentication tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer whose tokens expire after ttl.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL is the lifetime of issued tokens.
func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

// Issue signs a token for userID and returns it with its expiry.
func (t *TokenIssuer) Issue(userID string) (string, time.Time, error) {
	issuedAt := t.now()
	expiresAt := issuedAt.Add(t.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expiresAt.Unix(),
			IssuedAt:  issuedAt.Unix(),
		},
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate checks the signature and expiry of tokenString and returns the
// user ID it was issued for.
func (t *TokenIssuer) Validate(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return "", apperrors.Unauthorized("Invalid or expired token", err)
	}
	if !token.Valid || claims.UserID == "" {
		return "", apperrors.Unauthorized("Invalid or expired token", nil)
	}
	return claims.UserID, nil
}
