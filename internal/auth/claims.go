package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Scope is what a token allows.
type Scope string

const (
	// ScopeRead allows watching unit state over the WebSocket stream.
	ScopeRead Scope = "read"

	// ScopeControl allows changing unit state. It includes ScopeRead.
	ScopeControl Scope = "control"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	return s == ScopeRead || s == ScopeControl
}

// ParseScope converts a string to a Scope.
func ParseScope(v string) (Scope, error) {
	s := Scope(v)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, v)
	}
	return s, nil
}

// Errors returned by token handling.
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrInvalidScope   = errors.New("invalid scope")
	ErrInvalidSecret  = errors.New("signing secret is required")
	ErrInvalidSubject = errors.New("subject is required")
)

// Claims extends the JWT registered claims with the token's scope.
type Claims struct {
	jwt.RegisteredClaims
	Scope Scope `json:"scope"`
}

// Allows reports whether the claims grant scope.
func (c *Claims) Allows(scope Scope) bool {
	switch c.Scope {
	case ScopeControl:
		return scope == ScopeControl || scope == ScopeRead
	case ScopeRead:
		return scope == ScopeRead
	default:
		return false
	}
}

// GenerateToken creates a signed token for subject.
func GenerateToken(subject string, scope Scope, secret, issuer string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrInvalidSecret
	}
	if subject == "" {
		return "", ErrInvalidSubject
	}
	if !scope.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Scope: scope,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token and returns its claims. It checks the
// signature, expiry, issuer (when issuer is not empty) and required fields.
func ParseToken(tokenString, secret, issuer string) (*Claims, error) {
	if secret == "" {
		return nil, ErrInvalidSecret
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	if !claims.Scope.Valid() {
		return nil, fmt.Errorf("%w: unknown scope %q", ErrTokenInvalid, claims.Scope)
	}
	return claims, nil
}
