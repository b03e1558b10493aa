package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail signature or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload minted for evaluators.
type Claims struct {
	EvaluatorID uint            `json:"evaluator_id"`
	Name        string          `json:"name,omitempty"`
	IsAdmin     bool            `json:"is_admin"`
	Permissions map[string]bool `json:"permissions"`
	jwt.RegisteredClaims
}

// Sign mints an HS256 token for the identity.
func Sign(secret string, identity Identity, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("signing secret must not be empty")
	}
	if !identity.Authenticated() {
		return "", fmt.Errorf("cannot sign a token for an anonymous caller")
	}

	claims := Claims{
		EvaluatorID: identity.EvaluatorID,
		Name:        identity.Name,
		IsAdmin:     identity.IsAdmin,
		Permissions: identity.Permissions.ToMap(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  strconv.FormatUint(uint64(identity.EvaluatorID), 10),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse validates the token and converts its claims to an Identity.
func Parse(secret, tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Anonymous, ErrInvalidToken
	}
	if claims.EvaluatorID == 0 {
		return Anonymous, ErrInvalidToken
	}

	var permissions Set
	for name, granted := range claims.Permissions {
		if !granted {
			continue
		}
		if c, ok := ParseCapability(name); ok {
			permissions = permissions.Add(c)
		}
	}

	return Identity{
		EvaluatorID: claims.EvaluatorID,
		Name:        claims.Name,
		IsAdmin:     claims.IsAdmin,
		Permissions: permissions,
	}, nil
}
