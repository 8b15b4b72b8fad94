// Package identity issues and verifies the bearer tokens handed to clients.
package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yukikurage/minitrello-api/internal/config"
)

var (
	ErrInvalidToken = errors.New("identity: invalid token")
	ErrExpiredToken = errors.New("identity: token expired")
)

// Claims represents the JWT claims
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Provider signs tokens with a shared HMAC secret
type Provider struct {
	secret    []byte
	issuer    string
	expiresIn time.Duration
	now       func() time.Time
}

func NewProvider(cfg config.JWTConfig) *Provider {
	return &Provider{
		secret:    []byte(cfg.Secret),
		issuer:    cfg.Issuer,
		expiresIn: cfg.ExpiresIn,
		now:       time.Now,
	}
}

// Issue creates a signed token for the user
func (p *Provider) Issue(userID, email string) (string, error) {
	now := p.now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    p.issuer,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses the token and returns its claims
func (p *Provider) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	},
		jwt.WithIssuer(p.issuer),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
