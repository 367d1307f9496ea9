package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Adapter implements PushTokenAdapter
var _ driven.PushTokenAdapter = (*Adapter)(nil)

// jwtClaims wraps domain.PushClaims for JWT compatibility
type jwtClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Adapter signs and verifies push tokens using HS256 JWTs
type Adapter struct {
	jwtSecret []byte
	now       func() time.Time
}

// NewAdapter creates a new auth adapter with the given JWT secret
func NewAdapter(jwtSecret string) *Adapter {
	return &Adapter{
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
	}
}

// GenerateToken creates a signed JWT from domain claims.
// A missing token ID is filled with a random UUID.
func (a *Adapter) GenerateToken(claims *domain.PushClaims) (string, error) {
	if claims == nil {
		return "", domain.ErrInvalidInput
	}
	if len(a.jwtSecret) == 0 {
		return "", fmt.Errorf("push secret not configured: %w", domain.ErrInvalidInput)
	}

	tokenID := claims.TokenID
	if tokenID == "" {
		tokenID = uuid.NewString()
	}
	issuedAt := claims.IssuedAt
	if issuedAt == 0 {
		issuedAt = a.now().Unix()
	}

	jc := jwtClaims{
		Scope: claims.Scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  claims.Subject,
			ID:       tokenID,
			IssuedAt: jwt.NewNumericDate(time.Unix(issuedAt, 0)),
		},
	}
	if claims.ExpiresAt != 0 {
		jc.ExpiresAt = jwt.NewNumericDate(time.Unix(claims.ExpiresAt, 0))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jc)
	return token.SignedString(a.jwtSecret)
}

// ParseToken validates a JWT and extracts domain claims
func (a *Adapter) ParseToken(tokenString string) (*domain.PushClaims, error) {
	if len(a.jwtSecret) == 0 {
		return nil, domain.ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	}, jwt.WithTimeFunc(a.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	out := &domain.PushClaims{
		Subject: claims.Subject,
		Scope:   claims.Scope,
		TokenID: claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return out, nil
}
