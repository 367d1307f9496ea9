package mocks

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure MockPushTokenAdapter implements PushTokenAdapter
var _ driven.PushTokenAdapter = (*MockPushTokenAdapter)(nil)

// MockPushTokenAdapter is a mock implementation of PushTokenAdapter for testing.
// Tokens are base64-encoded JSON. NOT secure - only for testing.
type MockPushTokenAdapter struct{}

// NewMockPushTokenAdapter creates a new MockPushTokenAdapter
func NewMockPushTokenAdapter() *MockPushTokenAdapter {
	return &MockPushTokenAdapter{}
}

// GenerateToken creates a base64-encoded JSON token from claims
func (m *MockPushTokenAdapter) GenerateToken(claims *domain.PushClaims) (string, error) {
	data, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// ParseToken decodes a base64-encoded JSON token and returns claims
func (m *MockPushTokenAdapter) ParseToken(token string) (*domain.PushClaims, error) {
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	var claims domain.PushClaims
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, domain.ErrTokenInvalid
	}

	return &claims, nil
}
