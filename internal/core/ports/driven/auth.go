package driven

import "github.com/custodia-labs/folio/internal/core/domain"

// PushTokenAdapter signs and verifies the tokens the authoring dashboard
// presents when pushing updates
type PushTokenAdapter interface {
	GenerateToken(claims *domain.PushClaims) (string, error)
	ParseToken(token string) (*domain.PushClaims, error)
}
