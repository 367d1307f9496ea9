package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/runtime"
)

// Ensure contactService implements ContactService
var _ driving.ContactService = (*contactService)(nil)

// contactService relays the contact form to the CMS
type contactService struct {
	api    driven.CMSAPI
	state  *runtime.State
	logger *slog.Logger
}

// NewContactService creates a new ContactService
func NewContactService(api driven.CMSAPI, state *runtime.State, logger *slog.Logger) driving.ContactService {
	if logger == nil {
		logger = slog.Default()
	}
	return &contactService{
		api:    api,
		state:  state,
		logger: logger,
	}
}

// Send validates the request and posts it to the current API base
func (s *contactService) Send(ctx context.Context, req domain.ContactRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	msg := req.ToMessage()
	base := s.state.APIBase()
	if err := s.api.SendContactMessage(ctx, base, msg); err != nil {
		s.logger.Warn("contact message not delivered", "api_base", base, "error", err)
		return fmt.Errorf("send contact message: %w", err)
	}

	s.logger.Info("contact message delivered", "subject", msg.Subject)
	return nil
}
