package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure MockCMSAPI implements CMSAPI
var _ driven.CMSAPI = (*MockCMSAPI)(nil)

// MockCMSAPI is a mock implementation of CMSAPI for testing.
// Set the fields to control responses; calls are recorded.
type MockCMSAPI struct {
	mu sync.Mutex

	Content     *domain.Content
	ContentErr  error
	Settings    *domain.SettingsPatch
	SettingsErr error
	ContactErr  error

	// Block, when non-nil, holds every fetch until it is closed
	Block chan struct{}

	ContentBases  []string
	SettingsBases []string
	Messages      []domain.ContactMessage
}

// NewMockCMSAPI creates a MockCMSAPI serving the default content and no settings
func NewMockCMSAPI() *MockCMSAPI {
	c := domain.DefaultContent()
	return &MockCMSAPI{
		Content:  &c,
		Settings: &domain.SettingsPatch{},
	}
}

func (m *MockCMSAPI) FetchContent(ctx context.Context, base string) (*domain.Content, error) {
	m.wait(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.ContentBases = append(m.ContentBases, base)
	if m.ContentErr != nil {
		return nil, m.ContentErr
	}
	if m.Content == nil {
		return nil, nil
	}
	c := m.Content.Clone()
	return &c, nil
}

func (m *MockCMSAPI) FetchSettings(ctx context.Context, base string) (*domain.SettingsPatch, error) {
	m.wait(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.SettingsBases = append(m.SettingsBases, base)
	if m.SettingsErr != nil {
		return nil, m.SettingsErr
	}
	return m.Settings, nil
}

func (m *MockCMSAPI) SendContactMessage(ctx context.Context, base string, msg domain.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ContactErr != nil {
		return m.ContactErr
	}
	m.Messages = append(m.Messages, msg)
	return nil
}

// SetContentErr changes the content error under the lock
func (m *MockCMSAPI) SetContentErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ContentErr = err
}

// SetSettingsErr changes the settings error under the lock
func (m *MockCMSAPI) SetSettingsErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SettingsErr = err
}

// ContentCalls returns the number of content fetches
func (m *MockCMSAPI) ContentCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ContentBases)
}

// SentMessages returns a copy of the relayed contact messages
func (m *MockCMSAPI) SentMessages() []domain.ContactMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ContactMessage, len(m.Messages))
	copy(out, m.Messages)
	return out
}

func (m *MockCMSAPI) wait(ctx context.Context) {
	if m.Block == nil {
		return
	}
	select {
	case <-m.Block:
	case <-ctx.Done():
	}
}
