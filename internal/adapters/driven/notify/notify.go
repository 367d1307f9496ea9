// Package notify delivers user-visible notifications outside the page:
// to the structured log and to any number of fan-out targets.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.Notifier = (*LogNotifier)(nil)
	_ driven.Notifier = (*Multi)(nil)
)

// LogNotifier writes each notification as a log record.
// Destructive notifications are logged at warn level.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, note domain.Notification) {
	level := slog.LevelInfo
	if note.Variant == domain.NotificationDestructive {
		level = slog.LevelWarn
	}
	n.logger.Log(ctx, level, "notification",
		"title", note.Title,
		"description", note.Description,
		"variant", note.Variant,
		"duration_ms", note.DurationMs,
	)
}

// Multi fans a notification out to every registered target in order
type Multi struct {
	mu      sync.RWMutex
	targets []driven.Notifier
}

// NewMulti creates a fan-out notifier. Nil targets are skipped.
func NewMulti(targets ...driven.Notifier) *Multi {
	m := &Multi{}
	for _, t := range targets {
		m.Add(t)
	}
	return m
}

// Add registers another target
func (m *Multi) Add(target driven.Notifier) {
	if target == nil {
		return
	}
	m.mu.Lock()
	m.targets = append(m.targets, target)
	m.mu.Unlock()
}

func (m *Multi) Notify(ctx context.Context, note domain.Notification) {
	m.mu.RLock()
	targets := append([]driven.Notifier(nil), m.targets...)
	m.mu.RUnlock()

	for _, t := range targets {
		t.Notify(ctx, note)
	}
}
