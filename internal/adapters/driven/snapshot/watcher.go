package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// DefaultDebounce batches the burst of events a single save produces
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads the snapshot file whenever it changes on disk and hands the
// new snapshot to OnChange. It watches the parent directory because Save
// replaces the file by rename.
type Watcher struct {
	store    *FileStore
	onChange func(context.Context, *domain.Snapshot)
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	pending time.Time
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// WatcherConfig holds configuration for a snapshot watcher
type WatcherConfig struct {
	Store    *FileStore
	OnChange func(context.Context, *domain.Snapshot)

	// Debounce defaults to DefaultDebounce
	Debounce time.Duration
	Logger   *slog.Logger
}

// NewWatcher creates a watcher. Call Start to begin watching.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.Store == nil || cfg.OnChange == nil {
		return nil, fmt.Errorf("%w: watcher needs a store and a change handler", domain.ErrInvalidInput)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		store:    cfg.Store,
		onChange: cfg.OnChange,
		debounce: debounce,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It is non-blocking and a no-op when already running.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if w.watcher != nil {
		return errors.New("snapshot watcher cannot be restarted")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(w.store.Path())
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.watcher = fw
	w.running = true
	w.logger.Info("watching snapshot", "path", w.store.Path())

	go w.run(ctx)
	return nil
}

// Stop ends the watch loop and waits for it to exit
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer w.watcher.Close()

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	target := filepath.Clean(w.store.Path())
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending = time.Now()
			w.mu.Unlock()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("snapshot watcher error", "error", err)
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

// flush reloads the file once events have been quiet for the debounce window
func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	snapshot, err := w.store.Load(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return
	}
	if err != nil {
		w.logger.Warn("failed to reload snapshot", "path", w.store.Path(), "error", err)
		return
	}
	w.logger.Info("snapshot changed", "path", w.store.Path(), "fetched_at", snapshot.FetchedAt)
	w.onChange(ctx, snapshot)
}
