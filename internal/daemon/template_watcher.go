package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/pagepublisher/internal/logfields"
)

// Invalidator drops cached template sources.
type Invalidator interface {
	Invalidate(path string)
	InvalidateAll()
}

// TemplateWatcher invalidates cached on-disk templates when files in the
// template directory change. Changes are batched over a debounce window.
type TemplateWatcher struct {
	dir          string
	cache        Invalidator
	watcher      *fsnotify.Watcher
	logger       *slog.Logger
	debounceTime time.Duration

	mu       sync.Mutex
	pending  map[string]struct{}
	timer    *time.Timer
	stopChan chan struct{}
	stopped  bool
}

// NewTemplateWatcher watches dir on behalf of cache.
func NewTemplateWatcher(dir string, cache Invalidator, logger *slog.Logger) (*TemplateWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to resolve template directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TemplateWatcher{
		dir:          absDir,
		cache:        cache,
		watcher:      watcher,
		logger:       logger,
		debounceTime: 250 * time.Millisecond,
		pending:      make(map[string]struct{}),
		stopChan:     make(chan struct{}),
	}, nil
}

// Start begins watching.
func (tw *TemplateWatcher) Start(ctx context.Context) error {
	if err := tw.watcher.Add(tw.dir); err != nil {
		return fmt.Errorf("failed to watch template directory %s: %w", tw.dir, err)
	}
	tw.logger.Info("Starting template watcher", logfields.Path(tw.dir))
	go tw.watchLoop(ctx)
	return nil
}

// Stop ends watching and drops any pending batch.
func (tw *TemplateWatcher) Stop() error {
	tw.mu.Lock()
	if tw.stopped {
		tw.mu.Unlock()
		return nil
	}
	tw.stopped = true
	close(tw.stopChan)
	if tw.timer != nil {
		tw.timer.Stop()
	}
	tw.mu.Unlock()
	return tw.watcher.Close()
}

func (tw *TemplateWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-tw.stopChan:
			return
		case event, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".html") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			tw.logger.Debug("Template change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			tw.schedule(event.Name)
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			// Events may have been dropped; forget everything.
			tw.logger.Error("Template watcher error", logfields.Error(err))
			tw.cache.InvalidateAll()
		}
	}
}

func (tw *TemplateWatcher) schedule(path string) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.stopped {
		return
	}
	tw.pending[path] = struct{}{}
	if tw.timer != nil {
		tw.timer.Stop()
	}
	tw.timer = time.AfterFunc(tw.debounceTime, tw.flush)
}

func (tw *TemplateWatcher) flush() {
	tw.mu.Lock()
	paths := tw.pending
	tw.pending = make(map[string]struct{})
	tw.mu.Unlock()

	for p := range paths {
		tw.cache.Invalidate(p)
	}
	if len(paths) > 0 {
		tw.logger.Info("Template cache invalidated", logfields.Count(len(paths)))
	}
}
