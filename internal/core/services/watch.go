package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/SubikshaRamesh/AegisRAG/internal/core/ports/driving"
	"github.com/SubikshaRamesh/AegisRAG/internal/logger"
)

// DefaultDebounce is how long a file must be quiet after its last write
// event before it is ingested. Editors and copies produce bursts of
// writes; ingesting mid-copy reads a truncated file.
const DefaultDebounce = 2 * time.Second

// Watcher ingests files dropped into a directory. Create and write
// events are debounced per path, then routed through the ingest
// service with the file type inferred from the extension.
type Watcher struct {
	ingest   driving.IngestService
	dir      string
	debounce time.Duration

	// typeForExt maps lowercase extensions (".txt") to file types.
	typeForExt map[string]string

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the per-file quiet period before ingestion.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithExtension routes an additional extension to a file type.
func WithExtension(ext, fileType string) WatcherOption {
	return func(w *Watcher) {
		w.typeForExt[strings.ToLower(ext)] = fileType
	}
}

// NewWatcher creates a watcher over the given drop directory.
func NewWatcher(ingest driving.IngestService, dir string, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		ingest:   ingest,
		dir:      dir,
		debounce: DefaultDebounce,
		typeForExt: map[string]string{
			".txt": "text",
			".md":  "text",
		},
		pending: make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the drop directory until ctx is cancelled. Ingestion
// failures for individual files are logged, not fatal; the watch loop
// only stops on ctx cancellation or a watcher-level error.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("watching %s for new files", w.dir)

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if _, known := w.typeForExt[strings.ToLower(filepath.Ext(event.Name))]; !known {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error: %v", err)
		}
	}
}

// schedule arms (or re-arms) the debounce timer for a path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.ingestFile(ctx, path)
	})
}

// ingestFile runs one debounced ingestion.
func (w *Watcher) ingestFile(ctx context.Context, path string) {
	fileType := w.typeForExt[strings.ToLower(filepath.Ext(path))]

	report, err := w.ingest.IngestFile(ctx, path, fileType)
	if err != nil {
		logger.Error("auto-ingest %s: %v", filepath.Base(path), err)
		return
	}
	logger.Info("auto-ingested %s: %d chunks added", report.SourceFile, report.Added)
}

// cancelPending stops all armed debounce timers.
func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}
