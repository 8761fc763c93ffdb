// Package catalogfile loads the entity catalog from YAML and reloads it when the file changes.
package catalogfile

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sommelier/internal/domain/catalog"
	"github.com/kailas-cloud/sommelier/internal/metrics"
)

// DefaultDebounce collapses the burst of events editors emit for one save.
const DefaultDebounce = 250 * time.Millisecond

// sink receives reloaded catalogs (the classifier).
type sink interface {
	SetCatalog(c *catalog.Catalog)
}

// Watcher reloads a catalog file into a sink. A file that fails to parse is
// logged and ignored; the previous catalog stays active.
type Watcher struct {
	path     string
	sink     sink
	debounce time.Duration
	logger   *zap.Logger
}

// NewWatcher creates a watcher for path. A non-positive debounce selects DefaultDebounce.
func NewWatcher(path string, s sink, debounce time.Duration, logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{path: filepath.Clean(path), sink: s, debounce: debounce, logger: logger}
}

// Run watches until ctx is done. The parent directory is watched so atomic
// rename-over saves are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.logger.Info("Watching catalog file", zap.String("path", w.path))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Catalog watcher error", zap.Error(err))
		case <-timer.C:
			w.Reload()
		}
	}
}

// Reload loads the file once and hands it to the sink on success.
func (w *Watcher) Reload() bool {
	c, err := catalog.Load(w.path)
	if err != nil {
		metrics.CatalogReloadsTotal.WithLabelValues("error").Inc()
		w.logger.Error("Catalog reload failed, keeping previous catalog",
			zap.String("path", w.path), zap.Error(err))
		return false
	}
	w.sink.SetCatalog(c)
	metrics.CatalogReloadsTotal.WithLabelValues("success").Inc()
	w.logger.Info("Catalog reloaded",
		zap.String("path", w.path),
		zap.Int("entities", len(c.Entities)),
		zap.Int("rules", len(c.Rules)),
	)
	return true
}
