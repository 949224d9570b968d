package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/CheongSzesuen/eventsWeb/internal/catalog"
	"github.com/CheongSzesuen/eventsWeb/internal/config"
	"github.com/CheongSzesuen/eventsWeb/internal/fetch"
	"github.com/CheongSzesuen/eventsWeb/internal/logger"
	"github.com/CheongSzesuen/eventsWeb/internal/watcher"
)

// DataWatcherHandle wraps the data directory watcher with its lifecycle.
// Watcher is nil when the dataset source is an HTTP URL.
type DataWatcherHandle struct {
	Watcher *watcher.Watcher
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *DataWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideDataWatcher provides the local-checkout change watcher.
func ProvideDataWatcher(i do.Injector) (*DataWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Data.BasePath == "" {
		// HTTP sources change server-side; the cache TTL handles staleness.
		return &DataWatcherHandle{}, nil
	}

	fetcher := do.MustInvoke[*fetch.Fetcher](i)
	cat := do.MustInvoke[*catalog.Catalog](i)

	w, err := watcher.New(cfg.Data.BasePath, func() {
		fetcher.Reset()
		cat.Invalidate()
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("Data watcher stopped", "error", err)
		}
	}()

	log.Info("Watching data directory for changes", "path", cfg.Data.BasePath)

	return &DataWatcherHandle{Watcher: w, cancel: cancel}, nil
}
