package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/CheongSzesuen/eventsWeb/internal/aggregate"
	"github.com/CheongSzesuen/eventsWeb/internal/catalog"
	"github.com/CheongSzesuen/eventsWeb/internal/config"
	"github.com/CheongSzesuen/eventsWeb/internal/fetch"
	"github.com/CheongSzesuen/eventsWeb/internal/logger"
)

// ProvideFetcher provides the resource fetcher over the configured source.
func ProvideFetcher(i do.Injector) (*fetch.Fetcher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var source fetch.Source
	if cfg.Data.BasePath != "" {
		source = fetch.NewDirSource(cfg.Data.BasePath)
		log.Info("Dataset source: local directory", "path", cfg.Data.BasePath)
	} else {
		httpSource, err := fetch.NewHTTPSource(cfg.Data.BaseURL, cfg.Data.FetchTimeout)
		if err != nil {
			return nil, err
		}
		source = httpSource
		log.Info("Dataset source: HTTP", "base_url", cfg.Data.BaseURL)
	}

	return fetch.New(source, fetch.Options{
		Retries: cfg.Data.FetchRetries,
		Backoff: cfg.Data.FetchBackoff,
		Logger:  log.Logger,
	}), nil
}

// ProvideAggregator provides the hierarchy aggregator.
func ProvideAggregator(i do.Injector) (*aggregate.Aggregator, error) {
	fetcher := do.MustInvoke[*fetch.Fetcher](i)
	log := do.MustInvoke[*logger.Logger](i)

	return aggregate.New(fetcher, log.Logger), nil
}

// ProvideCatalog provides the TTL-cached query facade.
func ProvideCatalog(i do.Injector) (*catalog.Catalog, error) {
	cfg := do.MustInvoke[*config.Config](i)
	aggregator := do.MustInvoke[*aggregate.Aggregator](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return catalog.New(aggregator, indexHandle.Index, cfg.Data.CacheTTL, log.Logger), nil
}

// WarmCatalog builds the first corpus in the background.
// Should be called after all services are wired.
func WarmCatalog(i do.Injector) {
	cat := do.MustInvoke[*catalog.Catalog](i)
	log := do.MustInvoke[*logger.Logger](i)

	go func() {
		if _, err := cat.Corpus(context.Background()); err != nil {
			log.Error("Initial corpus build failed", "error", err)
		}
	}()
}
