// Package di provides dependency injection configuration for the events server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/CheongSzesuen/eventsWeb/internal/aggregate"
	"github.com/CheongSzesuen/eventsWeb/internal/catalog"
	"github.com/CheongSzesuen/eventsWeb/internal/config"
	"github.com/CheongSzesuen/eventsWeb/internal/di/providers"
	"github.com/CheongSzesuen/eventsWeb/internal/fetch"
	"github.com/CheongSzesuen/eventsWeb/internal/logger"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Data pipeline
	do.Provide(injector, providers.ProvideFetcher)
	do.Provide(injector, providers.ProvideAggregator)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideCatalog)

	// Persistence
	do.Provide(injector, providers.ProvideStore)

	// Workers
	do.Provide(injector, providers.ProvideDataWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*fetch.Fetcher](injector)
	_ = do.MustInvoke[*aggregate.Aggregator](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*catalog.Catalog](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.DataWatcherHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Warm the corpus cache in the background so the first request doesn't
	// pay the full aggregation cost.
	providers.WarmCatalog(injector)

	return nil
}
