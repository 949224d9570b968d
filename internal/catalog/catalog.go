// Package catalog is the query facade over the aggregated events corpus.
// It caches the corpus with a TTL, answers hierarchy lookups, and keeps the
// search index in sync with each rebuild.
package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/CheongSzesuen/eventsWeb/internal/aggregate"
	"github.com/CheongSzesuen/eventsWeb/internal/domain"
	"github.com/CheongSzesuen/eventsWeb/internal/errors"
	"github.com/CheongSzesuen/eventsWeb/internal/search"
)

// Catalog serves corpus queries from a TTL-bounded cache.
type Catalog struct {
	aggregator *aggregate.Aggregator
	index      *search.Index // optional, nil disables reindexing
	logger     *slog.Logger
	ttl        time.Duration

	mu        sync.RWMutex
	corpus    *domain.Corpus
	cityMap   domain.ProvinceCityMap
	refreshed time.Time

	// Collapses concurrent rebuilds into one aggregation run.
	group singleflight.Group
}

// New creates a catalog. index may be nil (no search reindexing).
func New(aggregator *aggregate.Aggregator, index *search.Index, ttl time.Duration, logger *slog.Logger) *Catalog {
	return &Catalog{
		aggregator: aggregator,
		index:      index,
		logger:     logger,
		ttl:        ttl,
	}
}

// Corpus returns the aggregated dataset, rebuilding it when the cache has
// expired. Concurrent callers during a rebuild share one aggregation.
func (c *Catalog) Corpus(ctx context.Context) (*domain.Corpus, error) {
	c.mu.RLock()
	corpus, fresh := c.corpus, time.Since(c.refreshed) < c.ttl
	c.mu.RUnlock()

	if corpus != nil && fresh {
		return corpus, nil
	}
	return c.rebuild(ctx)
}

// Map returns the province/city topology, loading it alongside the corpus.
// Needed for lookups of mapped-but-empty nodes, which the corpus drops.
func (c *Catalog) Map(ctx context.Context) (domain.ProvinceCityMap, error) {
	if _, err := c.Corpus(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cityMap, nil
}

// TTL returns the cache lifetime, used for Cache-Control headers.
func (c *Catalog) TTL() time.Duration { return c.ttl }

// Invalidate drops the cached corpus so the next query rebuilds it.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.corpus = nil
	c.refreshed = time.Time{}
	c.mu.Unlock()

	c.logger.Debug("Corpus cache invalidated")
}

// Refresh forces a rebuild regardless of cache freshness.
func (c *Catalog) Refresh(ctx context.Context) (*domain.Corpus, error) {
	c.Invalidate()
	return c.rebuild(ctx)
}

func (c *Catalog) rebuild(ctx context.Context) (*domain.Corpus, error) {
	v, err, _ := c.group.Do("corpus", func() (any, error) {
		// Another caller may have finished the rebuild while we waited.
		c.mu.RLock()
		corpus, fresh := c.corpus, time.Since(c.refreshed) < c.ttl
		c.mu.RUnlock()
		if corpus != nil && fresh {
			return corpus, nil
		}

		start := time.Now()
		corpus, err := c.aggregator.Aggregate(ctx)
		if err != nil {
			return nil, err
		}
		cityMap := c.aggregator.Map(ctx)

		c.mu.Lock()
		c.corpus = corpus
		c.cityMap = cityMap
		c.refreshed = time.Now()
		c.mu.Unlock()

		c.logger.Info("Corpus rebuilt",
			"total", corpus.Total,
			"provinces", len(corpus.Provinces.Provinces),
			"duration", time.Since(start))

		c.reindex(corpus)

		return corpus, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Corpus), nil
}

// reindex replaces the search index contents with the fresh corpus.
func (c *Catalog) reindex(corpus *domain.Corpus) {
	if c.index == nil {
		return
	}
	if err := c.index.ReplaceAll(corpus.AllEvents()); err != nil {
		// Search serves stale results until the next rebuild; queries
		// against the corpus itself are unaffected.
		c.logger.Error("Failed to reindex corpus", "error", err)
	}
}

// GetProvince returns one province node. Provinces declared in the topology
// but holding no events yield an empty placeholder rather than NotFound.
func (c *Catalog) GetProvince(ctx context.Context, provinceID string) (*domain.ProvinceData, error) {
	corpus, err := c.Corpus(ctx)
	if err != nil {
		return nil, err
	}

	for i := range corpus.Provinces.Provinces {
		if corpus.Provinces.Provinces[i].ID == provinceID {
			return &corpus.Provinces.Provinces[i], nil
		}
	}

	cityMap, err := c.Map(ctx)
	if err != nil {
		return nil, err
	}
	if info, ok := cityMap[provinceID]; ok {
		return &domain.ProvinceData{
			ID:     provinceID,
			Name:   info.Name,
			Cities: []domain.CityData{},
		}, nil
	}

	return nil, errors.NotFoundf("province %s not found", provinceID)
}

// GetCity returns one city node. A city present in the topology but without
// any events yields a zero-total placeholder; an unmapped city is NotFound.
func (c *Catalog) GetCity(ctx context.Context, provinceID, cityID string) (*domain.CityData, error) {
	corpus, err := c.Corpus(ctx)
	if err != nil {
		return nil, err
	}

	for i := range corpus.Provinces.Provinces {
		p := &corpus.Provinces.Provinces[i]
		if p.ID != provinceID {
			continue
		}
		for j := range p.Cities {
			if p.Cities[j].ID == cityID {
				return &p.Cities[j], nil
			}
		}
	}

	cityMap, err := c.Map(ctx)
	if err != nil {
		return nil, err
	}
	if info, ok := cityMap[provinceID]; ok {
		if name, ok := info.Cities[cityID]; ok {
			return &domain.CityData{
				ID:      cityID,
				Name:    name,
				Schools: []domain.SchoolData{},
			}, nil
		}
	}

	return nil, errors.NotFoundf("city %s/%s not found", provinceID, cityID)
}

// GetSchoolsByCity returns the schools of a city, empty for a mapped city
// without events.
func (c *Catalog) GetSchoolsByCity(ctx context.Context, provinceID, cityID string) ([]domain.SchoolData, error) {
	city, err := c.GetCity(ctx, provinceID, cityID)
	if err != nil {
		return nil, err
	}
	return city.Schools, nil
}

// EventsPage is one page of a filtered event listing.
type EventsPage struct {
	Events []domain.Event `json:"events"`
	Total  int            `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ListEvents returns events filtered by type with page/limit pagination.
// An empty type lists everything. Page numbering starts at 1.
func (c *Catalog) ListEvents(ctx context.Context, eventType domain.EventType, page, limit int) (*EventsPage, error) {
	corpus, err := c.Corpus(ctx)
	if err != nil {
		return nil, err
	}
	if eventType != "" && !eventType.Valid() {
		return nil, errors.Validationf("unknown event type %q", eventType)
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	all := corpus.AllEvents()
	filtered := all
	if eventType != "" {
		filtered = make([]domain.Event, 0, len(all))
		for _, e := range all {
			if e.Type == eventType {
				filtered = append(filtered, e)
			}
		}
	}

	start := (page - 1) * limit
	if start > len(filtered) {
		start = len(filtered)
	}
	end := min(start+limit, len(filtered))

	return &EventsPage{
		Events: filtered[start:end],
		Total:  len(filtered),
		Page:   page,
		Limit:  limit,
	}, nil
}
