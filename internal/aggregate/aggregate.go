// Package aggregate walks the province→city→school topology, fetches every
// city's school file plus the flat exam/random pools, normalizes each
// contained event, and folds the result into one corpus with rollup counts.
//
// Failure semantics: partial data beats no data. Any individual fetch failure
// degrades to an empty default for that piece, and only the root
// province/city map failing yields an (empty, non-error) corpus.
package aggregate

import (
	"context"
	"sort"
	"sync"

	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/CheongSzesuen/eventsWeb/internal/domain"
	"github.com/CheongSzesuen/eventsWeb/internal/fetch"
	"github.com/CheongSzesuen/eventsWeb/internal/normalize"
)

// Resource paths relative to the data base location.
const (
	ProvinceCityMapPath = "provinceCityMap.json"
	ExamEventsPath      = "events/exam/exam.json"
	RandomEventsPath    = "events/random.json"
)

// CityResourcePath returns the path of one city's school file.
func CityResourcePath(provinceID, cityID string) string {
	return "events/provinces/" + provinceID + "/" + cityID + ".json"
}

// cityFetchLimit bounds concurrent city fetches within one aggregation.
const cityFetchLimit = 16

// rawSchool is the wire shape of a school entry in a city file.
type rawSchool struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Events struct {
		Start   []normalize.RawEvent `json:"start"`
		Special []normalize.RawEvent `json:"special"`
	} `json:"events"`
}

// rawCityFile is the wire shape of a city resource.
type rawCityFile struct {
	Schools []rawSchool `json:"schools"`
}

// rawExamFile is the wire shape of the exam pool resource.
type rawExamFile struct {
	ExamEvents []normalize.RawEvent `json:"exam_events"`
}

// rawRandomFile is the wire shape of the random pool resource.
type rawRandomFile struct {
	RandomEvents []normalize.RawEvent `json:"random_events"`
}

// Aggregator assembles the corpus from the static dataset.
type Aggregator struct {
	fetcher *fetch.Fetcher
	logger  *slog.Logger
}

// New creates an Aggregator over the given fetcher.
func New(fetcher *fetch.Fetcher, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{fetcher: fetcher, logger: logger}
}

// Map fetches the current province/city topology. A failed fetch degrades to
// an empty map, mirroring Aggregate's root-map semantics.
func (a *Aggregator) Map(ctx context.Context) domain.ProvinceCityMap {
	pcMap, err := fetch.JSON[domain.ProvinceCityMap](ctx, a.fetcher, ProvinceCityMapPath)
	if err != nil {
		a.logger.Warn("province/city map unavailable", "error", err)
		return domain.ProvinceCityMap{}
	}
	return pcMap
}

// Aggregate builds a fresh corpus. City fetches fan out concurrently, as do
// the exam/random pools; assembly is keyed by province/city id so the output
// is deterministic regardless of arrival order.
func (a *Aggregator) Aggregate(ctx context.Context) (*domain.Corpus, error) {
	pcMap, err := fetch.JSON[domain.ProvinceCityMap](ctx, a.fetcher, ProvinceCityMapPath)
	if err != nil {
		// The root map is the one aggregation-wide dependency; without it we
		// serve an empty corpus rather than an error.
		a.logger.Error("province/city map unavailable, serving empty corpus", "error", err)
		pcMap = domain.ProvinceCityMap{}
	}

	var (
		mu     sync.Mutex
		cities = make(map[string]map[string]domain.CityData) // provinceID -> cityID -> city

		examEvents   []domain.Event
		randomEvents []domain.Event
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cityFetchLimit)

	// The flat pools are independent of the tree walk.
	g.Go(func() error {
		examEvents = a.fetchExamEvents(gctx)
		return nil
	})
	g.Go(func() error {
		randomEvents = a.fetchRandomEvents(gctx)
		return nil
	})

	for provinceID, info := range pcMap {
		for cityID, cityName := range info.Cities {
			g.Go(func() error {
				city, ok := a.fetchCity(gctx, provinceID, cityID, cityName)
				if !ok {
					return nil
				}
				mu.Lock()
				if cities[provinceID] == nil {
					cities[provinceID] = make(map[string]domain.CityData)
				}
				cities[provinceID][cityID] = city
				mu.Unlock()
				return nil
			})
		}
	}

	// Workers only record partial failures, they never return them.
	_ = g.Wait()

	corpus := a.fold(pcMap, cities, examEvents, randomEvents)

	a.logger.Info("aggregation complete",
		"provinces", len(corpus.Provinces.Provinces),
		"school_events", len(corpus.SchoolEvents),
		"exam_events", len(corpus.ExamEvents),
		"random_events", len(corpus.RandomEvents),
		"total", corpus.Total,
	)

	return corpus, nil
}

// fetchCity loads and normalizes one city's school file. Missing city
// resources are expected (not every declared city has data yet) and skipped.
func (a *Aggregator) fetchCity(ctx context.Context, provinceID, cityID, cityName string) (domain.CityData, bool) {
	raw, err := fetch.JSON[rawCityFile](ctx, a.fetcher, CityResourcePath(provinceID, cityID))
	if err != nil {
		a.logger.Debug("city resource skipped", "province", provinceID, "city", cityID, "error", err)
		return domain.CityData{}, false
	}

	city := domain.CityData{
		ID:   cityID,
		Name: cityName,
	}

	for _, rs := range raw.Schools {
		schoolID := rs.ID
		if schoolID == "" {
			schoolID = normalize.SchoolID(provinceID, cityID, rs.Name)
		}
		prov := domain.Provenance{
			ProvinceID: provinceID,
			CityID:     cityID,
			SchoolID:   schoolID,
			School:     rs.Name,
		}

		school := domain.SchoolData{
			ID:   schoolID,
			Name: rs.Name,
		}
		for _, re := range rs.Events.Start {
			school.Events.Start = append(school.Events.Start, normalize.Event(re, domain.EventTypeSchoolStart, prov))
		}
		for _, re := range rs.Events.Special {
			school.Events.Special = append(school.Events.Special, normalize.Event(re, domain.EventTypeSchoolSpecial, prov))
		}
		school.StartCount = len(school.Events.Start)
		school.SpecialCount = len(school.Events.Special)

		city.Schools = append(city.Schools, school)
		city.Total += school.EventCount()
	}

	return city, true
}

// fetchExamEvents loads the exam pool, degrading to empty on failure.
func (a *Aggregator) fetchExamEvents(ctx context.Context) []domain.Event {
	raw, err := fetch.JSON[rawExamFile](ctx, a.fetcher, ExamEventsPath)
	if err != nil {
		a.logger.Warn("exam events unavailable, defaulting to empty", "error", err)
		return nil
	}
	events := make([]domain.Event, 0, len(raw.ExamEvents))
	for _, re := range raw.ExamEvents {
		events = append(events, normalize.Event(re, domain.EventTypeExam, domain.Provenance{}))
	}
	return events
}

// fetchRandomEvents loads the random pool, degrading to empty on failure.
func (a *Aggregator) fetchRandomEvents(ctx context.Context) []domain.Event {
	raw, err := fetch.JSON[rawRandomFile](ctx, a.fetcher, RandomEventsPath)
	if err != nil {
		a.logger.Warn("random events unavailable, defaulting to empty", "error", err)
		return nil
	}
	events := make([]domain.Event, 0, len(raw.RandomEvents))
	for _, re := range raw.RandomEvents {
		events = append(events, normalize.Event(re, domain.EventTypeRandom, domain.Provenance{}))
	}
	return events
}

// fold assembles the final corpus bottom-up: schools → cities → provinces,
// dropping zero-total nodes, then flattens the surviving tree into the flat
// school-event list used for search and listing.
func (a *Aggregator) fold(
	pcMap domain.ProvinceCityMap,
	cities map[string]map[string]domain.CityData,
	examEvents, randomEvents []domain.Event,
) *domain.Corpus {
	provinceIDs := make([]string, 0, len(pcMap))
	for id := range pcMap {
		provinceIDs = append(provinceIDs, id)
	}
	sort.Strings(provinceIDs)

	tree := domain.ProvinceTree{Provinces: []domain.ProvinceData{}}
	var schoolEvents []domain.Event

	for _, provinceID := range provinceIDs {
		cityMap := cities[provinceID]
		if len(cityMap) == 0 {
			continue
		}

		cityIDs := make([]string, 0, len(cityMap))
		for id := range cityMap {
			cityIDs = append(cityIDs, id)
		}
		sort.Strings(cityIDs)

		province := domain.ProvinceData{
			ID:   provinceID,
			Name: pcMap[provinceID].Name,
		}
		for _, cityID := range cityIDs {
			city := cityMap[cityID]
			if city.Total == 0 {
				continue
			}
			province.Cities = append(province.Cities, city)
			province.Total += city.Total

			for _, school := range city.Schools {
				schoolEvents = append(schoolEvents, school.Events.Start...)
				schoolEvents = append(schoolEvents, school.Events.Special...)
			}
		}

		if province.Total == 0 {
			continue
		}
		tree.Provinces = append(tree.Provinces, province)
		tree.Total += province.Total
	}

	if examEvents == nil {
		examEvents = []domain.Event{}
	}
	if randomEvents == nil {
		randomEvents = []domain.Event{}
	}
	if schoolEvents == nil {
		schoolEvents = []domain.Event{}
	}

	return &domain.Corpus{
		Provinces:    tree,
		ExamEvents:   examEvents,
		RandomEvents: randomEvents,
		SchoolEvents: schoolEvents,
		Total:        tree.Total + len(examEvents) + len(randomEvents) + len(schoolEvents),
	}
}
