package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/CheongSzesuen/eventsWeb/internal/domain"
)

// Index wraps a Bleve index with event-specific operations.
//
// Thread safety: all public methods are safe for concurrent use. The mutex
// protects against index corruption during replace operations, which run
// after every re-aggregation.
type Index struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Logger for operations (uses stderr text if nil)
}

// mappingVersion is incremented whenever the index mapping changes.
// A mismatch on startup triggers an automatic rebuild.
const mappingVersion = "1"

// NewIndex creates or opens the event search index. A corrupted or
// outdated-mapping index is removed and recreated; the catalog repopulates
// it on the first aggregation.
func NewIndex(opts Options) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	indexPath := filepath.Join(opts.DataPath, "events.bleve")
	versionPath := filepath.Join(opts.DataPath, "events.bleve.version")

	var index bleve.Index
	var err error
	needsRebuild := false

	indexExists := false
	if _, statErr := os.Stat(indexPath); statErr == nil {
		indexExists = true
	}

	if indexExists {
		existingVersion, readErr := os.ReadFile(versionPath)
		if readErr != nil {
			logger.Info("search index has no version file, will rebuild",
				"new_version", mappingVersion,
			)
			needsRebuild = true
		} else if string(existingVersion) != mappingVersion {
			logger.Info("search index mapping version changed, will rebuild",
				"old_version", string(existingVersion),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	if !needsRebuild && indexExists {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("failed to open existing index, will recreate",
				"path", indexPath,
				"error", err,
			)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if removeErr := os.RemoveAll(indexPath); removeErr != nil {
			return nil, fmt.Errorf("remove old index: %w", removeErr)
		}
		index = nil
	}

	if index == nil {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if writeErr := os.WriteFile(versionPath, []byte(mappingVersion), 0644); writeErr != nil {
			logger.Warn("failed to write search version file", "error", writeErr)
		}
		logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &Index{
		index:  index,
		path:   indexPath,
		logger: logger,
	}, nil
}

// NewMemIndex creates an in-memory index for tests.
func NewMemIndex() (*Index, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create memory index: %w", err)
	}
	return &Index{
		index:  index,
		logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}, nil
}

// Close closes the index and releases resources.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexEvents indexes the given events in batches.
func (s *Index) IndexEvents(events []domain.Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexEventsLocked(events)
}

func (s *Index) indexEventsLocked(events []domain.Event) error {
	const batchSize = 500

	for i := 0; i < len(events); i += batchSize {
		end := min(i+batchSize, len(events))

		batch := s.index.NewBatch()
		for j := i; j < end; j++ {
			doc := EventToDocument(&events[j])
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}

		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}

	return nil
}

// ReplaceAll atomically swaps the index contents for the given events.
// Called after every aggregation so the index tracks the live corpus.
func (s *Index) ReplaceAll(events []domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Delete everything currently indexed. The dataset is small (thousands of
	// events), so enumerate-and-delete beats recreating the index files.
	ids, err := s.allDocIDsLocked()
	if err != nil {
		return fmt.Errorf("enumerate documents: %w", err)
	}
	if len(ids) > 0 {
		batch := s.index.NewBatch()
		for _, id := range ids {
			batch.Delete(id)
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("delete documents: %w", err)
		}
	}

	if err := s.indexEventsLocked(events); err != nil {
		return err
	}

	s.logger.Info("search index replaced", "documents", len(events))
	return nil
}

// allDocIDsLocked lists every indexed document id.
func (s *Index) allDocIDsLocked() ([]string, error) {
	var ids []string
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), 1000, 0, false)
	for {
		res, err := s.index.Search(req)
		if err != nil {
			return nil, err
		}
		if len(res.Hits) == 0 {
			return ids, nil
		}
		for _, hit := range res.Hits {
			ids = append(ids, hit.ID)
		}
		if uint64(len(ids)) >= res.Total {
			return ids, nil
		}
		req = bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), 1000, len(ids), false)
	}
}

// DocumentCount returns the total number of indexed documents.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}
