// Package fetch retrieves named JSON resources from static storage with
// bounded retries, exponential backoff, persistent not-found memoization, and
// coalescing of concurrent requests for the same resource.
package fetch

import (
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Options configures a Fetcher.
type Options struct {
	// Retries is the maximum attempt count for transient failures.
	Retries int
	// Backoff is the base delay unit, doubling per attempt.
	Backoff time.Duration
	// Logger for fetch outcomes (uses slog default if nil).
	Logger *slog.Logger
}

// Fetcher retrieves JSON resources through a Source.
//
// Two pieces of state outlive individual calls: the missing-path set, which
// memoizes confirmed-absent resources for the lifetime of the Fetcher, and
// the singleflight group, which collapses concurrent fetches of one path into
// a single underlying request. Both are per-Fetcher, injected state rather
// than package globals, so tests get isolated instances.
type Fetcher struct {
	source  Source
	retries int
	backoff time.Duration
	logger  *slog.Logger

	group singleflight.Group

	mu      sync.RWMutex
	missing map[string]struct{}
}

// New creates a Fetcher over the given source.
func New(source Source, opts Options) *Fetcher {
	if opts.Retries < 1 {
		opts.Retries = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 200 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Fetcher{
		source:  source,
		retries: opts.Retries,
		backoff: opts.Backoff,
		logger:  opts.Logger,
		missing: make(map[string]struct{}),
	}
}

// Fetch retrieves the raw bytes of the resource at path. A confirmed-missing
// resource returns ErrNotFound without a network call; transient failures are
// retried with doubling backoff and, once attempts are exhausted, demoted to
// ErrNotFound so callers degrade to defaults instead of failing.
func (f *Fetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if f.isMissing(path) {
		f.logger.Debug("resource served from not-found cache", "path", path)
		return nil, &Error{Path: path, Err: ErrNotFound}
	}

	v, err, shared := f.group.Do(path, func() (any, error) {
		return f.fetchWithRetry(ctx, path)
	})
	if shared {
		f.logger.Debug("fetch coalesced with in-flight request", "path", path)
	}
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// fetchWithRetry runs the bounded attempt loop for one path.
func (f *Fetcher) fetchWithRetry(ctx context.Context, path string) ([]byte, error) {
	delay := f.backoff

	for attempt := 1; attempt <= f.retries; attempt++ {
		data, err := f.source.Get(ctx, path)
		switch {
		case err == nil:
			if !jsontext.Value(data).IsValid() {
				err = transientf("malformed JSON payload")
				break
			}
			f.logger.Debug("resource fetched", "path", path, "bytes", len(data), "attempt", attempt)
			return data, nil
		case errors.Is(err, ErrNotFound):
			f.markMissing(path)
			f.logger.Info("resource not found", "path", path)
			return nil, &Error{Path: path, Err: ErrNotFound}
		}

		if err != nil {
			f.logger.Warn("transient fetch failure",
				"path", path,
				"attempt", attempt,
				"max_attempts", f.retries,
				"error", err,
			)
			if attempt == f.retries {
				break
			}
			select {
			case <-ctx.Done():
				return nil, &Error{Path: path, Err: ctx.Err()}
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	// Attempts exhausted: demote to not-found so callers apply defaults.
	f.markMissing(path)
	f.logger.Error("fetch attempts exhausted, treating resource as missing",
		"path", path,
		"attempts", f.retries,
	)
	return nil, &Error{Path: path, Err: ErrNotFound}
}

// Reset clears the not-found memoization. Called when the underlying dataset
// is known to have changed (directory mode redeploys).
func (f *Fetcher) Reset() {
	f.mu.Lock()
	n := len(f.missing)
	f.missing = make(map[string]struct{})
	f.mu.Unlock()
	if n > 0 {
		f.logger.Info("not-found cache cleared", "entries", n)
	}
}

// MissingCount returns the size of the not-found cache.
func (f *Fetcher) MissingCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.missing)
}

func (f *Fetcher) isMissing(path string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.missing[path]
	return ok
}

func (f *Fetcher) markMissing(path string) {
	f.mu.Lock()
	f.missing[path] = struct{}{}
	f.mu.Unlock()
}

// JSON fetches a resource and decodes it into T. A missing resource returns
// the zero value of T together with ErrNotFound, letting callers substitute
// their defaults.
func JSON[T any](ctx context.Context, f *Fetcher, path string) (T, error) {
	var out T
	data, err := f.Fetch(ctx, path)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		// Payload was valid JSON but the wrong shape; callers default it.
		return out, &Error{Path: path, Err: transientf("decode: %v", err)}
	}
	return out, nil
}
