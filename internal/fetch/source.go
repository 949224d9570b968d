package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// Source retrieves the raw bytes of a named JSON resource. Implementations
// classify failures: a confirmed-absent resource yields ErrNotFound, anything
// else wraps ErrTransient.
type Source interface {
	Get(ctx context.Context, resource string) ([]byte, error)
}

// HTTPSource reads resources from a static storage base URL.
type HTTPSource struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPSource creates a source rooted at baseURL (e.g. "https://host/data").
func NewHTTPSource(baseURL string, timeout time.Duration) (*HTTPSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPSource{
		base: u,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Get fetches one resource relative to the base URL.
func (s *HTTPSource) Get(ctx context.Context, resource string) ([]byte, error) {
	u := *s.base
	u.Path = path.Join(u.Path, resource)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, transientf("create request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "eventsWeb/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, transientf("execute request: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, transientf("read response: %v", err)
		}
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, transientf("unexpected status %d", resp.StatusCode)
	}
}

// DirSource reads resources from a local dataset checkout. Used in
// development and in deployments that ship the data alongside the binary.
type DirSource struct {
	root string
}

// NewDirSource creates a source rooted at a local directory.
func NewDirSource(root string) *DirSource {
	return &DirSource{root: root}
}

// Root returns the directory the source reads from.
func (s *DirSource) Root() string { return s.root }

// Get reads one resource file. Paths are confined to the root; anything
// escaping it is reported as absent.
func (s *DirSource) Get(_ context.Context, resource string) ([]byte, error) {
	clean := filepath.Clean(filepath.FromSlash(resource))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(filepath.Join(s.root, clean))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, transientf("read file: %v", err)
	}
	return data, nil
}
