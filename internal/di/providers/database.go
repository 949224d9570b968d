package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/CheongSzesuen/eventsWeb/internal/config"
	"github.com/CheongSzesuen/eventsWeb/internal/logger"
	"github.com/CheongSzesuen/eventsWeb/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the submission database.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Metadata.BasePath, "submissions")
	st, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	return &StoreHandle{Store: st}, nil
}
