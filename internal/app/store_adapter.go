package app

import (
	"github.com/deusflow/trends/internal/config"
	"github.com/deusflow/trends/internal/diff"
	"github.com/deusflow/trends/internal/storage"
)

// SeenStore provides a unified interface for the seen-set backends.
type SeenStore interface {
	Read(region string) (map[string]bool, error)
	Write(region string, keys []string, mode diff.Mode) error
	Close() error
}

// noopStore backs STORE_BACKEND=none: every run sees an empty set, so every
// trend is new every time. Useful for dry runs and local testing.
type noopStore struct{}

func (noopStore) Read(string) (map[string]bool, error)    { return map[string]bool{}, nil }
func (noopStore) Write(string, []string, diff.Mode) error { return nil }
func (noopStore) Close() error                            { return nil }

func openStore(cfg *config.Config) (SeenStore, error) {
	switch cfg.StoreBackend {
	case "postgres":
		return storage.NewPostgresStore(cfg.DatabaseURL)
	case "none":
		return noopStore{}, nil
	default:
		return storage.NewFileStore(cfg.SeenFilePath), nil
	}
}
