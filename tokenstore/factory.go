package tokenstore

import (
	"context"
	"fmt"

	"github.com/jrsteele09/sgo-connect/internal/config"
	"github.com/rs/zerolog/log"
)

// OpenRepo builds the backend named by cfg. The returned close function releases
// any connection the backend holds and is never nil.
func OpenRepo(ctx context.Context, cfg config.StoreConfig) (Repo, func() error, error) {
	noop := func() error { return nil }

	switch cfg.GetStoreBackend() {
	case config.StoreBackendMemory:
		return NewMemoryRepo(), noop, nil

	case config.StoreBackendFile:
		repo, err := NewFileRepo(cfg.GetStorePath())
		if err != nil {
			return nil, noop, err
		}
		log.Debug().Str("path", cfg.GetStorePath()).Msg("Using file token store")
		return repo, noop, nil

	case config.StoreBackendSQLite:
		repo, err := OpenSQLite(cfg.GetStorePath())
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite token store: %w", err)
		}
		log.Debug().Str("path", cfg.GetStorePath()).Msg("Using sqlite token store")
		return repo, repo.Close, nil

	case config.StoreBackendRedis:
		repo, err := OpenRedis(ctx, cfg.GetRedisAddr(), cfg.GetRedisPassword(), cfg.GetRedisDB(), cfg.GetRedisKey())
		if err != nil {
			return nil, noop, fmt.Errorf("open redis token store: %w", err)
		}
		log.Debug().Str("addr", cfg.GetRedisAddr()).Str("key", cfg.GetRedisKey()).Msg("Using redis token store")
		return repo, repo.Close, nil

	default:
		return nil, noop, fmt.Errorf("unsupported store backend: %s", cfg.GetStoreBackend())
	}
}
