package storage

import (
	"context"
	"fmt"

	"github.com/jason-s-yu/gamenight/internal/config"
)

// Open builds the slot backend named by cfg. The returned func releases it.
func Open(ctx context.Context, cfg *config.Config) (Slots, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return NewMemoryStore(), func() {}, nil

	case config.BackendRedis:
		rs, err := ConnectRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.SlotPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { rs.Close() }, nil

	case config.BackendPostgres:
		ps, err := ConnectPostgres(ctx, cfg.DatabaseURL, cfg.SlotPrefix)
		if err != nil {
			return nil, nil, err
		}
		return ps, ps.Close, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.StorageBackend)
}
