package mirror

import (
	"context"
	"fmt"

	"stickylist/internal/config"
)

// Open returns the store selected by cfg.Mirror.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Mirror {
	case config.MirrorFile, "":
		return NewFileStore(cfg.StorePath()), nil
	case config.MirrorSQLite:
		if err := cfg.EnsureDir(); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		return OpenSQLite(cfg.SQLitePath())
	case config.MirrorRedis:
		return DialRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	case config.MirrorMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown mirror driver: %s", cfg.Mirror)
	}
}
