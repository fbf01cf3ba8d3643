package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"github.com/shnkreddy98/airfold-backend/config"
	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/repository"
)

const redisPingTimeout = 2 * time.Second

// OpenFallbackStore builds the snapshot mirror backend selected by the
// config: a JSON file store under the data directory, or Redis. The redis
// backend is pinged before use so a misconfigured address fails at boot.
func OpenFallbackStore(ctx context.Context, cfg config.FallbackConfig) (repository.SnapshotStore, error) {
	switch cfg.Backend {
	case "file":
		store, err := repository.NewFileStore(afero.NewOsFs(), cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return store, nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

		pctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := client.Ping(pctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return repository.NewRedisStore(client), nil

	default:
		return nil, fmt.Errorf("unknown fallback backend %q", cfg.Backend)
	}
}
