package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/marketplace-discovery/internal/behavior"
	"github.com/utafrali/marketplace-discovery/internal/behavior/badgerkv"
	"github.com/utafrali/marketplace-discovery/internal/behavior/memory"
	behaviorredis "github.com/utafrali/marketplace-discovery/internal/behavior/redis"
	"github.com/utafrali/marketplace-discovery/internal/config"
	"github.com/utafrali/marketplace-discovery/pkg/database"
)

// behaviorKV is the selected profile backend with its readiness check and
// release hook. check and close are nil when the backend has none.
type behaviorKV struct {
	kv    behavior.KV
	check func(context.Context) error
	close func() error
}

func newBehaviorKV(ctx context.Context, cfg *config.Config, logger *slog.Logger) (behaviorKV, error) {
	switch cfg.BehaviorBackend {
	case config.BackendRedis:
		client, err := database.NewRedisClient(ctx, cfg.Redis())
		if err != nil {
			return behaviorKV{}, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("behavior profiles stored in Redis", slog.String("addr", cfg.RedisAddr))
		return behaviorKV{
			kv:    behaviorredis.New(client, cfg.BehaviorTTL()),
			check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
			close: client.Close,
		}, nil

	case config.BackendBadger:
		kv, err := badgerkv.Open(cfg.BehaviorBadgerDir, cfg.BehaviorTTL())
		if err != nil {
			return behaviorKV{}, err
		}
		logger.Info("behavior profiles stored in Badger", slog.String("dir", cfg.BehaviorBadgerDir))
		return behaviorKV{kv: kv, check: kv.Ping, close: kv.Close}, nil

	case config.BackendMemory:
		logger.Warn("behavior profiles kept in memory and lost on restart")
		return behaviorKV{kv: memory.New()}, nil

	default:
		return behaviorKV{}, fmt.Errorf("unknown behavior backend %q", cfg.BehaviorBackend)
	}
}
