package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/powerset"
	"github.com/aretw0/powerset/internal/config"
	"github.com/aretw0/powerset/pkg/adapters/buntdb"
	"github.com/aretw0/powerset/pkg/adapters/loam"
	"github.com/aretw0/powerset/pkg/adapters/memory"
	"github.com/aretw0/powerset/pkg/adapters/redis"
)

// CloseFunc releases the resources opened by NewEngine.
type CloseFunc func() error

// NewEngine initializes an engine with the store backend selected by cfg.
// Redis backed engines also coordinate writes through a redis lock.
func NewEngine(cfg *config.Config, logger *slog.Logger, opts ...powerset.Option) (*powerset.Engine, CloseFunc, error) {
	engineOpts := []powerset.Option{powerset.WithLogger(logger)}
	closer := func() error { return nil }
	ttl := time.Duration(cfg.Store.TTL)

	switch cfg.Store.Backend {
	case config.BackendBuntDB:
		var storeOpts []buntdb.Option
		if ttl > 0 {
			storeOpts = append(storeOpts, buntdb.WithTTL(ttl))
		}
		store, err := buntdb.Open(cfg.Store.Path, storeOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("error opening store: %w", err)
		}
		engineOpts = append(engineOpts, powerset.WithStore(store))
		closer = store.Close
		logger.Debug("Using buntdb store", "path", cfg.Store.Path)

	case config.BackendLoam:
		store, err := loam.Open(cfg.Store.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("error opening store: %w", err)
		}
		engineOpts = append(engineOpts, powerset.WithStore(store))
		logger.Debug("Using loam store", "dir", cfg.Store.Dir)

	case config.BackendRedis:
		rc := cfg.Store.Redis
		store := redis.New(rc.Addr, rc.Password, rc.DB, redis.WithPrefix(rc.Prefix), redis.WithTTL(ttl))
		engineOpts = append(engineOpts,
			powerset.WithStore(store),
			powerset.WithLocker(redis.NewLocker(store.Client(), rc.Prefix)),
		)
		closer = store.Close
		logger.Debug("Using redis store", "addr", rc.Addr, "db", rc.DB)

	case config.BackendMemory, "":
		engineOpts = append(engineOpts, powerset.WithStore(memory.NewStore()))

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	engineOpts = append(engineOpts, opts...)
	return powerset.New(engineOpts...), closer, nil
}
