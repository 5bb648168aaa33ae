package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/rshade/esgledger/internal/cache"
	"github.com/rshade/esgledger/internal/config"
	"github.com/rshade/esgledger/internal/emissions"
	"github.com/rshade/esgledger/internal/history"
	"github.com/rshade/esgledger/internal/logging"
	"github.com/rshade/esgledger/internal/review"
)

// factorTable returns the configured factor table or the built-in one.
func (a *app) factorTable() (*emissions.FactorTable, error) {
	if a.cfg.Factors.File == "" {
		return emissions.DefaultFactorTable(), nil
	}
	return emissions.LoadFactorTable(a.cfg.Factors.File)
}

// openStore opens and migrates the entry database.
func (a *app) openStore(ctx context.Context) (*history.SQLStore, error) {
	dsn, err := a.cfg.StoreDSN()
	if err != nil {
		return nil, err
	}
	if a.cfg.Store.Driver == config.DriverSQLite {
		if err = os.MkdirAll(filepath.Dir(dsn), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := history.Open(ctx, a.cfg.Store.Driver, dsn)
	if err != nil {
		return nil, err
	}
	if err = store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	store.SetWriters(a.cfg.Store.Writers)
	return store, nil
}

// historySource returns the source validation reads from. A history file
// takes precedence over the database; the configured cache wraps the
// database. An unreachable database yields a nil source, which validates
// as insufficient history. The returned func releases everything that was
// opened.
func (a *app) historySource(ctx context.Context, historyFile string) (history.Source, func(), error) {
	if historyFile != "" {
		src, err := history.LoadMemorySource(historyFile)
		if err != nil {
			return nil, nil, err
		}
		return src, func() {}, nil
	}

	log := logging.FromContext(ctx)
	store, err := a.openStore(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		log.Warn().
			Str("component", "history").
			Str("operation", "open_store").
			Str("driver", a.cfg.Store.Driver).
			Err(err).
			Msg("history store unavailable, skipping statistical checks")
		return nil, func() {}, nil
	}
	closers := []func() error{store.Close}
	cleanup := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	switch a.cfg.Cache.Backend {
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     a.cfg.Cache.Redis.Addr,
			Password: a.cfg.Cache.Redis.Password,
			DB:       a.cfg.Cache.Redis.DB,
		})
		closers = append(closers, client.Close)
		log.Debug().Str("addr", a.cfg.Cache.Redis.Addr).Msg("using redis history cache")
		return history.NewCachedSource(store, history.NewRedisCache(client, a.cfg.Cache.TTL)), cleanup, nil

	case config.CacheFile:
		dir, dirErr := a.cfg.CacheDir()
		if dirErr != nil {
			cleanup()
			return nil, nil, dirErr
		}
		fs, fsErr := cache.NewFileStore(dir, a.cfg.Cache.TTL)
		if fsErr != nil {
			cleanup()
			return nil, nil, fsErr
		}
		if removed, cleanErr := fs.CleanupExpired(); cleanErr == nil && removed > 0 {
			log.Debug().Int("removed", removed).Msg("expired history cache entries removed")
		}
		return history.NewCachedSource(store, history.NewFileCache(fs)), cleanup, nil
	}

	return store, cleanup, nil
}

// publisher returns the review queue, or a no-op publisher when disabled.
func (a *app) publisher() (review.Publisher, error) {
	if !a.cfg.Review.Enabled {
		return review.NopPublisher{}, nil
	}
	p, err := review.NewKafkaPublisher(a.cfg.Review.Brokers, a.cfg.Review.Topic)
	if err != nil {
		return nil, fmt.Errorf("creating review publisher: %w", err)
	}
	return p, nil
}

// errNoInput is returned when a command needs a file flag that was not set.
var errNoInput = errors.New("--file is required")
