package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ngoyal88/quip/pkg/annotate"
	"github.com/ngoyal88/quip/pkg/api"
	"github.com/ngoyal88/quip/pkg/cache"
	"github.com/ngoyal88/quip/pkg/config"
	"github.com/ngoyal88/quip/pkg/remote"
	"github.com/ngoyal88/quip/pkg/storage"
)

// app is the wired set of components shared by run and test.
type app struct {
	engine  *annotate.Engine
	journal storage.Store
	redis   *storage.Client
	status  *http.Server
}

func newApp(cfg config.Config) (*app, error) {
	a := &app{}
	logger := component("app")

	if cfg.Redis.Enabled {
		rdb, err := storage.NewRedis(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		a.redis = rdb
		logger.Info().Str("addr", cfg.Redis.Address).Msg("connected to redis")
	}

	if cfg.Journal.Enabled {
		switch cfg.Journal.Backend {
		case "redis":
			a.journal = storage.NewRedisStore(a.redis, cfg.Journal.Retention)
		default:
			a.journal = storage.NewMemoryStore(cfg.Journal.Capacity, cfg.Journal.Retention)
		}
		logger.Info().Str("backend", cfg.Journal.Backend).Msg("annotation journal enabled")
	}

	remoteLog := component("remote")
	opts := []remote.Option{remote.WithLogger(remoteLog)}
	if a.redis != nil {
		opts = append(opts, remote.WithQuota(remote.NewRedisQuota(
			a.redis.Redis(), "quip:quota:"+cfg.Remote.Provider,
			cfg.Remote.RateLimit, cfg.Remote.RateWindow, remoteLog,
		)))
	}
	client := remote.New(annotate.RemoteOptions(cfg.Remote), opts...)

	a.engine = annotate.New(annotate.Options{
		Config:  cfg,
		Remote:  client,
		Cache:   cache.New(cfg.Cache.Size),
		Journal: a.journal,
		Logger:  component("annotate"),
	})

	if cfg.Status.Enabled {
		srv := api.NewServer(a.engine, a.journal, cfg.Status.AdminKey, component("api"))
		a.status = &http.Server{
			Addr:              cfg.Status.Addr,
			Handler:           srv.Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return a, nil
}

// serve starts the status server in the background.
func (a *app) serve() {
	if a.status == nil {
		return
	}
	logger := component("api")
	go func() {
		logger.Info().Str("addr", a.status.Addr).Msg("status server listening")
		if err := a.status.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("status server failed")
		}
	}()
}

// janitor sweeps stale cache entries until ctx is done.
func (a *app) janitor(ctx context.Context, maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}
	interval := max(maxAge/4, time.Second)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.engine.Cleanup(maxAge)
			}
		}
	}()
}

func (a *app) close() error {
	a.engine.Wait()

	var errs []error
	if a.status != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.status.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown status server: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}
