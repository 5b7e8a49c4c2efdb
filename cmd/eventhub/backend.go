package main

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"eventhub/db"
	"eventhub/db/memory"
	"eventhub/db/migrations"
	"eventhub/internal/audit"
	"eventhub/internal/workflow"
)

// backend is what both storage implementations provide.
type backend interface {
	workflow.Store
	workflow.IdentityResolver
	audit.Recorder
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openBackend returns the configured store and a closer for its resources.
func (a *app) openBackend(ctx context.Context) (backend, io.Closer, error) {
	if a.cfg.Store == "memory" {
		a.logger.Warn("using in-memory store; data is lost on exit")
		return memory.NewStore(), nopCloser{}, nil
	}

	dbConn, err := db.Connect(ctx, a.cfg.PostgresConn)
	if err != nil {
		return nil, nil, err
	}
	if a.cfg.AutoMigrate {
		if err := migrations.Up(ctx, dbConn.DB); err != nil {
			dbConn.Close()
			return nil, nil, err
		}
		a.logger.Info("migrations applied")
	}
	return db.NewStorage(dbConn), dbConn, nil
}

// recorders builds the audit fan-out: the store itself, the log and, when
// configured, a Redis stream.
func (a *app) recorders(ctx context.Context, store backend) (audit.Multi, io.Closer, error) {
	rec := audit.Multi{store, audit.NewLogRecorder(a.logger)}
	if a.cfg.RedisAddr == "" {
		return rec, nopCloser{}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, errors.Wrapf(err, "ping redis %s", a.cfg.RedisAddr)
	}
	rec = append(rec, audit.NewRedisRecorder(client, a.cfg.RedisStream, a.cfg.RedisMaxLen))
	return rec, client, nil
}
