package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/taskd/config"
	"github.com/target/taskd/internal/bootstrap"
)

type connectInfraOptions struct {
	Logger    *slog.Logger
	Config    *config.AppConfig
	WantRedis bool
}

// connectInfra opens the database and, when a command asks for it, Redis.
// Redis only backs the fire log, so a failed connection degrades to a nil
// client instead of failing the command.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func connectInfra(opts *connectInfraOptions) (*sql.DB, redis.UniversalClient, error) {
	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: opts.Config.Postgres,
		Logger:   opts.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect db: %w", err)
	}

	return db, maybeConnectRedis(opts), nil
}

// maybeConnectRedis returns a connected client when the fire log is enabled
// and Redis answers, nil otherwise.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func maybeConnectRedis(opts *connectInfraOptions) redis.UniversalClient {
	if !opts.WantRedis {
		return nil
	}
	if !opts.Config.Observability.FireLog.Enabled {
		opts.Logger.Info("fire log disabled in configuration; skipping redis connection")
		return nil
	}

	client, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
		RedisConfig: opts.Config.Redis,
		Logger:      opts.Logger,
	})
	if err != nil {
		opts.Logger.Warn("redis unavailable, fire history will not be readable", "error", err)
		return nil
	}
	return client
}

func closeInfra(db *sql.DB, redisClient redis.UniversalClient) error {
	var closeErr error
	if db != nil {
		if err := db.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close db: %w", err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close redis: %w", err))
		}
	}
	return closeErr
}

type serviceOptions struct {
	Timeout   time.Duration
	WantRedis bool
}

// withServices connects infrastructure, wires the application container and
// hands it to f. The container's engine is never started here; schedules
// written by CLI commands reach the daemon over the schedule wake channel.
func withServices(
	cmdCtx *commandContext,
	opts serviceOptions,
	f func(context.Context, *bootstrap.Container) error,
) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	db, redisClient, err := connectInfra(&connectInfraOptions{
		Logger:    cmdCtx.Logger,
		Config:    &cmdCtx.Config,
		WantRedis: opts.WantRedis,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeInfra(db, redisClient); cerr != nil {
			cmdCtx.Logger.Warn("close infra failed", "error", cerr)
		}
	}()

	container, err := bootstrap.NewContainer(&bootstrap.ContainerDeps{
		Config: &cmdCtx.Config,
		DB:     db,
		Redis:  redisClient,
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("wire services: %w", err)
	}
	defer container.Close()

	return f(ctx, container)
}
