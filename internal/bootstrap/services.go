package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/target/taskd/config"
	"github.com/target/taskd/internal/core"
	"github.com/target/taskd/internal/data"
	"github.com/target/taskd/internal/observability/statsd"
	"github.com/target/taskd/internal/scheduler"
	"github.com/target/taskd/internal/service"
	"github.com/target/taskd/internal/service/failurenotifier"
)

// shutdownWaitTimeout bounds how long shutdown waits for background workers.
const shutdownWaitTimeout = 15 * time.Second

// wakeListenerBackoff is the pause before reconnecting a failed LISTEN session.
const wakeListenerBackoff = 5 * time.Second

// Container holds the wired application components.
type Container struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sql.DB
	Redis  redis.UniversalClient // nil when unavailable

	Store     *data.TaskRepo
	FireLog   *data.FireLogRepo // nil when disabled
	Evaluator core.Evaluator
	Executor  *scheduler.Executor
	Engine    *scheduler.Engine
	Tasks     *service.TaskService

	Metrics  *statsd.Client // nil when disabled
	Notifier *failurenotifier.Service
}

// ContainerDeps groups dependencies for container initialization.
type ContainerDeps struct {
	Config *config.AppConfig
	DB     *sql.DB
	Redis  redis.UniversalClient // Optional: fire log runs without it
	Logger *slog.Logger
}

// NewContainer wires the store, evaluator, engine, executor and facade from
// shared infrastructure. It does not start the engine.
func NewContainer(deps *ContainerDeps) (*Container, error) {
	if deps == nil {
		return nil, errors.New("container deps are required")
	}
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	if deps.DB == nil {
		return nil, errors.New("database is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	store := data.NewTaskRepo(deps.DB)

	metricsClient := buildMetricsSink(logger, cfg.Observability.Metrics)
	var sink statsd.Sink
	if metricsClient != nil {
		sink = metricsClient
	}

	fireLog := buildFireLog(logger, cfg.Observability.FireLog, deps.Redis)
	var fires core.FireRecorder
	if fireLog != nil {
		fires = fireLog
	}

	notifier := buildFailureNotifier(logger, cfg.Observability.Notifications)

	eval, err := buildEvaluator(logger, cfg)
	if err != nil {
		return nil, err
	}

	executor := scheduler.NewExecutor(scheduler.ExecutorOptions{
		Store:     store,
		Evaluator: eval,
		Fires:     fires,
		Notifier:  notifier,
		Logger:    logger,
		Metrics:   sink,
	})

	engine := scheduler.NewEngine(scheduler.EngineOptions{
		Store:    store,
		Executor: executor,
		Config:   &cfg.Scheduler,
		Logger:   logger,
		Metrics:  sink,
	})

	tasks, err := service.NewTaskService(service.TaskServiceOptions{
		Store:    store,
		Engine:   engine,
		Executor: executor,
		Config:   &cfg.Scheduler,
		Fires:    fires,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:    cfg,
		Logger:    logger,
		DB:        deps.DB,
		Redis:     deps.Redis,
		Store:     store,
		FireLog:   fireLog,
		Evaluator: eval,
		Executor:  executor,
		Engine:    engine,
		Tasks:     tasks,
		Metrics:   metricsClient,
		Notifier:  notifier,
	}, nil
}

// Close releases resources owned by the container. The database and Redis
// connections belong to the caller and are not closed here.
func (c *Container) Close() {
	c.Engine.Stop()

	if c.Metrics != nil {
		if err := c.Metrics.Close(); err != nil {
			c.Logger.Warn("close statsd client failed", "error", err)
		}
	}
}

// Run starts the engine per configuration and blocks until a shutdown signal
// arrives, the caller's context ends, or a background worker fails.
func Run(ctx context.Context, c *Container) error {
	if c == nil {
		return errors.New("container is required")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if c.Config.Scheduler.AutoStart {
		c.Engine.Start(runCtx)
	} else {
		c.Logger.InfoContext(runCtx, "scheduler idle until started", "reason", "auto start disabled via config")
	}

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return runWakeListener(gctx, c)
	})

	groupDone := make(chan error, 1)
	go func() {
		groupDone <- g.Wait()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case sig := <-quit:
		c.Logger.InfoContext(runCtx, "shutting down", "signal", sig.String())
		cancel()
		runErr = waitForWorkers(groupDone, c.Logger)
	case <-ctx.Done():
		cancel()
		runErr = waitForWorkers(groupDone, c.Logger)
	case err := <-groupDone:
		cancel()
		if err != nil && !errors.Is(err, context.Canceled) {
			c.Logger.ErrorContext(runCtx, "background worker failed", "error", err)
			runErr = err
		}
	}

	c.Engine.Stop()
	c.Logger.Info("scheduler stopped cleanly")
	return runErr
}

// waitForWorkers drains the errgroup result with a timeout so a stuck LISTEN
// session cannot hang shutdown.
func waitForWorkers(done <-chan error, logger *slog.Logger) error {
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for background workers to stop")
		return nil
	}
}

// runWakeListener blocks on the store's schedule-change channel and pokes the
// engine on every signal, so schedule writes from other processes re-arm this
// one without polling.
func runWakeListener(ctx context.Context, c *Container) error {
	logger := c.Logger.With("component", "wake_listener")

	for {
		if err := c.Store.WaitForScheduleChange(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			logger.WarnContext(ctx, "schedule change listener error", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wakeListenerBackoff):
			}
			continue
		}

		c.Engine.Rearm(ctx)
	}
}
