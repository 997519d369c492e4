package bootstrap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/taskd/config"
	"github.com/target/taskd/internal/adapters/evaluator"
	"github.com/target/taskd/internal/core"
	"github.com/target/taskd/internal/data"
	"github.com/target/taskd/internal/observability/notify/pagerduty"
	"github.com/target/taskd/internal/observability/notify/slack"
	"github.com/target/taskd/internal/observability/notify/webhook"
	"github.com/target/taskd/internal/observability/statsd"
	"github.com/target/taskd/internal/service/failurenotifier"
)

// devEvaluatorDelay simulates work in the dev-mode log evaluator so fires are
// visible in the logs as distinct start/finish events.
const devEvaluatorDelay = 100 * time.Millisecond

// buildMetricsSink configures the StatsD client, or returns nil when metrics
// are disabled or the client cannot be created.
func buildMetricsSink(logger *slog.Logger, cfg config.ObservabilityMetricsConfig) *statsd.Client {
	if !cfg.IsEnabled() {
		return nil
	}

	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  cfg.StatsdPrefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	return client
}

// buildFireLog configures the Redis-backed execution history, or returns nil
// when disabled or Redis is unavailable. The scheduler runs fine without it.
func buildFireLog(logger *slog.Logger, cfg config.FireLogConfig, client redis.UniversalClient) *data.FireLogRepo {
	if !cfg.Enabled {
		return nil
	}
	if client == nil {
		logger.Info("fire log disabled", "reason", "redis unavailable")
		return nil
	}

	return data.NewFireLogRepo(client, data.FireLogConfig{
		Size: cfg.Size,
		TTL:  cfg.TTL,
	})
}

// buildFailureNotifier wires the configured notification sinks. A disabled
// notifier is still returned so callers need no nil checks.
func buildFailureNotifier(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig) *failurenotifier.Service {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = slog.Default()
	}

	if !cfg.Enabled {
		return failurenotifier.NewService(failurenotifier.Options{
			Logger: baseLogger.With("component", "failure_notifier"),
		})
	}

	sinks := make([]failurenotifier.SinkRegistration, 0, 3)

	if cfg.Webhook.Enabled {
		client, err := webhook.NewClient(webhook.Config{
			URL:        cfg.Webhook.URL,
			Username:   cfg.Webhook.Username,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			baseLogger.Error("failed to initialise webhook notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{
				Name: "webhook",
				Sink: client,
			})
		}
	}

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL:    cfg.Slack.WebhookURL,
			Channel:       cfg.Slack.Channel,
			Username:      cfg.Slack.Username,
			Timeout:       cfg.Timeout,
			RetryLimit:    cfg.RetryLimit,
			TaskURLPrefix: cfg.Slack.TaskURLPrefix,
		})
		if err != nil {
			baseLogger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{
				Name: "slack",
				Sink: client,
			})
		}
	}

	if cfg.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDuty.RoutingKey,
			Source:     cfg.PagerDuty.Source,
			Component:  cfg.PagerDuty.Component,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			baseLogger.Error("failed to initialise pagerduty notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{
				Name: "pagerduty",
				Sink: client,
			})
		}
	}

	return failurenotifier.NewService(failurenotifier.Options{
		Logger: baseLogger.With("component", "failure_notifier"),
		Sinks:  sinks,
	})
}

// buildEvaluator selects the payload evaluator. Dev mode adds an artificial
// delay to the log evaluator so fire timing is observable.
func buildEvaluator(logger *slog.Logger, cfg *config.AppConfig) (core.Evaluator, error) {
	if cfg.Evaluator.Mode == config.EvaluatorModeLog && cfg.IsDev {
		return evaluator.NewLogEvaluator(evaluator.LogEvaluatorOptions{
			Logger: logger,
			Delay:  devEvaluatorDelay,
		}), nil
	}

	eval, err := evaluator.FromConfig(cfg.Evaluator, logger)
	if err != nil {
		return nil, fmt.Errorf("build evaluator: %w", err)
	}
	return eval, nil
}
