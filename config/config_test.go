package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_ParseEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6432")
	t.Setenv("DB_NAME", "tasks")
	t.Setenv("SCHEDULER_AUTO_START", "false")
	t.Setenv("SCHEDULER_MIN_FIRE_DELAY", "500ms")
	t.Setenv("SCHEDULER_MAX_TIMER_SLEEP", "720h")
	t.Setenv("SCHEDULER_RETRY_INTERVAL", "10s")
	t.Setenv("EVALUATOR_MODE", "exec")
	t.Setenv("EVALUATOR_COMMAND", "/usr/local/bin/lambda")
	t.Setenv("EVALUATOR_TIMEOUT", "30s")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Postgres.Host != "db.internal" {
		t.Errorf("Postgres.Host = %q, want db.internal", cfg.Postgres.Host)
	}
	if cfg.Postgres.Port != 6432 {
		t.Errorf("Postgres.Port = %d, want 6432", cfg.Postgres.Port)
	}
	if cfg.Postgres.Name != "tasks" {
		t.Errorf("Postgres.Name = %q, want tasks", cfg.Postgres.Name)
	}
	if cfg.Scheduler.AutoStart {
		t.Error("Scheduler.AutoStart = true, want false")
	}
	if cfg.Scheduler.MinFireDelay != 500*time.Millisecond {
		t.Errorf("Scheduler.MinFireDelay = %v, want 500ms", cfg.Scheduler.MinFireDelay)
	}
	if cfg.Scheduler.MaxTimerSleep != 720*time.Hour {
		t.Errorf("Scheduler.MaxTimerSleep = %v, want 720h", cfg.Scheduler.MaxTimerSleep)
	}
	if cfg.Scheduler.RetryInterval != 10*time.Second {
		t.Errorf("Scheduler.RetryInterval = %v, want 10s", cfg.Scheduler.RetryInterval)
	}
	if cfg.Evaluator.Mode != EvaluatorModeExec {
		t.Errorf("Evaluator.Mode = %q, want exec", cfg.Evaluator.Mode)
	}
	if cfg.Evaluator.Command != "/usr/local/bin/lambda" {
		t.Errorf("Evaluator.Command = %q, want /usr/local/bin/lambda", cfg.Evaluator.Command)
	}
	if cfg.Evaluator.Timeout != 30*time.Second {
		t.Errorf("Evaluator.Timeout = %v, want 30s", cfg.Evaluator.Timeout)
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if !cfg.Scheduler.AutoStart {
		t.Error("Scheduler.AutoStart default should be true")
	}
	if cfg.Scheduler.MinFireDelay != 250*time.Millisecond {
		t.Errorf("Scheduler.MinFireDelay default = %v, want 250ms", cfg.Scheduler.MinFireDelay)
	}
	if cfg.Scheduler.MaxTimerSleep != 1080*time.Hour {
		t.Errorf("Scheduler.MaxTimerSleep default = %v, want 1080h (45 days)", cfg.Scheduler.MaxTimerSleep)
	}
	if cfg.Scheduler.DefaultListLimit != 10 {
		t.Errorf("Scheduler.DefaultListLimit default = %d, want 10", cfg.Scheduler.DefaultListLimit)
	}
	if cfg.Evaluator.Mode != EvaluatorModeLog {
		t.Errorf("Evaluator.Mode default = %q, want log", cfg.Evaluator.Mode)
	}
	if !cfg.Postgres.RunMigrationsOnStart {
		t.Error("Postgres.RunMigrationsOnStart default should be true")
	}
}

func TestSchedulerConfig_Sanitize(t *testing.T) {
	cfg := SchedulerConfig{
		MinFireDelay:     time.Millisecond,
		MaxTimerSleep:    time.Minute,
		RetryInterval:    0,
		DefaultListLimit: 0,
		MaxListLimit:     1,
	}

	cfg.Sanitize()

	if cfg.MinFireDelay < 50*time.Millisecond {
		t.Errorf("MinFireDelay not clamped, got %v", cfg.MinFireDelay)
	}
	if cfg.MaxTimerSleep < time.Hour {
		t.Errorf("MaxTimerSleep not clamped, got %v", cfg.MaxTimerSleep)
	}
	if cfg.MaxTimerSleep <= cfg.MinFireDelay {
		t.Errorf("MaxTimerSleep %v should exceed MinFireDelay %v", cfg.MaxTimerSleep, cfg.MinFireDelay)
	}
	if cfg.RetryInterval < time.Second {
		t.Errorf("RetryInterval not clamped, got %v", cfg.RetryInterval)
	}
	if cfg.DefaultListLimit != 10 {
		t.Errorf("DefaultListLimit = %d, want 10", cfg.DefaultListLimit)
	}
	if cfg.MaxListLimit < cfg.DefaultListLimit {
		t.Errorf("MaxListLimit %d should be >= DefaultListLimit %d", cfg.MaxListLimit, cfg.DefaultListLimit)
	}
}

func TestEvaluatorConfig_Sanitize(t *testing.T) {
	tests := []struct {
		name     string
		cfg      EvaluatorConfig
		wantMode EvaluatorMode
		wantCmd  string
	}{
		{
			name:     "unknown mode falls back to log",
			cfg:      EvaluatorConfig{Mode: "bogus", Command: "/bin/sh", Timeout: time.Minute},
			wantMode: EvaluatorModeLog,
			wantCmd:  "/bin/sh",
		},
		{
			name:     "exec mode normalised from mixed case",
			cfg:      EvaluatorConfig{Mode: "Exec", Command: " /bin/bash ", Timeout: time.Minute},
			wantMode: EvaluatorModeExec,
			wantCmd:  "/bin/bash",
		},
		{
			name:     "empty command falls back to /bin/sh",
			cfg:      EvaluatorConfig{Mode: "exec", Command: "  ", Timeout: time.Minute},
			wantMode: EvaluatorModeExec,
			wantCmd:  "/bin/sh",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Sanitize()
			if tt.cfg.Mode != tt.wantMode {
				t.Errorf("Mode = %q, want %q", tt.cfg.Mode, tt.wantMode)
			}
			if tt.cfg.Command != tt.wantCmd {
				t.Errorf("Command = %q, want %q", tt.cfg.Command, tt.wantCmd)
			}
			if tt.cfg.Timeout < time.Second {
				t.Errorf("Timeout not clamped, got %v", tt.cfg.Timeout)
			}
		})
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " ",
	}

	cfg.Sanitize()

	if cfg.Enabled {
		t.Fatalf("expected enabled to be false when address is empty")
	}

	cfg = ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " statsd:1234 ",
	}

	cfg.Sanitize()

	if !cfg.IsEnabled() {
		t.Fatalf("expected metrics to remain enabled")
	}
	if cfg.StatsdAddress != "statsd:1234" {
		t.Fatalf("expected address to be trimmed, got %q", cfg.StatsdAddress)
	}
}

func TestFireLogConfig_Sanitize(t *testing.T) {
	cfg := FireLogConfig{Enabled: true, Size: 0, TTL: time.Second}

	cfg.Sanitize()

	if cfg.Size < 1 {
		t.Errorf("Size not clamped, got %d", cfg.Size)
	}
	if cfg.TTL < time.Minute {
		t.Errorf("TTL not clamped, got %v", cfg.TTL)
	}

	cfg = FireLogConfig{Enabled: true, Size: 1_000_000, TTL: time.Hour}
	cfg.Sanitize()

	if cfg.Size > 10000 {
		t.Errorf("Size not capped, got %d", cfg.Size)
	}
}

func TestObservabilityNotificationsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityNotificationsConfig{
		Enabled: true,
		Timeout: 0,
		Webhook: WebhookNotificationConfig{
			Enabled:  true,
			URL:      " ",
			Username: "",
		},
	}

	cfg.Sanitize()

	if cfg.Timeout <= 0 {
		t.Fatalf("expected timeout to fall back to default, got %v", cfg.Timeout)
	}
	if cfg.Webhook.Enabled {
		t.Fatal("expected webhook to be disabled without a url")
	}
	if cfg.Webhook.Username != "taskd" {
		t.Fatalf("expected webhook username default, got %q", cfg.Webhook.Username)
	}

	// Disabled top-level should disable every sink.
	cfg = ObservabilityNotificationsConfig{
		Enabled: false,
		Webhook: WebhookNotificationConfig{
			Enabled: true,
			URL:     "https://hooks.example.com/taskd",
		},
		Slack: SlackNotificationConfig{
			Enabled:    true,
			WebhookURL: "https://hooks.slack.com/services/test",
		},
		PagerDuty: PagerDutyNotificationConfig{
			Enabled:    true,
			RoutingKey: "key",
		},
	}
	cfg.Sanitize()

	if cfg.Webhook.Enabled {
		t.Fatal("expected webhook to be disabled when top-level notifications disabled")
	}
	if cfg.Slack.Enabled {
		t.Fatal("expected slack to be disabled when top-level notifications disabled")
	}
	if cfg.PagerDuty.Enabled {
		t.Fatal("expected pagerduty to be disabled when top-level notifications disabled")
	}
}

func TestSlackAndPagerDutyConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityNotificationsConfig{
		Enabled:    true,
		RetryLimit: -2,
		Slack: SlackNotificationConfig{
			Enabled:    true,
			WebhookURL: "  ",
			Username:   " ",
		},
		PagerDuty: PagerDutyNotificationConfig{
			Enabled:    true,
			RoutingKey: "",
		},
	}
	cfg.Sanitize()

	if cfg.RetryLimit != 0 {
		t.Fatalf("expected retry limit clamp, got %d", cfg.RetryLimit)
	}
	if cfg.Slack.Enabled {
		t.Fatal("expected slack to be disabled without a webhook url")
	}
	if cfg.Slack.Username != "taskd" {
		t.Fatalf("expected slack username default, got %q", cfg.Slack.Username)
	}
	if cfg.PagerDuty.Enabled {
		t.Fatal("expected pagerduty to be disabled without a routing key")
	}
	if cfg.PagerDuty.Source != "taskd" {
		t.Fatalf("expected pagerduty source default, got %q", cfg.PagerDuty.Source)
	}
	if cfg.PagerDuty.Component != "taskd" {
		t.Fatalf("expected pagerduty component default, got %q", cfg.PagerDuty.Component)
	}

	cfg = ObservabilityNotificationsConfig{
		Enabled: true,
		Slack: SlackNotificationConfig{
			Enabled:       true,
			WebhookURL:    " https://hooks.slack.com/services/test ",
			Channel:       " #taskd-alerts ",
			TaskURLPrefix: " https://taskd.example.com/tasks ",
		},
		PagerDuty: PagerDutyNotificationConfig{
			Enabled:    true,
			RoutingKey: " key ",
		},
	}
	cfg.Sanitize()

	if !cfg.Slack.Enabled {
		t.Fatal("expected slack to stay enabled with a webhook url")
	}
	if cfg.Slack.WebhookURL != "https://hooks.slack.com/services/test" {
		t.Fatalf("expected trimmed webhook url, got %q", cfg.Slack.WebhookURL)
	}
	if cfg.Slack.Channel != "#taskd-alerts" {
		t.Fatalf("expected trimmed channel, got %q", cfg.Slack.Channel)
	}
	if cfg.Slack.TaskURLPrefix != "https://taskd.example.com/tasks" {
		t.Fatalf("expected trimmed task url prefix, got %q", cfg.Slack.TaskURLPrefix)
	}
	if !cfg.PagerDuty.Enabled {
		t.Fatal("expected pagerduty to stay enabled with a routing key")
	}
	if cfg.PagerDuty.RoutingKey != "key" {
		t.Fatalf("expected trimmed routing key, got %q", cfg.PagerDuty.RoutingKey)
	}
}
