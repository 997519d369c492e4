package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/target/taskd/internal/observability/notify"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error when webhook url missing")
	}
}

func TestFormatMessageIncludesFields(t *testing.T) {
	client, err := NewClient(Config{
		URL:      "https://hooks.example.com/services/test",
		Username: "bot",
		Timeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	due := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	msg := client.formatMessage(notify.TaskFailurePayload{
		TaskID:      "backup.nightly",
		ExecutionID: "exec-123",
		Trigger:     "scheduled",
		Due:         &due,
		Error:       "boom",
		ErrorClass:  "test_error",
		Duration:    250 * time.Millisecond,
	})

	if msg["username"] != "bot" {
		t.Fatalf("expected username to be preserved, got %v", msg["username"])
	}

	text, ok := msg["text"].(string)
	if !ok {
		t.Fatalf("expected text field")
	}
	if !containsAll(
		text,
		[]string{"Task execution failed", "backup.nightly", "scheduled", "exec-123", "2026-01-15T10:00:00Z", "boom", "test_error"},
	) {
		t.Fatalf("message text missing fields: %s", text)
	}
}

func TestFormatMessageDefaultsUsernameAndSeverity(t *testing.T) {
	client, err := NewClient(Config{URL: "https://hooks.example.com/services/test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := client.formatMessage(notify.TaskFailurePayload{TaskID: "t1", Error: "x"})
	if msg["username"] != "taskd" {
		t.Fatalf("expected default username, got %v", msg["username"])
	}

	text, ok := msg["text"].(string)
	if !ok {
		t.Fatalf("expected text field")
	}
	if !strings.Contains(text, notify.SeverityCritical) {
		t.Fatalf("expected default severity in text: %s", text)
	}
}

func TestFormatMessageEscapesError(t *testing.T) {
	client, err := NewClient(Config{URL: "https://hooks.example.com/services/test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := client.formatMessage(notify.TaskFailurePayload{
		TaskID: "t1",
		Error:  "expected <ok> & got <fail>",
	})

	text, ok := msg["text"].(string)
	if !ok {
		t.Fatalf("expected text field")
	}
	if !strings.Contains(text, "expected &lt;ok&gt; &amp; got &lt;fail&gt;") {
		t.Fatalf("expected escaped error, got: %s", text)
	}
}

func TestSendTaskFailureRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "try again", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL, RetryLimit: 2, Timeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sendErr := client.SendTaskFailure(context.Background(), notify.TaskFailurePayload{TaskID: "t1", Error: "x"}); sendErr != nil {
		t.Fatalf("expected retry to succeed, got %v", sendErr)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestSendTaskFailureReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such hook", http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL, Timeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sendErr := client.SendTaskFailure(context.Background(), notify.TaskFailurePayload{TaskID: "t1", Error: "x"})
	if sendErr == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(sendErr.Error(), "404") {
		t.Fatalf("expected status in error, got: %v", sendErr)
	}
}

func containsAll(text string, substrs []string) bool {
	for _, s := range substrs {
		if !strings.Contains(text, s) {
			return false
		}
	}
	return true
}
