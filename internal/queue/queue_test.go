package queue

import (
	"errors"
	"testing"

	"github.com/offeroye/internal/config"
	"github.com/offeroye/internal/constants"

	"github.com/hibiken/asynq"
)

func TestCatalogRebuildTaskRoundTrip(t *testing.T) {
	task, err := NewCatalogRebuildTask(CatalogRebuildPayload{Cities: []string{" Pune ", "", "Delhi"}})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskCatalogRebuild {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	payload, err := ParseCatalogRebuildPayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.Reason != constants.RebuildReasonManual {
		t.Fatalf("blank reason should default to manual, got %q", payload.Reason)
	}
	if len(payload.Cities) != 2 || payload.Cities[0] != "Pune" || payload.Cities[1] != "Delhi" {
		t.Fatalf("cities should be trimmed and compacted: %v", payload.Cities)
	}
}

func TestParseCatalogRebuildPayloadEdgeCases(t *testing.T) {
	if _, err := ParseCatalogRebuildPayload(nil); err == nil {
		t.Fatalf("nil task should fail")
	}
	payload, err := ParseCatalogRebuildPayload(asynq.NewTask(TaskCatalogRebuild, nil))
	if err != nil || len(payload.Cities) != 0 {
		t.Fatalf("empty payload should rebuild all cities: %+v %v", payload, err)
	}
	if _, err := ParseCatalogRebuildPayload(asynq.NewTask(TaskCatalogRebuild, []byte("{"))); err == nil {
		t.Fatalf("malformed payload should fail")
	}
}

func TestDisabledClient(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if _, err := client.EnqueueCatalogRebuild(CatalogRebuildPayload{}); !errors.Is(err, ErrQueueDisabled) {
		t.Fatalf("expected ErrQueueDisabled, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client failed: %v", err)
	}
	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatalf("nil client should be disabled")
	}
}

func TestBuildServerConfig(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" || cfg.Concurrency != 10 || cfg.Queues[DefaultQueue] != 1 {
		t.Fatalf("unexpected defaults: %+v %+v", opt, cfg)
	}
	opt, cfg = BuildServerConfig(&config.QueueConfig{
		Host:        " redis ",
		Port:        6380,
		DB:          2,
		Concurrency: 4,
		Queues:      map[string]int{"critical": 3},
	})
	if opt.Addr != "redis:6380" || opt.DB != 2 || cfg.Concurrency != 4 || cfg.Queues["critical"] != 3 {
		t.Fatalf("unexpected config: %+v %+v", opt, cfg)
	}
}

func TestBuildServerConfigWiresHandlers(t *testing.T) {
	_, cfg := BuildServerConfig(&config.QueueConfig{})
	if cfg.Logger == nil || cfg.ErrorHandler == nil {
		t.Fatalf("server config should carry logger and error handler")
	}
	if cfg.ShutdownTimeout != workerShutdownTimeout {
		t.Fatalf("unexpected shutdown timeout: %s", cfg.ShutdownTimeout)
	}
}
