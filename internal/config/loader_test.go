package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Strob0t/TaskForge/internal/config"
)

func TestLoadFrom_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Foreman.MaxRetries != 2 || cfg.Foreman.MaxPlanNodes != 10 {
		t.Fatalf("unexpected foreman defaults: %+v", cfg.Foreman)
	}
	if cfg.Foreman.TaskSLA != 5*time.Minute {
		t.Fatalf("expected 5m task SLA, got %v", cfg.Foreman.TaskSLA)
	}
}

func TestLoadFrom_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskforge.yaml")
	data := []byte(`
server:
  port: "9090"
foreman:
  max_retries: 5
  retry_base_delay: 1s
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Foreman.MaxRetries != 5 {
		t.Fatalf("expected max_retries 5, got %d", cfg.Foreman.MaxRetries)
	}
	if cfg.Foreman.RetryBaseDelay != time.Second {
		t.Fatalf("expected 1s base delay, got %v", cfg.Foreman.RetryBaseDelay)
	}
	// Untouched keys keep their defaults.
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Fatalf("expected default nats url, got %q", cfg.NATS.URL)
	}
}

func TestLoadFrom_EnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskforge.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	t.Setenv("TASKFORGE_PORT", "7070")
	t.Setenv("TASKFORGE_MAX_PARALLEL", "8")
	t.Setenv("TASKFORGE_TASK_SLA", "10m")
	t.Setenv("NATS_URL", "nats://queue:4222")

	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("expected env port 7070, got %q", cfg.Server.Port)
	}
	if cfg.Foreman.MaxParallel != 8 {
		t.Fatalf("expected max_parallel 8, got %d", cfg.Foreman.MaxParallel)
	}
	if cfg.Foreman.TaskSLA != 10*time.Minute {
		t.Fatalf("expected 10m SLA, got %v", cfg.Foreman.TaskSLA)
	}
	if cfg.NATS.URL != "nats://queue:4222" {
		t.Fatalf("expected env nats url, got %q", cfg.NATS.URL)
	}
}

func TestLoadFrom_RejectsInvalidValues(t *testing.T) {
	t.Setenv("TASKFORGE_MAX_PARALLEL", "0")
	if _, err := config.LoadFrom(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected validation error for max_parallel 0")
	}
}

func TestLoadFrom_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskforge.yaml")
	if err := os.WriteFile(path, []byte("server: ["), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if _, err := config.LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}
