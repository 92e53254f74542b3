package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.WorkdayOpen != "09:00" || cfg.WorkdayClose != "17:00" {
		t.Errorf("workday = %s-%s, want 09:00-17:00", cfg.WorkdayOpen, cfg.WorkdayClose)
	}
	if cfg.SlotMinutes != 30 {
		t.Errorf("SlotMinutes = %d, want 30", cfg.SlotMinutes)
	}
	if cfg.DisabledWeekday != "Sunday" {
		t.Errorf("DisabledWeekday = %s, want Sunday", cfg.DisabledWeekday)
	}
	if cfg.CRMTimeout != 5*time.Second {
		t.Errorf("CRMTimeout = %s, want 5s", cfg.CRMTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SLOT_MINUTES", "15")
	t.Setenv("CRM_TIMEOUT", "10s")
	t.Setenv("USE_MEMORY_QUEUE", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	if cfg.SlotMinutes != 15 {
		t.Errorf("SlotMinutes = %d, want 15", cfg.SlotMinutes)
	}
	if cfg.CRMTimeout != 10*time.Second {
		t.Errorf("CRMTimeout = %s, want 10s", cfg.CRMTimeout)
	}
	if !cfg.UseMemoryQueue {
		t.Error("UseMemoryQueue should be true")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestGetEnvAsIntIgnoresGarbage(t *testing.T) {
	t.Setenv("WORKER_COUNT", "not-a-number")
	if cfg := Load(); cfg.WorkerCount != 2 {
		t.Errorf("WorkerCount = %d, want default 2", cfg.WorkerCount)
	}
}
