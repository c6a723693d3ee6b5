package main

import (
	"strings"
	"testing"

	"github.com/getahuddle/huddle/internal/config"
)

func TestSetAndGetConfigValue(t *testing.T) {
	cfg := config.Default()

	if err := setConfigValue(cfg, "cache.backend", "sqlite"); err != nil {
		t.Fatalf("set cache.backend: %v", err)
	}
	got, err := getConfigValue(cfg, "cache.backend")
	if err != nil {
		t.Fatalf("get cache.backend: %v", err)
	}
	if got != "sqlite" {
		t.Errorf("expected sqlite, got %s", got)
	}

	if err := setConfigValue(cfg, "scheduler.horizon_days", "14"); err != nil {
		t.Fatalf("set horizon_days: %v", err)
	}
	if cfg.Scheduler.HorizonDays != 14 {
		t.Errorf("expected 14, got %d", cfg.Scheduler.HorizonDays)
	}
}

func TestSetConfigValueRejectsBadInput(t *testing.T) {
	cfg := config.Default()

	if err := setConfigValue(cfg, "cache.backend", "redis"); err == nil {
		t.Error("expected error for unsupported backend")
	}
	if err := setConfigValue(cfg, "scheduler.horizon_days", "-3"); err == nil {
		t.Error("expected error for negative horizon")
	}
	if err := setConfigValue(cfg, "no.such.key", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestGetConfigValueMasksSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.Anthropic.APIKey = "sk-ant-REDACTED"

	got, err := getConfigValue(cfg, "anthropic.api_key")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "abcdefghijklmnop") {
		t.Errorf("API key leaked in display value: %s", got)
	}
}
