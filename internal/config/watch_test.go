package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":8080\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	stop, err := Watch(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	}, nil)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer stop()

	// Let the watcher register before mutating the file.
	time.Sleep(50 * time.Millisecond)
	body := "server:\n  addr: \":9999\"\nscheduler:\n  policy_path: \"alt.yaml\"\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Server.Addr != ":9999" {
			t.Errorf("addr = %q, want :9999", cfg.Server.Addr)
		}
		if cfg.Scheduler.PolicyPath != "alt.yaml" {
			t.Errorf("policy_path = %q, want alt.yaml", cfg.Scheduler.PolicyPath)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after config write")
	}
}

func TestWatchKeepsOldConfigOnParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":8080\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	failed := make(chan error, 1)
	stop, err := Watch(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	}, func(err error) {
		select {
		case failed <- err:
		default:
		}
	})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer stop()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("server: [unclosed\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-failed:
	case cfg := <-reloaded:
		t.Fatalf("broken config must not reach onChange, got %+v", cfg)
	case <-time.After(3 * time.Second):
		t.Fatal("parse failure never reported")
	}
}

func TestWatchIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":8080\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	stop, err := Watch(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	}, nil)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer stop()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloaded:
		t.Fatal("writes to sibling files must not trigger a reload")
	case <-time.After(300 * time.Millisecond):
	}
}
