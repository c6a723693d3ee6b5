package scheduler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/getahuddle/huddle/internal/availability"
	"github.com/getahuddle/huddle/internal/cache"
)

func TestLoadPolicyDefaults(t *testing.T) {
	p, err := LoadPolicy("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if p != DefaultPolicy() {
		t.Errorf("empty path should yield defaults, got %+v", p)
	}
}

func TestLoadPolicyOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	body := "max_alternatives: 5\nleisure_evening_start_hour: 18\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.MaxAlternatives != 5 {
		t.Errorf("max_alternatives = %d, want 5", p.MaxAlternatives)
	}
	if p.LeisureEveningStartHour != 18 {
		t.Errorf("leisure_evening_start_hour = %d, want 18", p.LeisureEveningStartHour)
	}
	// Untouched fields keep their defaults.
	if p.WorkdayStartHour != DefaultPolicy().WorkdayStartHour {
		t.Errorf("workday_start_hour should default, got %d", p.WorkdayStartHour)
	}
}

func TestLoadPolicyRejectsNonsense(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte("max_alternatives: -3\nworkday_end_hour: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.MaxAlternatives != DefaultPolicy().MaxAlternatives {
		t.Errorf("negative max_alternatives should fall back to default, got %d", p.MaxAlternatives)
	}
	if p.WorkdayEndHour <= p.WorkdayStartHour {
		t.Error("inconsistent workday hours should fall back to defaults")
	}
}

func TestNewKeepsPartialPolicy(t *testing.T) {
	s, err := New(Config{
		LLM:          &fakeInvoker{},
		Availability: &availability.StaticSource{},
		Cache:        cache.NewMemoryStore(),
		Policy:       Policy{WorkdayStartHour: 8},
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	p := s.Policy()
	if p.WorkdayStartHour != 8 {
		t.Errorf("caller's workday_start_hour lost, got %d", p.WorkdayStartHour)
	}
	if p.MaxAlternatives != DefaultPolicy().MaxAlternatives {
		t.Errorf("unset max_alternatives should default, got %d", p.MaxAlternatives)
	}
	if p.WorkdayEndHour <= p.WorkdayStartHour {
		t.Errorf("workday_end_hour should default above start, got %d", p.WorkdayEndHour)
	}
}

func TestSetPolicySwapsActivePolicy(t *testing.T) {
	s, err := New(Config{
		LLM:          &fakeInvoker{},
		Availability: &availability.StaticSource{},
		Cache:        cache.NewMemoryStore(),
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	s.SetPolicy(Policy{MaxAlternatives: 5, WorkdayStartHour: 10})
	p := s.Policy()
	if p.MaxAlternatives != 5 || p.WorkdayStartHour != 10 {
		t.Errorf("policy not swapped, got %+v", p)
	}
	if p.LeisureEveningStartHour != DefaultPolicy().LeisureEveningStartHour {
		t.Errorf("unset fields should default on swap, got %d", p.LeisureEveningStartHour)
	}
}
