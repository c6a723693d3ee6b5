package scheduler

import (
	"context"
	"fmt"
	"testing"
)

func TestRegistryRunsTaskAndClearsIt(t *testing.T) {
	r := NewRegistry(NopLogger())
	done := make(chan string, 1)

	id := r.Start(func(_ context.Context, id string) error {
		done <- id
		return nil
	})
	if id == "" {
		t.Fatal("expected a generated id")
	}
	if got := <-done; got != id {
		t.Errorf("task saw id %q, registry returned %q", got, id)
	}

	r.Wait()
	if r.Active() != 0 {
		t.Errorf("expected no active tasks, got %d", r.Active())
	}
}

func TestRegistrySurvivesPanicAndError(t *testing.T) {
	r := NewRegistry(NopLogger())

	r.Start(func(context.Context, string) error {
		panic("enrichment exploded")
	})
	r.Start(func(context.Context, string) error {
		return fmt.Errorf("provider down")
	})

	// Wait must return: both tasks finished despite failing.
	r.Wait()
	if r.Active() != 0 {
		t.Errorf("failed tasks must be cleared, %d still active", r.Active())
	}
}

func TestRegistryIDsAreUnique(t *testing.T) {
	r := NewRegistry(NopLogger())
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		id := r.Start(func(context.Context, string) error { return nil })
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
	r.Wait()
}
