package engine

import (
	"context"
	"testing"
	"time"
)

func TestFinalFieldsExcludesUnderscorePrefixed(t *testing.T) {
	data := map[string]any{
		"five_sec_total":     23.0,
		"_parsed_by":         "regex",
		"_cpu_instantaneous": true,
	}
	got := finalFields(data)
	if len(got) != 1 || got[0] != "five_sec_total" {
		t.Fatalf("expected only five_sec_total, got %v", got)
	}
}

func TestAddedKeysComputesDiff(t *testing.T) {
	before := []string{"a", "b"}
	after := []string{"a", "b", "c", "d"}
	got := addedKeys(before, after)
	if len(got) != 2 {
		t.Fatalf("expected 2 added keys, got %v", got)
	}
}

func TestBaseIntervalDefaultsTo30s(t *testing.T) {
	e := &Engine{}
	if e.baseInterval() != 30*time.Second {
		t.Fatalf("expected default base interval 30s, got %v", e.baseInterval())
	}
	e.cfg.BaseIntervalSeconds = 5
	if e.baseInterval() != 5*time.Second {
		t.Fatalf("expected configured base interval 5s, got %v", e.baseInterval())
	}
}

// sleepInterruptible must return promptly once the context is cancelled,
// well before the requested duration elapses -- this is what keeps Stop()
// responsive during the inter-cycle sleep.
func TestSleepInterruptibleRespondsToCancellation(t *testing.T) {
	e := &Engine{}
	ctx, cancel := context.WithCancel(context.Background())

	start := time.Now()
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	completed := e.sleepInterruptible(ctx, 10*time.Second)
	elapsed := time.Since(start)

	if completed {
		t.Fatalf("expected sleepInterruptible to report cancellation (false)")
	}
	if elapsed > 2*time.Second {
		t.Fatalf("expected cancellation to cut the sleep short, took %v", elapsed)
	}
}

func TestSleepInterruptibleCompletesWhenNotCancelled(t *testing.T) {
	e := &Engine{}
	ctx := context.Background()
	if !e.sleepInterruptible(ctx, 10*time.Millisecond) {
		t.Fatalf("expected sleepInterruptible to return true when not cancelled")
	}
}
