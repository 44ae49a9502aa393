package bridge

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/vantage-net/vantage/pkg/devicemodel"
	"github.com/vantage-net/vantage/pkg/engine"
)

func newTestEngine() *engine.Engine {
	return engine.New(engine.Config{
		Device:     &devicemodel.Device{Hostname: "r1", Vendor: "cisco_ios"},
		CatalogDir: "testdata-does-not-exist",
	})
}

func TestGetCollectionAndSnapshot(t *testing.T) {
	e := newTestEngine()
	b := New(e)
	defer b.Close()

	e.StateStore().Update("cpu", map[string]any{"five_sec_total": 12.0})

	got := b.GetCollection("cpu")
	var decoded map[string]any
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("GetCollection returned invalid JSON: %v", err)
	}
	if decoded["five_sec_total"] != 12.0 {
		t.Fatalf("expected five_sec_total 12.0, got %v", decoded["five_sec_total"])
	}

	if b.GetCollection("memory") != "{}" {
		t.Fatalf("expected {} for never-polled collection, got %q", b.GetCollection("memory"))
	}

	snap := b.GetSnapshot()
	if !strings.Contains(snap, "five_sec_total") {
		t.Fatalf("expected snapshot to include cpu data, got %q", snap)
	}
}

func TestStateUpdatedForwardsAsStateChanged(t *testing.T) {
	e := newTestEngine()
	b := New(e)
	defer b.Close()

	e.StateStore().Update("memory", map[string]any{"used_pct": 42.0})

	select {
	case u := <-b.Updates():
		if u.Kind != "stateChanged" || u.Collection != "memory" {
			t.Fatalf("expected stateChanged/memory, got %+v", u)
		}
		if !strings.Contains(u.JSON, "used_pct") {
			t.Fatalf("expected payload JSON to include used_pct, got %q", u.JSON)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for stateChanged update")
	}
}

func TestCollectionErrorForwardsAsErrorPrefixedStateChanged(t *testing.T) {
	e := newTestEngine()
	b := New(e)
	defer b.Close()

	e.StateStore().RecordError("log", "empty command output")

	select {
	case u := <-b.Updates():
		if u.Kind != "stateChanged" || !strings.HasPrefix(u.JSON, "error:") {
			t.Fatalf("expected error-prefixed stateChanged, got %+v", u)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for collection_error update")
	}
}

// fakePublisher records every channel/message pair handed to Publish so
// AttachRedis's behavior can be asserted without a live Redis server.
type fakePublisher struct {
	mu       sync.Mutex
	channels []string
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.mu.Lock()
	f.channels = append(f.channels, channel)
	f.mu.Unlock()
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(1)
	return cmd
}

func (f *fakePublisher) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.channels))
	copy(out, f.channels)
	return out
}

func TestAttachRedisMirrorsStateChangedToBothChannels(t *testing.T) {
	e := newTestEngine()
	b := New(e)
	defer b.Close()

	fake := &fakePublisher{}
	AttachRedis(context.Background(), b, fake, "vantage")

	e.StateStore().Update("cpu", map[string]any{"five_sec_total": 5.0})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(fake.seen()) >= 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	channels := fake.seen()
	if len(channels) < 2 {
		t.Fatalf("expected at least 2 published channels (kind + kind:collection), got %v", channels)
	}
	foundKind, foundCollection := false, false
	for _, c := range channels {
		if c == "vantage:stateChanged" {
			foundKind = true
		}
		if c == "vantage:stateChanged:cpu" {
			foundCollection = true
		}
	}
	if !foundKind || !foundCollection {
		t.Fatalf("expected both vantage:stateChanged and vantage:stateChanged:cpu, got %v", channels)
	}
}
