package store

import "testing"

func TestUpdateThenGetRoundTrips(t *testing.T) {
	s := New(10)
	s.Update("cpu", map[string]any{"five_sec_total": 23.0})

	got := s.Get("cpu")
	if got["five_sec_total"] != 23.0 {
		t.Fatalf("expected five_sec_total 23.0, got %v", got["five_sec_total"])
	}
	meta := s.GetMetadata("cpu")
	if !meta.Success {
		t.Fatalf("expected success metadata after Update")
	}
}

func TestGetReturnsDeepCopyNotAlias(t *testing.T) {
	s := New(10)
	s.Update("memory", map[string]any{"used_pct": 50.0})

	got := s.Get("memory")
	got["used_pct"] = 999.0

	again := s.Get("memory")
	if again["used_pct"] != 50.0 {
		t.Fatalf("mutating a Get result leaked into the store: got %v", again["used_pct"])
	}
}

func TestRecordErrorNeverTouchesLastGoodPayload(t *testing.T) {
	s := New(10)
	s.Update("interfaces", map[string]any{"interfaces": []map[string]any{{"name": "Gi0/1"}}})
	s.RecordError("interfaces", "empty command output")

	data := s.Get("interfaces")
	if data == nil {
		t.Fatalf("expected last good payload to survive a subsequent error")
	}
	meta := s.GetMetadata("interfaces")
	if meta.Success {
		t.Fatalf("expected metadata to record failure")
	}
	if meta.LastError != "empty command output" {
		t.Fatalf("expected last_error set, got %q", meta.LastError)
	}
}

func TestHistoryAppendsOnlyForCPUAndMemory(t *testing.T) {
	s := New(3)
	s.Update("cpu", map[string]any{"five_sec_total": 10.0, "one_min": 8.0, "five_min": 5.0})
	s.Update("memory", map[string]any{"used_pct": 40.0})
	s.Update("log", map[string]any{"entries": []map[string]any{}})

	if len(s.GetHistory("cpu")) != 1 {
		t.Fatalf("expected one cpu history sample")
	}
	if len(s.GetHistory("memory")) != 1 {
		t.Fatalf("expected one memory history sample")
	}
	if len(s.GetHistory("log")) != 0 {
		t.Fatalf("log is not a history-tracked collection, expected zero samples")
	}
}

func TestHistoryEvictsOldestOverCap(t *testing.T) {
	s := New(3)
	for i := 0; i < 5; i++ {
		s.Update("cpu", map[string]any{"five_sec_total": float64(i)})
	}
	hist := s.GetHistory("cpu")
	if len(hist) != 3 {
		t.Fatalf("expected history bounded to 3 samples, got %d", len(hist))
	}
	if hist[len(hist)-1]["five_sec"] != 4.0 {
		t.Fatalf("expected newest sample last, got %v", hist[len(hist)-1]["five_sec"])
	}
}

func TestSnapshotIsIndependentOfSubsequentUpdates(t *testing.T) {
	s := New(10)
	s.Update("cpu", map[string]any{"five_sec_total": 1.0})
	snap := s.TakeSnapshot()

	s.Update("cpu", map[string]any{"five_sec_total": 2.0})

	if snap.Collections["cpu"]["five_sec_total"] != 1.0 {
		t.Fatalf("snapshot should be frozen at capture time, got %v", snap.Collections["cpu"]["five_sec_total"])
	}
}

func TestSubscribeReceivesStateUpdated(t *testing.T) {
	s := New(10)
	sub := s.Subscribe()
	defer sub.Unsubscribe()

	s.Update("cpu", map[string]any{"five_sec_total": 1.0})

	ev := <-sub.Events
	if ev.Kind != "state_updated" || ev.Collection != "cpu" {
		t.Fatalf("expected state_updated/cpu event, got %+v", ev)
	}
}
