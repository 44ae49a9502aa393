// Package store holds the in-memory, per-device snapshot of the most recent
// poll result for every collection: the current payload, per-collection
// metadata (last update time, last error), and a bounded history for the
// headline CPU/memory figures. Grounded on
// wirlwind_telemetry/state_store.py's DeviceStateStore, adapted to Go's
// mutex+channel idiom in place of Qt signals (see events.go).
package store

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/vantage-net/vantage/pkg/devicemodel"
)

// Metadata records the outcome of the most recent poll of a collection,
// independent of whether that poll produced new data.
type Metadata struct {
	LastUpdated string `json:"last_updated,omitempty"`
	Timestamp   int64  `json:"timestamp,omitempty"`
	Success     bool   `json:"success"`
	LastError   string `json:"last_error,omitempty"`
	LastErrorAt string `json:"last_error_time,omitempty"`
}

// Snapshot is a fully deep-copied, JSON-serializable view of the store at a
// point in time, safe to hand to a caller without risk of them mutating
// internal state.
type Snapshot struct {
	Device      *devicemodel.Device         `json:"device,omitempty"`
	Collections map[string]map[string]any  `json:"collections"`
	Metadata    map[string]Metadata         `json:"metadata"`
	History     map[string][]map[string]any `json:"history"`
	SnapshotAt  string                      `json:"snapshot_time"`
}

// Store is the per-device state container. Zero value is not usable; build
// one with New.
type Store struct {
	events *eventBus

	mu          sync.RWMutex
	device      *devicemodel.Device
	collections map[string]map[string]any
	metadata    map[string]Metadata
	history     *historyRing
}

// New returns an empty Store with the given per-collection history depth
// (360 samples, matching the Python original's _history_max, is the
// recommended value).
func New(historyMax int) *Store {
	return &Store{
		events:      newEventBus(),
		collections: map[string]map[string]any{},
		metadata:    map[string]Metadata{},
		history:     newHistoryRing(historyMax),
	}
}

// SetDeviceInfo records the connected device's identity (hostname, detected
// prompt, vendor, etc.) for inclusion in snapshots.
func (s *Store) SetDeviceInfo(d *devicemodel.Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.device = &cp
	s.events.emitDeviceInfoChanged(cp.DisplayName())
}

// DeviceInfo returns a copy of the current device identity, or nil if none
// has been set.
func (s *Store) DeviceInfo() *devicemodel.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.device == nil {
		return nil
	}
	cp := *s.device
	return &cp
}

// Update replaces a collection's payload wholesale, marks it successful, and
// appends a headline sample to history if the collection is one that's
// tracked (cpu, memory). It never partially merges — a poll either produces
// a complete new payload or it doesn't touch the collection at all.
func (s *Store) Update(collection string, data map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.collections[collection] = deepCopyMap(data)
	s.metadata[collection] = Metadata{
		LastUpdated: now.Format(time.RFC3339),
		Timestamp:   now.Unix(),
		Success:     true,
	}
	if headline := extractHeadline(collection, data); headline != nil {
		s.history.append(collection, headline)
	}
	s.events.emitStateUpdated(collection, deepCopyMap(data))
}

// RecordError marks a collection's most recent poll as failed. It only
// touches metadata — the collection's last good payload is left untouched,
// so a transient parse failure never blanks out a dashboard.
func (s *Store) RecordError(collection string, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	meta := s.metadata[collection]
	meta.Success = false
	meta.LastError = errMsg
	meta.LastErrorAt = now.Format(time.RFC3339)
	s.metadata[collection] = meta
	s.events.emitCollectionError(collection, errMsg)
}

// PollCycleComplete signals that every collection in a poll cycle has been
// attempted, successfully or not.
func (s *Store) PollCycleComplete() {
	s.events.emitCycleComplete()
}

// Get returns a deep copy of a collection's current payload, or nil if the
// collection has never been successfully updated. Satisfies
// vendordrv.StateReader.
func (s *Store) Get(collection string) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.collections[collection]
	if !ok {
		return nil
	}
	return deepCopyMap(data)
}

// GetMetadata returns a collection's metadata, or the zero value if none
// has ever been recorded.
func (s *Store) GetMetadata(collection string) Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metadata[collection]
}

// GetHistory returns a copy of a collection's bounded headline history
// (empty if the collection isn't history-tracked or has no samples yet).
func (s *Store) GetHistory(collection string) []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.snapshot(collection)
}

// TakeSnapshot returns a fully deep-copied view of the entire store.
func (s *Store) TakeSnapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	collections := make(map[string]map[string]any, len(s.collections))
	for k, v := range s.collections {
		collections[k] = deepCopyMap(v)
	}
	metadata := make(map[string]Metadata, len(s.metadata))
	for k, v := range s.metadata {
		metadata[k] = v
	}
	history := map[string][]map[string]any{
		"cpu":    s.history.snapshot("cpu"),
		"memory": s.history.snapshot("memory"),
	}

	var dev *devicemodel.Device
	if s.device != nil {
		cp := *s.device
		dev = &cp
	}

	return Snapshot{
		Device:      dev,
		Collections: collections,
		Metadata:    metadata,
		History:     history,
		SnapshotAt:  time.Now().UTC().Format(time.RFC3339),
	}
}

// SnapshotJSON renders TakeSnapshot as JSON, for use by pkg/bridge's pull
// methods.
func (s *Store) SnapshotJSON() ([]byte, error) {
	return json.Marshal(s.TakeSnapshot())
}

// Clear resets the store to empty, as if newly constructed.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.device = nil
	s.collections = map[string]map[string]any{}
	s.metadata = map[string]Metadata{}
	s.history = newHistoryRing(s.history.max)
}

// Subscribe registers for store change events. See events.go.
func (s *Store) Subscribe() *Subscription {
	return s.events.subscribe()
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, m := range t {
			out[i] = deepCopyMap(m)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}
