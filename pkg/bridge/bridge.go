// Package bridge exposes a device's state store and engine lifecycle as a
// small set of pull methods plus a push event stream, grounded on
// wirlwind_telemetry/bridge.py's TelemetryBridge (a QObject wrapped around a
// DeviceStateStore for a Qt/JS WebChannel UI). Here the push side is a Go
// channel instead of Qt signals/JS callbacks, and AttachRedis (redis.go)
// additively mirrors the same events onto Redis pub/sub for external
// consumers.
package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/vantage-net/vantage/pkg/devicemodel"
	"github.com/vantage-net/vantage/pkg/engine"
	"github.com/vantage-net/vantage/pkg/store"
)

// Update is one push notification to a bridge subscriber. Kind is one of
// "stateChanged", "cycleComplete", "deviceInfoChanged", "connectionStatus" --
// the same four signals TelemetryBridge exposes to its UI.
type Update struct {
	Kind       string
	Collection string // set for stateChanged
	JSON       string // set for stateChanged (collection payload or "error:<msg>")
	DeviceName string // set for deviceInfoChanged
	Status     string // set for connectionStatus: "connected"|"disconnected"|"error:<msg>"
}

// Bridge wraps one device's Store and Engine lifecycle behind pull methods
// and a single push channel.
type Bridge struct {
	store    *store.Store
	engine   *engine.Engine
	updates  chan Update
	storeSub *store.Subscription
	engSub   *engine.Subscription
}

// New wires a Bridge to the given engine's store and lifecycle events and
// starts forwarding them onto Updates. Call Close to unwire.
func New(e *engine.Engine) *Bridge {
	b := &Bridge{
		store:   e.StateStore(),
		engine:  e,
		updates: make(chan Update, 128),
	}
	b.storeSub = b.store.Subscribe()
	b.engSub = e.Subscribe()
	go b.pumpStoreEvents()
	go b.pumpEngineEvents()
	return b
}

// Updates is the push stream UI/external consumers read from.
func (b *Bridge) Updates() <-chan Update { return b.updates }

// Close stops forwarding events and releases the underlying subscriptions.
func (b *Bridge) Close() {
	b.storeSub.Unsubscribe()
	b.engSub.Unsubscribe()
	close(b.updates)
}

func (b *Bridge) pumpStoreEvents() {
	for ev := range b.storeSub.Events {
		switch ev.Kind {
		case "state_updated":
			payload, _ := json.Marshal(ev.Data)
			b.send(Update{Kind: "stateChanged", Collection: ev.Collection, JSON: string(payload)})
		case "collection_error":
			b.send(Update{Kind: "stateChanged", Collection: ev.Collection, JSON: fmt.Sprintf("error:%s", ev.Error)})
		case "cycle_complete":
			b.send(Update{Kind: "cycleComplete"})
		case "device_info_changed":
			b.send(Update{Kind: "deviceInfoChanged", DeviceName: ev.DeviceName})
		}
	}
}

func (b *Bridge) pumpEngineEvents() {
	for ev := range b.engSub.Events {
		switch ev.Kind {
		case "connected":
			b.send(Update{Kind: "connectionStatus", Status: "connected"})
		case "disconnected":
			b.send(Update{Kind: "connectionStatus", Status: "disconnected"})
		case "error":
			b.send(Update{Kind: "connectionStatus", Status: fmt.Sprintf("error:%s", ev.Error)})
		}
	}
}

func (b *Bridge) send(u Update) {
	select {
	case b.updates <- u:
	default:
		// Slow consumer: drop rather than block the poll loop.
	}
}

// GetSnapshot returns the entire store as JSON.
func (b *Bridge) GetSnapshot() string {
	data, err := b.store.SnapshotJSON()
	if err != nil {
		return "{}"
	}
	return string(data)
}

// GetCollection returns one collection's current payload as JSON ("{}" if
// the collection has never been successfully polled).
func (b *Bridge) GetCollection(name string) string {
	data := b.store.Get(name)
	if data == nil {
		return "{}"
	}
	out, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// GetHistory returns a collection's bounded headline history as JSON ("[]"
// if untracked or empty).
func (b *Bridge) GetHistory(name string) string {
	hist := b.store.GetHistory(name)
	out, err := json.Marshal(hist)
	if err != nil {
		return "[]"
	}
	return string(out)
}

// GetDeviceInfo returns the connected device's identity as JSON ("{}" if
// not yet connected).
func (b *Bridge) GetDeviceInfo() string {
	dev := b.store.DeviceInfo()
	if dev == nil {
		return "{}"
	}
	out, err := json.Marshal(deviceInfoView(dev))
	if err != nil {
		return "{}"
	}
	return string(out)
}

// GetMetadata returns a collection's last-poll metadata as JSON.
func (b *Bridge) GetMetadata(name string) string {
	meta := b.store.GetMetadata(name)
	out, err := json.Marshal(meta)
	if err != nil {
		return "{}"
	}
	return string(out)
}

func deviceInfoView(d *devicemodel.Device) map[string]any {
	return map[string]any{
		"hostname":          d.Hostname,
		"display_name":      d.DisplayName(),
		"vendor":            d.Vendor,
		"detected_hostname": d.DetectedHostname,
		"detected_prompt":   d.DetectedPrompt,
		"tags":              d.Tags,
	}
}
