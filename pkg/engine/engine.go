// Package engine runs the per-device poll loop: connect, disable pagination,
// then repeatedly execute each requested collection's command, run it
// through the parser chain and vendor driver, and deposit the result in the
// state store. Grounded on wirlwind_telemetry/poll_engine.py's PollEngine,
// translated from a QThread with Qt signals to a goroutine with a
// cooperative-cancellation context and an event bus (see events.go).
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vantage-net/vantage/pkg/catalog"
	"github.com/vantage-net/vantage/pkg/devicemodel"
	"github.com/vantage-net/vantage/pkg/parser"
	"github.com/vantage-net/vantage/pkg/store"
	"github.com/vantage-net/vantage/pkg/trace"
	"github.com/vantage-net/vantage/pkg/transport"
	"github.com/vantage-net/vantage/pkg/util"
	"github.com/vantage-net/vantage/pkg/vendordrv"
)

// defaultIntervals mirrors poll_engine.py's DEFAULT_INTERVALS table. pollOne
// falls back to it only if a descriptor's IntervalFor returns 0, which
// IntervalFor does not do: it applies the catalog's own defaults first.
var defaultIntervals = map[string]int{
	"cpu": 30, "memory": 30, "interfaces": 60, "interface_detail": 60,
	"bgp_summary": 60, "neighbors": 300, "environment": 120,
	"processes": 30, "log": 30,
}

// sleepQuantum bounds how long Run ever blocks between checks of ctx.Done,
// so Stop (via context cancellation) is always responsive within this
// window, matching the Python original's 0.5s polling granularity.
const sleepQuantum = 500 * time.Millisecond

// Config configures one Engine instance: one device, one SSH session, one
// set of requested collections.
type Config struct {
	Device      *devicemodel.Device
	Credentials *devicemodel.Credentials
	Transport   transport.Config

	Collections  []string // requested; intersected with what the vendor's catalog supports
	CatalogDir   string
	TemplateDirs []string // caller overrides, tried before bundled/community dirs
	LocalDir     string
	CommunityDir string

	BaseIntervalSeconds int // sleep between poll cycles; 30s when zero
	TraceHistoryPerColl int
}

// Engine polls one device on a loop until its context is cancelled.
type Engine struct {
	cfg      Config
	driver   vendordrv.Driver
	catalog  *catalog.Loader
	chain    *parser.Chain
	traces   *trace.Store
	state    *store.Store
	events   *eventBus
	conn     *transport.Transport
	lastPoll map[string]time.Time
}

// New builds an Engine. It does not connect — call Run to start polling.
func New(cfg Config) *Engine {
	resolver := parser.NewResolver(cfg.TemplateDirs, cfg.LocalDir, cfg.CommunityDir)
	return &Engine{
		cfg:      cfg,
		driver:   vendordrv.Get(cfg.Device.Vendor),
		catalog:  catalog.NewLoader(cfg.CatalogDir),
		chain:    parser.NewChain(resolver),
		traces:   trace.NewStore(cfg.TraceHistoryPerColl),
		state:    store.New(360),
		events:   newEventBus(),
		lastPoll: map[string]time.Time{},
	}
}

// StateStore returns the engine's state store for dashboards/bridges.
func (e *Engine) StateStore() *store.Store { return e.state }

// TraceStore returns the engine's parse trace store.
func (e *Engine) TraceStore() *trace.Store { return e.traces }

// Subscribe registers for connection lifecycle events (connected,
// disconnected, error, poll_tick).
func (e *Engine) Subscribe() *Subscription { return e.events.subscribe() }

// IsConnected reports whether the SSH transport believes it still has a
// live connection.
func (e *Engine) IsConnected() bool {
	return e.conn != nil
}

// resolvedCollections intersects the requested collection list with what
// the catalog actually has descriptors for under this device's vendor,
// warning once per missing collection.
func (e *Engine) resolvedCollections() []string {
	available := map[string]bool{}
	for _, c := range e.catalog.ListCollections(e.cfg.Device.Vendor) {
		available[c] = true
	}
	var out []string
	for _, requested := range e.cfg.Collections {
		if available[requested] {
			out = append(out, requested)
			continue
		}
		util.WithDevice(e.cfg.Device.DisplayName()).Warnf(
			"collection %q has no descriptor for vendor %q, skipping", requested, e.cfg.Device.Vendor)
	}
	return out
}

// Run connects, then polls forever in cycles until ctx is cancelled. It
// always attempts to disconnect on exit, regardless of how the loop ended.
func (e *Engine) Run(ctx context.Context) error {
	collections := e.resolvedCollections()

	if err := e.connect(); err != nil {
		e.events.emitError(err.Error())
		return err
	}
	e.events.emitConnected()
	defer func() {
		if e.conn != nil {
			e.conn.Close()
			e.conn = nil
		}
		e.events.emitDisconnected()
	}()

	cycle := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		cycle++
		e.pollCycle(ctx, cycle, collections)
		e.events.emitPollTick(cycle)

		if !e.sleepInterruptible(ctx, e.baseInterval()) {
			return nil
		}
	}
}

func (e *Engine) baseInterval() time.Duration {
	if e.cfg.BaseIntervalSeconds > 0 {
		return time.Duration(e.cfg.BaseIntervalSeconds) * time.Second
	}
	return 30 * time.Second
}

// sleepInterruptible sleeps for d in sleepQuantum increments, returning
// false as soon as ctx is cancelled.
func (e *Engine) sleepInterruptible(ctx context.Context, d time.Duration) bool {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(sleepQuantum):
		}
	}
	return true
}

// connect dials the device, detects its prompt, records device identity in
// the state store, and disables pagination.
func (e *Engine) connect() error {
	conn, err := transport.New(e.cfg.Device, e.cfg.Credentials, e.cfg.Transport)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", e.cfg.Device.DisplayName(), err)
	}
	e.conn = conn

	prompt := conn.FindPrompt(3, 3*time.Second)
	conn.SetExpectPrompt(prompt)

	dev := *e.cfg.Device
	dev.DetectedPrompt = prompt
	dev.DetectedHostname = conn.ExtractHostname(prompt)
	e.cfg.Device = &dev
	e.state.SetDeviceInfo(&dev)

	conn.DisablePagination(e.driver.PaginationCommand())
	return nil
}

// pollCycle runs one pass over every resolved collection. Cycle 1 always
// polls every collection regardless of its interval, so a dashboard has
// data immediately instead of waiting out the slowest collection's period.
func (e *Engine) pollCycle(ctx context.Context, cycle int, collections []string) {
	for _, collection := range collections {
		select {
		case <-ctx.Done():
			return
		default:
		}
		e.pollOne(collection, cycle)
	}
	e.state.PollCycleComplete()
}

func (e *Engine) pollOne(collection string, cycle int) {
	descriptor, err := e.catalog.GetDescriptor(collection, e.cfg.Device.Vendor)
	if err != nil {
		return
	}

	interval := time.Duration(descriptor.IntervalFor(collection)) * time.Second
	if interval == 0 {
		if d, ok := defaultIntervals[collection]; ok {
			interval = time.Duration(d) * time.Second
		} else {
			interval = 60 * time.Second
		}
	}
	if cycle > 1 {
		if last, ok := e.lastPoll[collection]; ok && time.Since(last) < interval {
			return
		}
	}

	t := trace.New(collection, e.cfg.Device.Vendor)
	raw := e.conn.Execute(descriptor.Command)
	t.RawReceived(raw, descriptor.Command)

	if strings.TrimSpace(raw) == "" {
		e.fail(collection, t, "empty command output")
		return
	}

	schema, err := e.catalog.GetSchema(collection)
	if err != nil {
		schema = &catalog.Schema{}
	}

	rows, meta := e.chain.Parse(raw, descriptor, schema, t)
	if len(rows) == 0 || meta.ParsedBy == "none" {
		errMsg := meta.Error
		if errMsg == "" {
			errMsg = "no rows parsed"
		}
		e.fail(collection, t, errMsg)
		return
	}

	data := e.driver.ShapeOutput(collection, rows, meta)
	data["_parsed_by"] = meta.ParsedBy
	data["_template"] = meta.Template
	if meta.Error != "" {
		data["_error"] = meta.Error
	}

	before := keysOf(data)
	data = e.driver.PostProcess(collection, data, e.state)
	after := keysOf(data)
	t.PostProcessed(fmt.Sprintf("%T.PostProcess", e.driver), addedKeys(before, after), nil)

	t.Delivered(finalFields(data), len(rows), meta.ParsedBy, meta.Template, "")
	t.Emit()
	e.traces.Put(t)

	e.state.Update(collection, data)
	e.lastPoll[collection] = time.Now()
}

func (e *Engine) fail(collection string, t *trace.Trace, errMsg string) {
	t.Delivered(nil, 0, "none", "", errMsg)
	t.Emit()
	e.traces.Put(t)
	e.state.RecordError(collection, errMsg)
}

func keysOf(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func addedKeys(before, after []string) []string {
	seen := map[string]bool{}
	for _, k := range before {
		seen[k] = true
	}
	var added []string
	for _, k := range after {
		if !seen[k] {
			added = append(added, k)
		}
	}
	return added
}

// finalFields returns the payload's keys that don't start with "_" — the
// internal bookkeeping fields (_parsed_by, _template, _error,
// _cpu_instantaneous) are provenance, not delivered data.
func finalFields(data map[string]any) []string {
	var out []string
	for k := range data {
		if !strings.HasPrefix(k, "_") {
			out = append(out, k)
		}
	}
	return out
}
