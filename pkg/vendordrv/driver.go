// Package vendordrv implements the per-vendor strategy objects that shape
// parsed rows into the store's payload format and apply vendor-specific
// post-processing (derived fields, cross-collection joins, unit
// conversions). Dispatch is a registry keyed by vendor tag with an
// underscore-segment fallback, mirroring the Python original's decorator
// registry (see drivers/__init__.py's register_driver/get_driver) and the
// teacher's statedb_parsers.go table-driven dispatch style.
package vendordrv

import (
	"strings"

	"github.com/vantage-net/vantage/pkg/parser"
)

// StateReader is the minimal read-only view of the state store a driver
// needs for cross-collection joins (e.g. CPU post-processing reading the
// memory collection's process-holding lists). Drivers must never mutate
// another collection — this interface has no write methods.
type StateReader interface {
	Get(collection string) map[string]any
}

// Driver is the per-vendor strategy. PaginationCommand returning "" tells
// the transport to fall back to the shotgun pagination-disable list.
type Driver interface {
	Vendor() string
	PaginationCommand() string
	ShapeOutput(collection string, rows []parser.Row, meta parser.Meta) map[string]any
	PostProcess(collection string, data map[string]any, store StateReader) map[string]any
}

var registry = map[string]func() Driver{}

// register adds a constructor under one or more vendor tags. Called from
// each driver file's init().
func register(ctor func() Driver, vendorTags ...string) {
	for _, tag := range vendorTags {
		registry[tag] = ctor
	}
}

// Get returns the driver for vendor, falling back by truncating one
// underscore segment at a time (cisco_ios_xe -> cisco_ios -> base) until a
// registered tag matches. It never fails: base is always registered.
func Get(vendor string) Driver {
	v := vendor
	for {
		if ctor, ok := registry[v]; ok {
			return ctor()
		}
		idx := strings.LastIndex(v, "_")
		if idx < 0 {
			break
		}
		v = v[:idx]
	}
	return &BaseDriver{vendor: vendor}
}

// List returns every registered vendor tag (constructors, not fallback
// aliases resolved through Get's loop), sorted by the caller if needed.
func List() []string {
	out := make([]string, 0, len(registry))
	for tag := range registry {
		out = append(out, tag)
	}
	return out
}

// collectionListKeys maps a list-shaped collection to the canonical key its
// rows are wrapped under in the store payload.
var collectionListKeys = map[string]string{
	"interfaces":       "interfaces",
	"interface_detail": "interfaces",
	"bgp_summary":      "peers",
	"neighbors":        "neighbors",
	"log":              "entries",
	"environment":      "sensors",
}

// singleRowCollections are shaped as a flat payload from the first row
// rather than wrapped in a list.
var singleRowCollections = map[string]bool{
	"cpu": true, "memory": true, "device_info": true,
}

// defaultShapeOutput implements the shared shape_output contract: singleton
// collections flatten the first row (CPU also carries any remaining rows as
// "processes"); list collections wrap under their canonical key; unknown
// collections wrap under "data".
func defaultShapeOutput(collection string, rows []parser.Row, meta parser.Meta) map[string]any {
	if len(rows) == 0 {
		return map[string]any{}
	}

	if singleRowCollections[collection] {
		result := rowToMap(rows[0])
		if collection == "cpu" && len(rows) > 1 {
			result["processes"] = rowsToMaps(rows[1:])
		}
		return result
	}

	if key, ok := collectionListKeys[collection]; ok {
		return map[string]any{key: rowsToMaps(rows)}
	}

	return map[string]any{"data": rowsToMaps(rows)}
}

func rowToMap(r parser.Row) map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func rowsToMaps(rows []parser.Row) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		out[i] = rowToMap(r)
	}
	return out
}
