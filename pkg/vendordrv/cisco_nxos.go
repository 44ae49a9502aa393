package vendordrv

import "github.com/vantage-net/vantage/pkg/parser"

func init() {
	register(func() Driver { return &CiscoNXOSDriver{vendor: "cisco_nxos"} }, "cisco_nxos")
}

// CiscoNXOSDriver covers Nexus platforms. CPU is derived from idle percent
// (or user+system) rather than mapped from discrete 5s/1m/5m samples — NX-OS
// reports one instantaneous figure, broadcast to all three canonical fields.
type CiscoNXOSDriver struct {
	vendor string
}

func (d *CiscoNXOSDriver) Vendor() string { return d.vendor }

func (d *CiscoNXOSDriver) PaginationCommand() string { return "terminal length 0" }

func (d *CiscoNXOSDriver) ShapeOutput(collection string, rows []parser.Row, meta parser.Meta) map[string]any {
	return defaultShapeOutput(collection, rows, meta)
}

func (d *CiscoNXOSDriver) PostProcess(collection string, data map[string]any, store StateReader) map[string]any {
	switch collection {
	case "cpu":
		data = normalizeIdleCPU(data)
	case "memory":
		data = ComputeMemoryPct(data)
	case "log":
		data = PostProcessLog(data)
	case "bgp_summary":
		data = normalizeBGPIn(data)
	}
	return data
}

// normalizeIdleCPU derives a single instantaneous total from idle_pct (or
// user_pct+system_pct) and broadcasts it to five_sec_total/one_min/five_min.
// This total is NOT a true rolling average — see the "_cpu_instantaneous"
// provenance flag attached alongside it.
func normalizeIdleCPU(data map[string]any) map[string]any {
	var total float64
	var haveTotal bool

	if idle, ok := data["idle_pct"]; ok {
		if f, ok := toFloat(idle); ok {
			total = roundTo1(100 - f)
			haveTotal = true
		}
	} else if user, ok := data["user_pct"]; ok {
		u, _ := toFloat(user)
		s, _ := toFloat(data["system_pct"])
		total = roundTo1(u + s)
		haveTotal = true
	}

	if !haveTotal {
		return data
	}
	setIfAbsent(data, "five_sec_total", total)
	setIfAbsent(data, "one_min", total)
	setIfAbsent(data, "five_min", total)
	data["_cpu_instantaneous"] = true
	return data
}

func setIfAbsent(data map[string]any, key string, v any) {
	if _, ok := data[key]; !ok {
		data[key] = v
	}
}
