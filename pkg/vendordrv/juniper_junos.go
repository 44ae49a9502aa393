package vendordrv

import (
	"strings"

	"github.com/vantage-net/vantage/pkg/parser"
)

func init() {
	register(func() Driver { return &JuniperJunosDriver{vendor: "juniper_junos"} }, "juniper_junos")
}

// JuniperJunosDriver covers Junos platforms. Dual-RE chassis report one row
// per Routing Engine; only the master's row represents the active CPU/memory
// state. Memory arrives as a direct percentage (no total/used subtraction).
// Process rows come from either `top` (has WCPU) or `ps` (no WCPU, defaults
// to 0) depending on which template matched, and kernel threads are filtered
// out by name. Log severity is inferred from a facility/keyword table since
// Junos syslog lines don't carry a numeric severity field.
type JuniperJunosDriver struct {
	vendor string
}

func (d *JuniperJunosDriver) Vendor() string { return d.vendor }

func (d *JuniperJunosDriver) PaginationCommand() string { return "set cli screen-length 0" }

func (d *JuniperJunosDriver) ShapeOutput(collection string, rows []parser.Row, meta parser.Meta) map[string]any {
	if collection == "cpu" || collection == "memory" {
		rows = selectMasterRE(rows)
	}
	return defaultShapeOutput(collection, rows, meta)
}

func (d *JuniperJunosDriver) PostProcess(collection string, data map[string]any, store StateReader) map[string]any {
	switch collection {
	case "cpu":
		data = normalizeJunosCPU(data)
		data = filterKernelThreads(data)
	case "memory":
		data = normalizeJunosMemoryPct(data)
	case "neighbors":
		data = inferLLDPCapabilities(data)
	case "log":
		data = normalizeJunosLog(data)
	case "bgp_summary":
		data = normalizeBGPIn(data)
	}
	return data
}

// selectMasterRE keeps only the row whose "status" (or "re_state") reads
// "master" on dual-RE chassis; single-RE output (no such field, or only one
// row) passes through unchanged.
func selectMasterRE(rows []parser.Row) []parser.Row {
	if len(rows) <= 1 {
		return rows
	}
	for _, r := range rows {
		status := strings.ToLower(firstOfRow(r, "status", "re_state"))
		if status == "master" {
			return []parser.Row{r}
		}
	}
	return rows
}

func firstOfRow(r parser.Row, keys ...string) string {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

// normalizeJunosCPU maps idle_pct to the canonical total, same as the other
// idle-reporting platforms.
func normalizeJunosCPU(data map[string]any) map[string]any {
	if idle, ok := data["idle_pct"]; ok {
		if f, ok := toFloat(idle); ok {
			total := roundTo1(100 - f)
			setIfAbsent(data, "five_sec_total", total)
			setIfAbsent(data, "one_min", total)
			setIfAbsent(data, "five_min", total)
			data["_cpu_instantaneous"] = true
		}
	}
	return data
}

// kernelThreadNames filters out Junos kernel threads from process listings;
// these never represent user-meaningful CPU/memory consumers.
var kernelThreadNames = map[string]bool{
	"kernel": true, "idle": true, "intr": true, "swapper": true,
}

var kernelThreadPrefixes = []string{"kjournald", "ksoftirqd", "kworker"}

func filterKernelThreads(data map[string]any) map[string]any {
	procs, ok := data["processes"].([]map[string]any)
	if !ok {
		return data
	}
	var kept []map[string]any
	for _, p := range procs {
		name := strings.ToLower(firstOfString(p, "name", "command"))
		if kernelThreadNames[name] {
			continue
		}
		skip := false
		for _, prefix := range kernelThreadPrefixes {
			if strings.HasPrefix(name, prefix) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		// top gives WCPU directly; ps has no CPU column, defaults to 0.
		p["cpu_pct"] = firstOf(p, "wcpu", "cpu_pct", "cpu")
		if p["cpu_pct"] == nil {
			p["cpu_pct"] = 0.0
		}
		p["mem_bytes"] = parseResBytes(firstOf(p, "res", "rss"))
		p["pid"] = firstOf(p, "pid")
		p["name"] = firstOf(p, "command", "name")
		kept = append(kept, p)
	}
	data["processes"] = kept
	return data
}

// normalizeJunosMemoryPct handles Junos reporting memory as a direct
// percentage rather than total/used byte counts.
func normalizeJunosMemoryPct(data map[string]any) map[string]any {
	if pct, ok := data["used_pct"]; ok {
		if f, ok := toFloat(pct); ok {
			data["used_pct"] = roundTo1(f)
			return data
		}
	}
	return ComputeMemoryPct(data)
}

// junosCapabilityKeywords infers an LLDP neighbor's capability set from a
// keyword in its advertised platform/system description, since Junos'
// `show lldp neighbors` doesn't always surface a clean capability bitmask.
var junosCapabilityKeywords = map[string]string{
	"router":  "Router",
	"switch":  "Bridge",
	"ap":      "WLAN Access Point",
	"phone":   "Telephone",
	"station": "Station",
}

func inferLLDPCapabilities(data map[string]any) map[string]any {
	neighbors, ok := data["neighbors"].([]map[string]any)
	if !ok {
		return data
	}
	for _, n := range neighbors {
		if _, has := n["capability"]; has {
			continue
		}
		desc := strings.ToLower(firstOfString(n, "platform", "system_description"))
		for kw, capability := range junosCapabilityKeywords {
			if strings.Contains(desc, kw) {
				n["capability"] = capability
				break
			}
		}
	}
	return data
}

// junosSeverityKeywords assigns a numeric syslog severity when Junos emits a
// bare facility/keyword tag instead of a PRI value. "kernel" defaults to 4
// (warning) absent any more specific keyword match.
var junosSeverityKeywords = map[string]int{
	"emerg": 0, "alert": 1, "crit": 2, "err": 3,
	"warn": 4, "notice": 5, "info": 6, "debug": 7,
}

func normalizeJunosLog(data map[string]any) map[string]any {
	entries, ok := data["entries"].([]map[string]any)
	if ok {
		for _, e := range entries {
			if _, has := e["severity"]; has {
				continue
			}
			tag := strings.ToLower(firstOfString(e, "process", "facility", "tag"))
			sev := 4
			if tag == "kernel" {
				sev = 4
			}
			for kw, n := range junosSeverityKeywords {
				if strings.Contains(tag, kw) {
					sev = n
					break
				}
			}
			e["severity"] = sev
		}
	}
	return PostProcessLog(data)
}
