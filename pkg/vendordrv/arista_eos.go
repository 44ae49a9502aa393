package vendordrv

import (
	"regexp"
	"strings"

	"github.com/vantage-net/vantage/pkg/parser"
)

func init() {
	register(func() Driver { return &AristaEOSDriver{vendor: "arista_eos"} }, "arista_eos")
}

// AristaEOSDriver covers EOS platforms. Process rows come from `top`, which
// means unit-suffixed RES values (parsed to bytes) and an unbounded,
// unsorted list that gets trimmed to the top 20 by CPU then memory. LLDP
// neighbor rows need FQDN stripping and a coarse platform guess from the
// system description; interface-detail rates arrive as unit strings
// ("1.23 Mbps") rather than bare bps integers.
type AristaEOSDriver struct {
	vendor string
}

func (d *AristaEOSDriver) Vendor() string { return d.vendor }

func (d *AristaEOSDriver) PaginationCommand() string { return "terminal length 0" }

func (d *AristaEOSDriver) ShapeOutput(collection string, rows []parser.Row, meta parser.Meta) map[string]any {
	return defaultShapeOutput(collection, rows, meta)
}

func (d *AristaEOSDriver) PostProcess(collection string, data map[string]any, store StateReader) map[string]any {
	switch collection {
	case "cpu":
		data = normalizeIdleOrUserCPU(data)
		data = normalizeAristaProcesses(data)
	case "memory":
		data = ComputeMemoryPct(data)
	case "interface_detail", "interfaces":
		data = normalizeAristaInterfaceRates(data)
	case "neighbors":
		data = normalizeAristaNeighbors(data)
	case "log":
		data = PostProcessLog(data)
	case "bgp_summary":
		data = normalizeBGPIn(data)
	}
	return data
}

// normalizeIdleOrUserCPU mirrors NX-OS's idle/user+system derivation: Arista
// CPU is also an instantaneous figure, not a rolling average.
func normalizeIdleOrUserCPU(data map[string]any) map[string]any {
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

var resUnitRe = regexp.MustCompile(`(?i)^\s*([\d.]+)([kmg]?)\s*$`)

func parseResBytes(raw any) int {
	s, ok := raw.(string)
	if !ok {
		if f, ok := toFloat(raw); ok {
			return int(f * 1024) // bare-KB, matching `top`'s default RES unit
		}
		return 0
	}
	m := resUnitRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	val, ok := toFloat(m[1])
	if !ok {
		return 0
	}
	mult := 1024.0 // top reports RES in KB with no suffix
	switch strings.ToLower(m[2]) {
	case "m":
		mult = 1024 * 1024
	case "g":
		mult = 1024 * 1024 * 1024
	}
	return int(val * mult)
}

func normalizeAristaProcesses(data map[string]any) map[string]any {
	procs, ok := data["processes"].([]map[string]any)
	if !ok {
		return data
	}
	for _, p := range procs {
		p["mem_bytes"] = parseResBytes(firstOf(p, "res", "mem_res"))
		p["pid"] = firstOf(p, "pid")
		p["name"] = firstOf(p, "command", "name")
		p["cpu_pct"] = firstOf(p, "cpu_pct", "cpu")
	}
	data["processes"] = TopNByCPUThenMemory(procs, 20)
	return data
}

func normalizeAristaInterfaceRates(data map[string]any) map[string]any {
	ifaces, ok := data["interfaces"].([]map[string]any)
	if !ok {
		return data
	}
	for _, iface := range ifaces {
		iface["input_rate_bps"] = ParseRateToBps(firstOf(iface, "input_rate_bps", "input_rate"))
		iface["output_rate_bps"] = ParseRateToBps(firstOf(iface, "output_rate_bps", "output_rate"))
		iface["mtu"] = intOrZero(iface["mtu"])
		iface["in_errors"] = intOrZero(iface["in_errors"])
		iface["out_errors"] = intOrZero(iface["out_errors"])
		iface["crc_errors"] = intOrZero(iface["crc_errors"])
	}
	return data
}

var fqdnStripRe = regexp.MustCompile(`\..*$`)

// platformKeywords maps a lowercase substring of a neighbor's system
// description to a coarse platform guess for the topology graph.
var platformKeywords = map[string]string{
	"cisco":   "cisco",
	"arista":  "arista",
	"juniper": "juniper",
	"linux":   "server",
}

func normalizeAristaNeighbors(data map[string]any) map[string]any {
	neighbors, ok := data["neighbors"].([]map[string]any)
	if !ok {
		return data
	}
	for _, n := range neighbors {
		if id, ok := n["device_id"].(string); ok {
			n["device_id"] = fqdnStripRe.ReplaceAllString(id, "")
		}
		desc := strings.ToLower(firstOfString(n, "platform", "system_description"))
		for kw, platform := range platformKeywords {
			if strings.Contains(desc, kw) {
				n["platform"] = platform
				break
			}
		}
		n["local_intf"] = abbreviateInterface(firstOfString(n, "local_intf"))
		n["remote_intf"] = abbreviateInterface(firstOfString(n, "remote_intf"))
	}
	return data
}

func firstOfString(m map[string]any, keys ...string) string {
	v := firstOf(m, keys...)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

var ifaceAbbrev = map[string]string{
	"Ethernet": "Et", "GigabitEthernet": "Gi", "TenGigabitEthernet": "Te",
	"FastEthernet": "Fa", "Port-Channel": "Po",
}

// abbreviateInterface shortens a full interface name to the compact form
// used as a graph-edge label (e.g. "Ethernet1" -> "Et1").
func abbreviateInterface(name string) string {
	for long, short := range ifaceAbbrev {
		if strings.HasPrefix(name, long) {
			return short + strings.TrimPrefix(name, long)
		}
	}
	return name
}
