package vendordrv

import "github.com/vantage-net/vantage/pkg/parser"

func init() {
	register(func() Driver { return &CiscoIOSDriver{vendor: "cisco_ios"} }, "cisco_ios", "cisco_ios_xe")
}

// CiscoIOSDriver covers IOS and IOS-XE platforms (CSR1000v, ISR, ASR): maps
// TextFSM's raw cpu_usage_5_sec/_1_min/_5_min keys to canonical
// five_sec_total/one_min/five_min, filters idle processes and merges memory
// holdings by PID, and parses interface-detail bandwidth/rate fields.
type CiscoIOSDriver struct {
	vendor string
}

func (d *CiscoIOSDriver) Vendor() string { return d.vendor }

func (d *CiscoIOSDriver) PaginationCommand() string { return "terminal length 0" }

func (d *CiscoIOSDriver) ShapeOutput(collection string, rows []parser.Row, meta parser.Meta) map[string]any {
	return defaultShapeOutput(collection, rows, meta)
}

func (d *CiscoIOSDriver) PostProcess(collection string, data map[string]any, store StateReader) map[string]any {
	switch collection {
	case "cpu":
		data = normalizeCiscoCPU(data)
		data = FilterCPUProcesses(data)
		if store != nil {
			data = MergeMemoryIntoProcesses(data, store)
		}
	case "memory":
		data = ComputeMemoryPct(data)
	case "interface_detail", "interfaces":
		data = normalizeInterfaceDetail(data)
	case "log":
		data = PostProcessLog(data)
	case "bgp_summary":
		data = normalizeBGPIn(data)
	}
	return data
}

// normalizeCiscoCPU maps either normalize-mapped names (five_sec/one_min/
// five_min) or raw TextFSM names (cpu_usage_5_sec/_1_min/_5_min) onto the
// canonical five_sec_total/one_min/five_min keys.
func normalizeCiscoCPU(data map[string]any) map[string]any {
	if _, has := data["five_sec_total"]; has {
		return data
	}
	raw5s := firstOf(data, "five_sec", "cpu_usage_5_sec")
	raw1m := firstOf(data, "one_min", "cpu_usage_1_min")
	raw5m := firstOf(data, "five_min", "cpu_usage_5_min")

	if f, ok := toFloat(raw5s); ok {
		data["five_sec_total"] = f
	}
	if f, ok := toFloat(raw1m); ok {
		data["one_min"] = f
	}
	if f, ok := toFloat(raw5m); ok {
		data["five_min"] = f
	}
	return data
}

// normalizeInterfaceDetail parses the declared bandwidth string to kbps,
// coerces rate/error/MTU fields to int, and computes
// utilization_pct = max(input_rate, output_rate) / bandwidth.
func normalizeInterfaceDetail(data map[string]any) map[string]any {
	ifaces, ok := data["interfaces"].([]map[string]any)
	if !ok {
		return data
	}
	for _, iface := range ifaces {
		bwKbps := 0
		if raw, ok := iface["bandwidth"]; ok {
			if f, ok := toFloat(raw); ok {
				bwKbps = int(f)
			}
		}
		iface["bandwidth_kbps"] = bwKbps

		inRate := ParseRateToBps(firstOf(iface, "input_rate_bps", "input_rate"))
		outRate := ParseRateToBps(firstOf(iface, "output_rate_bps", "output_rate"))
		iface["input_rate_bps"] = inRate
		iface["output_rate_bps"] = outRate

		iface["mtu"] = intOrZero(iface["mtu"])
		iface["in_errors"] = intOrZero(iface["in_errors"])
		iface["out_errors"] = intOrZero(iface["out_errors"])
		iface["crc_errors"] = intOrZero(iface["crc_errors"])

		if bwKbps > 0 {
			maxRate := inRate
			if outRate > maxRate {
				maxRate = outRate
			}
			iface["utilization_pct"] = roundTo1(float64(maxRate) / (float64(bwKbps) * 1000) * 100)
		}
	}
	return data
}

func intOrZero(v any) int {
	if f, ok := toFloat(v); ok {
		return int(f)
	}
	return 0
}
