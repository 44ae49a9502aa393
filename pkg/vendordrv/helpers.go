// Shared, vendor-agnostic post-processing helpers. Any driver may opt into
// these; none of them know which vendor called them. Grounded on
// drivers/__init__.py's module-level helper functions in the Python
// original (_compute_memory_pct, _filter_cpu_processes,
// _merge_memory_into_processes, _normalize_bgp_peers, _post_process_log,
// _first_numeric/_to_float).
package vendordrv

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var totalAliases = []string{"total_bytes", "total_kb", "total_mb", "total", "memory_total"}
var usedAliases = []string{"used_bytes", "used_kb", "used", "memory_used"}
var freeAliases = []string{"free_bytes", "free_kb", "free", "memory_free"}

// aliasUnitBytes maps an alias's name suffix to the byte multiplier needed
// to turn its raw parsed value into bytes, for display-magnitude purposes
// only; the value stored under "total"/"used"/"free" is always left as the
// literal number the command printed, unconverted.
func aliasUnitBytes(key string) float64 {
	switch {
	case strings.HasSuffix(key, "_kb"):
		return 1024
	case strings.HasSuffix(key, "_mb"):
		return 1024 * 1024
	default:
		return 1
	}
}

// toFloat parses a numeric value after stripping commas and percent signs.
// Returns (0, false) if v cannot be parsed as a float.
func toFloat(v any) (float64, bool) {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case int:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
	cleaned := strings.ReplaceAll(strings.ReplaceAll(s, ",", ""), "%", "")
	cleaned = strings.TrimSpace(cleaned)
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// firstNumeric returns the parsed value of the first alias present in data,
// along with the byte multiplier implied by that alias's own suffix (e.g.
// "total_kb" means the value is in kilobytes) so callers needing a true byte
// count can convert without guessing units from magnitude alone.
func firstNumeric(data map[string]any, aliases []string) (value float64, unitBytes float64, ok bool) {
	for _, key := range aliases {
		if v, has := data[key]; has {
			if f, parsed := toFloat(v); parsed {
				return f, aliasUnitBytes(key), true
			}
		}
	}
	return 0, 1, false
}

// ComputeMemoryPct derives used_pct plus human-readable total/used display
// strings from whatever total/used/free aliases are present, computing used
// as total minus free when no used alias is present. used_pct
// is a ratio and so is unit-agnostic, but total_display/used_display require
// true byte counts, so values sourced from a "_kb"/"_mb"-suffixed alias (per
// collections/memory/cisco_ios.yaml's group names) are converted to bytes
// before being handed to magnitudeDisplay; the literal total/used/free fields
// are left exactly as the command printed them.
func ComputeMemoryPct(data map[string]any) map[string]any {
	total, totalUnit, haveTotal := firstNumeric(data, totalAliases)
	used, usedUnit, haveUsed := firstNumeric(data, usedAliases)
	free, _, haveFree := firstNumeric(data, freeAliases)

	if !haveUsed && haveTotal && haveFree {
		used = total - free
		usedUnit = totalUnit
		haveUsed = true
	}
	if !haveTotal || !haveUsed {
		return data
	}

	data["total"] = total
	data["used"] = used
	if total != 0 {
		data["used_pct"] = roundTo2(used / total * 100)
	}
	data["total_display"] = magnitudeDisplay(total * totalUnit)
	data["used_display"] = magnitudeDisplay(used * usedUnit)
	return data
}

func roundTo1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}

func roundTo2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func magnitudeDisplay(bytesVal float64) string {
	switch {
	case bytesVal > 1_000_000_000:
		return fmt.Sprintf("%.1f GB", bytesVal/(1024*1024*1024))
	case bytesVal > 1_000_000:
		return fmt.Sprintf("%.1f MB", bytesVal/(1024*1024))
	case bytesVal > 1_000:
		return fmt.Sprintf("%.1f KB", bytesVal/1024)
	default:
		return fmt.Sprintf("%.0f B", bytesVal)
	}
}

// FilterCPUProcesses drops processes whose parsed 5-second CPU sample is
// exactly zero, keeping unparseable samples rather than discarding them.
// Surviving rows get dashboard aliases (pid, name, cpu_pct, five_sec,
// cpu_1min, cpu_5min) alongside whatever raw field names the template
// produced.
func FilterCPUProcesses(data map[string]any) map[string]any {
	procs, ok := data["processes"].([]map[string]any)
	if !ok {
		return data
	}

	var kept []map[string]any
	for _, p := range procs {
		fiveSec, parsed := toFloat(firstOf(p, "five_sec", "cpu_5_sec"))
		if parsed && fiveSec == 0 {
			continue
		}
		p["pid"] = firstOf(p, "pid", "process_id")
		p["name"] = firstOf(p, "name", "process", "process_name")
		p["cpu_pct"] = firstOf(p, "cpu_pct", "five_sec", "cpu_5_sec")
		p["five_sec"] = firstOf(p, "five_sec", "cpu_5_sec")
		p["cpu_1min"] = firstOf(p, "one_min", "cpu_1_min")
		p["cpu_5min"] = firstOf(p, "five_min", "cpu_5_min")
		kept = append(kept, p)
	}
	data["processes"] = kept
	return data
}

func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

// MergeMemoryIntoProcesses reads the memory collection's parallel
// process_id/process_holding lists out of the store and merges a "holding"
// byte count into each CPU process row by PID.
func MergeMemoryIntoProcesses(data map[string]any, store StateReader) map[string]any {
	if store == nil {
		return data
	}
	mem := store.Get("memory")
	if mem == nil {
		return data
	}
	ids, _ := mem["process_id"].([]any)
	holdings, _ := mem["process_holding"].([]any)
	if len(ids) == 0 || len(ids) != len(holdings) {
		return data
	}

	holdingByPID := map[string]any{}
	for i := range ids {
		holdingByPID[fmt.Sprint(ids[i])] = holdings[i]
	}

	procs, ok := data["processes"].([]map[string]any)
	if !ok {
		return data
	}
	for _, p := range procs {
		pid := fmt.Sprint(p["pid"])
		if h, ok := holdingByPID[pid]; ok {
			p["holding"] = h
		}
	}
	return data
}

// TopNByCPUThenMemory sorts processes descending by CPU percent, then
// memory, keeping only the top n. Used by Arista's `top`-sourced process
// rows, which arrive unsorted and unbounded.
func TopNByCPUThenMemory(procs []map[string]any, n int) []map[string]any {
	sorted := make([]map[string]any, len(procs))
	copy(sorted, procs)
	sort.SliceStable(sorted, func(i, j int) bool {
		ci, _ := toFloat(firstOf(sorted[i], "cpu_pct", "five_sec"))
		cj, _ := toFloat(firstOf(sorted[j], "cpu_pct", "five_sec"))
		if ci != cj {
			return ci > cj
		}
		mi, _ := toFloat(firstOf(sorted[i], "mem_bytes", "res_bytes"))
		mj, _ := toFloat(firstOf(sorted[j], "mem_bytes", "res_bytes"))
		return mi > mj
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// NormalizeBGPPeers turns each peer's raw state_pfx field into
// {state, prefixes_rcvd}: a numeric value means the session is Established
// with that many prefixes received; anything else is the literal state text
// (e.g. "Idle") with zero prefixes.
func NormalizeBGPPeers(peers []map[string]any) []map[string]any {
	for _, p := range peers {
		raw, ok := p["state_pfx"]
		if !ok {
			continue
		}
		if n, isNum := toFloat(raw); isNum {
			p["state"] = "Established"
			p["prefixes_rcvd"] = int(n)
		} else {
			s := fmt.Sprint(raw)
			if s == "" {
				s = "Unknown"
			}
			p["state"] = s
			p["prefixes_rcvd"] = 0
		}
	}
	return peers
}

var unitBps = map[string]float64{
	"bps": 1, "kbps": 1e3, "mbps": 1e6, "gbps": 1e9,
}

var rateRe = regexp.MustCompile(`(?i)^\s*([\d.]+)\s*([a-z]+)\s*$`)

// ParseRateToBps parses a rate string like "1.23 Mbps" or a bare integer
// bps value into bits per second. Returns 0 (never a null/zero-value panic)
// when the input is missing or unparseable.
func ParseRateToBps(raw any) int {
	switch v := raw.(type) {
	case nil:
		return 0
	case int:
		return v
	case float64:
		return int(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		m := rateRe.FindStringSubmatch(s)
		if m == nil {
			return 0
		}
		val, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0
		}
		mult, ok := unitBps[strings.ToLower(m[2])]
		if !ok {
			return 0
		}
		return int(val * mult)
	default:
		return 0
	}
}

// PostProcessLog assembles a timestamp from month/day/time(+timezone)
// components when one isn't already present, joins list-valued message
// fields with spaces, coerces severity to int where possible, reverses
// entries to newest-first, and truncates to 50.
func PostProcessLog(data map[string]any) map[string]any {
	entries, ok := data["entries"].([]map[string]any)
	if !ok {
		return data
	}

	for _, e := range entries {
		if _, has := e["timestamp"]; !has {
			month, _ := e["month"].(string)
			day, _ := e["day"].(string)
			tm, _ := e["time"].(string)
			tz, _ := e["timezone"].(string)
			if month != "" || day != "" || tm != "" {
				ts := strings.TrimSpace(strings.Join([]string{month, day, tm, tz}, " "))
				e["timestamp"] = strings.Join(strings.Fields(ts), " ")
			}
		}
		if msgList, ok := e["message"].([]any); ok {
			parts := make([]string, len(msgList))
			for i, m := range msgList {
				parts[i] = fmt.Sprint(m)
			}
			e["message"] = strings.Join(parts, " ")
		}
		if sev, ok := e["severity"]; ok {
			if f, ok := toFloat(sev); ok {
				e["severity"] = int(f)
			}
		}
	}

	reversed := make([]map[string]any, len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}
	if len(reversed) > 50 {
		reversed = reversed[:50]
	}
	data["entries"] = reversed
	return data
}
