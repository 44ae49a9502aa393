package store

// historyRing holds a bounded FIFO of headline samples per collection.
// Only collections extractHeadline recognizes (cpu, memory) ever
// accumulate samples.
type historyRing struct {
	max     int
	samples map[string][]map[string]any
}

func newHistoryRing(max int) *historyRing {
	if max <= 0 {
		max = 360
	}
	return &historyRing{max: max, samples: map[string][]map[string]any{}}
}

func (h *historyRing) append(collection string, headline map[string]any) {
	s := append(h.samples[collection], headline)
	if len(s) > h.max {
		s = s[len(s)-h.max:]
	}
	h.samples[collection] = s
}

func (h *historyRing) snapshot(collection string) []map[string]any {
	s := h.samples[collection]
	out := make([]map[string]any, len(s))
	for i, m := range s {
		out[i] = deepCopyMap(m)
	}
	return out
}

// extractHeadline pulls the small set of fields a dashboard sparkline needs
// out of a full collection payload. Returns nil for collections with no
// headline (meaning: don't append to history). Grounded on
// state_store.py's _extract_headline, including its field-rename quirk:
// CPU's "five_sec_total" becomes "five_sec" in the headline specifically.
func extractHeadline(collection string, data map[string]any) map[string]any {
	switch collection {
	case "cpu":
		return map[string]any{
			"five_sec": valueOrZero(data, "five_sec_total"),
			"one_min":  valueOrZero(data, "one_min"),
			"five_min": valueOrZero(data, "five_min"),
		}
	case "memory":
		return map[string]any{
			"used_pct": valueOrZero(data, "used_pct"),
		}
	default:
		return nil
	}
}

func valueOrZero(data map[string]any, key string) any {
	if v, ok := data[key]; ok {
		return v
	}
	return 0
}
