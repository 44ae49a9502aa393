package clidisplay

import (
	"fmt"
	"sort"
)

// RenderRows builds a Table from a slice of post-processed collection rows
// (as produced by pkg/vendordrv.ShapeOutput/PostProcess, e.g. the
// "processes"/"peers"/"neighbors" list inside a collection's data map).
// columns fixes both the column order and the header text; a row missing a
// column renders an empty cell rather than shifting the remaining columns.
func RenderRows(columns []string, rows []map[string]any) *Table {
	t := NewTable(columns...)
	for _, row := range rows {
		values := make([]string, len(columns))
		for i, col := range columns {
			values[i] = formatCell(row[col])
		}
		t.Row(values...)
	}
	return t
}

// RenderScalarFields renders a flat collection's top-level scalar fields
// (e.g. cpu's five_sec_total/one_min/five_min, memory's used_pct) as a
// two-column field/value table, skipping nested lists (those get their own
// RenderRows call) and "_"-prefixed provenance fields.
func RenderScalarFields(data map[string]any) *Table {
	t := NewTable("FIELD", "VALUE")
	keys := make([]string, 0, len(data))
	for k := range data {
		if len(k) > 0 && k[0] == '_' {
			continue
		}
		switch data[k].(type) {
		case []map[string]any, []any:
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		t.Row(k, formatCell(data[k]))
	}
	return t
}

func formatCell(v any) string {
	if v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.2f", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
