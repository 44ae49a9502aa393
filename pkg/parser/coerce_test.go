package parser

import (
	"testing"

	"github.com/vantage-net/vantage/pkg/catalog"
)

func TestCoerceTypes_NumericWithCommasAndPercent(t *testing.T) {
	schema := &catalog.Schema{Fields: map[string]catalog.FieldSpec{
		"total": {Type: "int"},
		"pct":   {Type: "float"},
	}}
	rows := []Row{{"total": "1,234", "pct": "12.5%"}}
	out := CoerceTypes(rows, schema)
	if out[0]["total"] != 1234 {
		t.Errorf("total = %v, want 1234", out[0]["total"])
	}
	if out[0]["pct"] != 12.5 {
		t.Errorf("pct = %v, want 12.5", out[0]["pct"])
	}
}

func TestCoerceTypes_UncoercibleRetainsOriginal(t *testing.T) {
	schema := &catalog.Schema{Fields: map[string]catalog.FieldSpec{"total": {Type: "int"}}}
	rows := []Row{{"total": "not-a-number"}}
	out := CoerceTypes(rows, schema)
	if out[0]["total"] != "not-a-number" {
		t.Errorf("total = %v, want original string retained (never silently zeroed)", out[0]["total"])
	}
}

func TestCoerceTypes_BoolVariants(t *testing.T) {
	schema := &catalog.Schema{Fields: map[string]catalog.FieldSpec{"up": {Type: "bool"}}}
	for _, tc := range []struct {
		in   string
		want bool
	}{{"true", true}, {"Yes", true}, {"1", true}, {"no", false}, {"0", false}} {
		rows := []Row{{"up": tc.in}}
		out := CoerceTypes(rows, schema)
		if out[0]["up"] != tc.want {
			t.Errorf("coerce bool %q = %v, want %v", tc.in, out[0]["up"], tc.want)
		}
	}
}
