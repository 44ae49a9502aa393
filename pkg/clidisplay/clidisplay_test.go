package clidisplay

import (
	"strings"
	"testing"
)

func TestVisualLenStripsANSI(t *testing.T) {
	s := "\x1b[31mred\x1b[0m"
	if got := visualLen(s); got != 3 {
		t.Fatalf("visualLen(%q) = %d, want 3", s, got)
	}
}

func TestStatusColorGreenForOK(t *testing.T) {
	if got := StatusColor("ok"); !strings.Contains(got, "32m") {
		t.Fatalf("StatusColor(ok) = %q, want green escape", got)
	}
	if got := StatusColor("critical"); !strings.Contains(got, "31m") {
		t.Fatalf("StatusColor(critical) = %q, want red escape", got)
	}
	if got := StatusColor("warning"); !strings.Contains(got, "33m") {
		t.Fatalf("StatusColor(warning) = %q, want yellow escape", got)
	}
}

func TestWrapCellHardBreaksLongWord(t *testing.T) {
	lines := wrapCell("supercalifragilisticexpialidocious", 10)
	if len(lines) < 2 {
		t.Fatalf("expected a long word to be hard-broken across lines, got %v", lines)
	}
	for _, l := range lines {
		if visualLen(l) > 10 {
			t.Fatalf("line %q exceeds width 10", l)
		}
	}
}

func TestCapWidthsNeverShrinksBelowHeader(t *testing.T) {
	widths := []int{5, 40}
	headers := []string{"ID", "DESCRIPTION"}
	result := capWidths(widths, headers, 20, 0)
	if result[1] < visualLen("DESCRIPTION") {
		t.Fatalf("capWidths shrank DESCRIPTION column below its header width: %v", result)
	}
}

func TestTableFlushEmptyProducesNoOutput(t *testing.T) {
	tbl := NewTable("A", "B")
	tbl.Flush() // no rows added — should not panic, nothing to assert on stdout
	if tbl.RowCount() != 0 {
		t.Fatalf("expected 0 rows, got %d", tbl.RowCount())
	}
}

func TestRenderRowsPreservesColumnOrderAndMissingFields(t *testing.T) {
	rows := []map[string]any{
		{"pid": "42", "name": "bgpd", "cpu_pct": 12.5},
		{"pid": "7", "name": "sshd"}, // missing cpu_pct
	}
	tbl := RenderRows([]string{"pid", "name", "cpu_pct"}, rows)
	if tbl.RowCount() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.RowCount())
	}
}

func TestRenderScalarFieldsSkipsUnderscoreAndListFields(t *testing.T) {
	data := map[string]any{
		"five_sec_total":     23.0,
		"_cpu_instantaneous": true,
		"processes":          []map[string]any{{"pid": "1"}},
	}
	tbl := RenderScalarFields(data)
	if tbl.RowCount() != 1 {
		t.Fatalf("expected exactly 1 scalar field rendered, got %d", tbl.RowCount())
	}
}

func TestFormatCellIntegerFloatRendersWithoutDecimal(t *testing.T) {
	if got := formatCell(23.0); got != "23" {
		t.Fatalf("formatCell(23.0) = %q, want %q", got, "23")
	}
	if got := formatCell(64.9); got != "64.90" {
		t.Fatalf("formatCell(64.9) = %q, want %q", got, "64.90")
	}
}

func TestRunQuerySingleValue(t *testing.T) {
	input := `{"five_sec_total": 23.5, "one_min": 10.0}`
	out, err := RunQuery(".five_sec_total", input)
	if err != nil {
		t.Fatalf("RunQuery returned error: %v", err)
	}
	if strings.TrimSpace(out) != "23.5" {
		t.Fatalf("RunQuery(.five_sec_total) = %q, want 23.5", out)
	}
}

func TestRunQueryMultipleValuesOnePerLine(t *testing.T) {
	input := `{"processes": [{"pid": "1", "cpu_pct": 5}, {"pid": "2", "cpu_pct": 40}]}`
	out, err := RunQuery(".processes[] | select(.cpu_pct > 10) | .pid", input)
	if err != nil {
		t.Fatalf("RunQuery returned error: %v", err)
	}
	if strings.TrimSpace(out) != `"2"` {
		t.Fatalf("RunQuery filter result = %q, want \"2\"", out)
	}
}

func TestRunQueryInvalidExpressionErrors(t *testing.T) {
	_, err := RunQuery("this is not jq (((", `{}`)
	if err == nil {
		t.Fatal("expected an error for an invalid jq expression")
	}
}

func TestRunQueryInvalidJSONInputErrors(t *testing.T) {
	_, err := RunQuery(".", "not json")
	if err == nil {
		t.Fatal("expected an error for non-JSON input")
	}
}
