package parser

import "testing"

func TestNormalize_IdentityMapUnchanged(t *testing.T) {
	rows := []Row{{"five_sec_total": "1"}}
	out := Normalize(rows, map[string]string{"five_sec_total": "five_sec_total"})
	if out[0]["five_sec_total"] != "1" {
		t.Errorf("identity normalize changed row: %v", out[0])
	}
}

func TestNormalize_RenamesProducedKey(t *testing.T) {
	rows := []Row{{"cpu_usage_5_sec": "3"}}
	out := Normalize(rows, map[string]string{"five_sec_total": "cpu_usage_5_sec"})
	if out[0]["five_sec_total"] != "3" {
		t.Errorf("rows[0] = %v, want five_sec_total=3", out[0])
	}
	if _, ok := out[0]["cpu_usage_5_sec"]; ok {
		t.Errorf("rows[0] still has raw key: %v", out[0])
	}
}

func TestNormalize_UnmappedKeyPassesThrough(t *testing.T) {
	rows := []Row{{"unrelated": "x"}}
	out := Normalize(rows, map[string]string{"five_sec_total": "cpu_usage_5_sec"})
	if out[0]["unrelated"] != "x" {
		t.Errorf("unmapped key not preserved: %v", out[0])
	}
}
