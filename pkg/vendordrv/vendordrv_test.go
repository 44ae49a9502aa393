package vendordrv

import (
	"strings"
	"testing"

	"github.com/vantage-net/vantage/pkg/catalog"
	"github.com/vantage-net/vantage/pkg/parser"
)

func TestGetFallsBackThroughUnderscoreSegments(t *testing.T) {
	if d := Get("cisco_ios_xe"); d.Vendor() != "cisco_ios" {
		t.Fatalf("cisco_ios_xe should fall back to cisco_ios, got %q", d.Vendor())
	}
	if d := Get("unknown_vendor_tag"); d.Vendor() != "unknown_vendor_tag" {
		t.Fatalf("unregistered vendor should fall back to base carrying its own tag, got %q", d.Vendor())
	}
	if _, ok := Get("totally_unknown").(*BaseDriver); !ok {
		t.Fatalf("unregistered vendor should resolve to *BaseDriver")
	}
}

func TestDefaultShapeOutputEmptyRows(t *testing.T) {
	got := defaultShapeOutput("cpu", nil, parser.Meta{ParsedBy: "none"})
	if len(got) != 0 {
		t.Fatalf("expected empty map for zero rows, got %v", got)
	}
}

// S2: Cisco IOS CPU singleton with an idle process filtered out of the
// process list that rides alongside it.
func TestS2CiscoIOSCPUSingleton(t *testing.T) {
	rows := []parser.Row{
		{"cpu_usage_5_sec": "23", "cpu_usage_1_min": "19", "cpu_usage_5_min": "17"},
		{"pid": "1", "process": "init", "five_sec": "0", "one_min": "0", "five_min": "0"},
		{"pid": "42", "process": "bgp", "five_sec": "12", "one_min": "10", "five_min": "8"},
	}
	d := Get("cisco_ios")
	data := d.ShapeOutput("cpu", rows, parser.Meta{ParsedBy: "textfsm"})
	data = d.PostProcess("cpu", data, nil)

	if data["five_sec_total"] != 23.0 {
		t.Fatalf("expected five_sec_total 23, got %v", data["five_sec_total"])
	}
	procs, ok := data["processes"].([]map[string]any)
	if !ok {
		t.Fatalf("expected processes list, got %T", data["processes"])
	}
	if len(procs) != 1 {
		t.Fatalf("expected idle process filtered out, got %d processes", len(procs))
	}
	if procs[0]["pid"] != "42" {
		t.Fatalf("expected surviving process pid 42, got %v", procs[0]["pid"])
	}
}

// S3: BGP summary with three peers -- two Established by numeric
// prefix count, one Idle by literal text.
func TestS3BGPSummaryThreePeers(t *testing.T) {
	rows := []parser.Row{
		{"neighbor": "10.0.0.1", "remote_as": "65001", "state_pfx": "5"},
		{"neighbor": "10.0.0.2", "remote_as": "65002", "state_pfx": "12"},
		{"neighbor": "10.0.0.3", "remote_as": "65003", "state_pfx": "Idle"},
	}
	schema := &catalog.Schema{Fields: map[string]catalog.FieldSpec{"remote_as": {Type: "int"}}}
	rows = parser.CoerceTypes(rows, schema)
	d := Get("cisco_ios")
	data := d.ShapeOutput("bgp_summary", rows, parser.Meta{ParsedBy: "regex"})
	data = d.PostProcess("bgp_summary", data, nil)

	peers, ok := data["peers"].([]map[string]any)
	if !ok || len(peers) != 3 {
		t.Fatalf("expected 3 peers, got %v", data["peers"])
	}
	if peers[0]["state"] != "Established" || peers[0]["prefixes_rcvd"] != 5 {
		t.Fatalf("peer 0 expected Established/5, got %v/%v", peers[0]["state"], peers[0]["prefixes_rcvd"])
	}
	if peers[1]["state"] != "Established" || peers[1]["prefixes_rcvd"] != 12 {
		t.Fatalf("peer 1 expected Established/12, got %v/%v", peers[1]["state"], peers[1]["prefixes_rcvd"])
	}
	if peers[2]["state"] != "Idle" || peers[2]["prefixes_rcvd"] != 0 {
		t.Fatalf("peer 2 expected Idle/0, got %v/%v", peers[2]["state"], peers[2]["prefixes_rcvd"])
	}
	if peers[0]["remote_as"] != 65001 {
		t.Fatalf("expected remote_as coerced to int 65001, got %v (%T)", peers[0]["remote_as"], peers[0]["remote_as"])
	}
}

// S4: memory derivation from Cisco IOS's "Processor Pool Total/Used/Free"
// line, whose regex groups are named total_kb/used_kb/free_kb per
// collections/memory/cisco_ios.yaml -- the numbers it prints are kilobytes,
// not bytes, so total_display must convert before picking a magnitude.
func TestS4MemoryDerivation(t *testing.T) {
	rows := []parser.Row{
		{"total_kb": "409190504", "used_kb": "265844792", "free_kb": "143345712"},
	}
	d := Get("cisco_ios")
	data := d.ShapeOutput("memory", rows, parser.Meta{ParsedBy: "regex"})
	data = d.PostProcess("memory", data, nil)

	if data["used_pct"] != 64.97 {
		t.Fatalf("expected used_pct 64.97, got %v", data["used_pct"])
	}
	if data["total"] != 409190504.0 {
		t.Fatalf("expected literal total 409190504, got %v", data["total"])
	}
	disp, _ := data["total_display"].(string)
	if !strings.Contains(disp, "GB") {
		t.Fatalf("expected total_display in GB, got %q", disp)
	}
}

func TestNXOSCPUInstantaneousFlag(t *testing.T) {
	rows := []parser.Row{{"idle_pct": "80"}}
	d := Get("cisco_nxos")
	data := d.ShapeOutput("cpu", rows, parser.Meta{ParsedBy: "regex"})
	data = d.PostProcess("cpu", data, nil)

	if data["five_sec_total"] != 20.0 {
		t.Fatalf("expected five_sec_total 20 (100-80), got %v", data["five_sec_total"])
	}
	if data["_cpu_instantaneous"] != true {
		t.Fatalf("expected _cpu_instantaneous flag set")
	}
}

func TestJuniperSelectsMasterRE(t *testing.T) {
	rows := []parser.Row{
		{"status": "backup", "idle_pct": "90"},
		{"status": "master", "idle_pct": "70"},
	}
	d := Get("juniper_junos")
	data := d.ShapeOutput("cpu", rows, parser.Meta{ParsedBy: "regex"})
	data = d.PostProcess("cpu", data, nil)

	if data["five_sec_total"] != 30.0 {
		t.Fatalf("expected master RE's idle_pct (70) to drive total 30, got %v", data["five_sec_total"])
	}
}

func TestAristaTopNProcesses(t *testing.T) {
	var procs []parser.Row
	for i := 0; i < 25; i++ {
		procs = append(procs, parser.Row{"pid": i, "cpu_pct": float64(i), "res": "1024"})
	}
	d := Get("arista_eos")
	data := d.ShapeOutput("cpu", procs, parser.Meta{ParsedBy: "regex"})
	data = d.PostProcess("cpu", data, nil)

	result, ok := data["processes"].([]map[string]any)
	if !ok {
		t.Fatalf("expected processes list, got %T", data["processes"])
	}
	if len(result) != 20 {
		t.Fatalf("expected top 20 processes, got %d", len(result))
	}
	if result[0]["cpu_pct"] != 24.0 {
		t.Fatalf("expected highest cpu_pct first, got %v", result[0]["cpu_pct"])
	}
}
