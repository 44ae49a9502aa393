package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vantage-net/vantage/pkg/bridge"
	"github.com/vantage-net/vantage/pkg/clidisplay"
	"github.com/vantage-net/vantage/pkg/preflight"
)

// rowListColumns gives each collection's named row list and the column
// order to render it with, per spec.md section 6's canonical payload shapes.
var rowListColumns = map[string]struct {
	key     string
	columns []string
}{
	"cpu":              {"processes", []string{"pid", "name", "cpu_pct", "five_sec"}},
	"interfaces":       {"interfaces", []string{"name", "status", "protocol", "ip_address", "mtu", "input_rate_bps", "output_rate_bps", "in_errors", "out_errors", "crc_errors", "utilization_pct"}},
	"interface_detail": {"interfaces", []string{"name", "status", "protocol", "ip_address", "mtu", "input_rate_bps", "output_rate_bps", "in_errors", "out_errors", "crc_errors", "utilization_pct"}},
	"bgp_summary":      {"peers", []string{"neighbor", "remote_as", "uptime", "state", "prefixes_rcvd"}},
	"neighbors":        {"neighbors", []string{"device_id", "local_intf", "remote_intf", "platform", "mgmt_ip", "capabilities"}},
	"log":              {"entries", []string{"timestamp", "facility", "severity", "mnemonic", "message"}},
}

// printUpdates drains the bridge's push stream for the process lifetime,
// printing each event to stdout: connection status and device lines, and
// collection payloads as JSON or tables per --json.
func printUpdates(b *bridge.Bridge) {
	for u := range b.Updates() {
		switch u.Kind {
		case "connectionStatus":
			fmt.Printf("[connection] %s\n", clidisplay.StatusColor(u.Status))
		case "cycleComplete":
			if app.debug {
				fmt.Println("[cycle complete]")
			}
		case "deviceInfoChanged":
			fmt.Printf("[device] %s connected\n", u.DeviceName)
		case "stateChanged":
			printStateChanged(u.Collection, u.JSON)
		}
	}
}

func printStateChanged(collection, payload string) {
	if strings.HasPrefix(payload, "error:") {
		fmt.Printf("[%s] %s\n", collection, payload)
		return
	}

	if app.query != "" {
		out, err := clidisplay.RunQuery(app.query, payload)
		if err != nil {
			fmt.Printf("[%s] query error: %v\n", collection, err)
			return
		}
		fmt.Println(out)
		return
	}

	if app.jsonOutput {
		fmt.Println(payload)
		return
	}

	printCollectionTable(collection, payload)
}

func printCollectionTable(collection, payload string) {
	var data map[string]any
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		fmt.Println(payload)
		return
	}

	fmt.Printf("\n=== %s ===\n", collection)
	clidisplay.RenderScalarFields(data).Flush()

	spec, ok := rowListColumns[collection]
	if !ok {
		return
	}
	rawRows, ok := data[spec.key].([]any)
	if !ok {
		return
	}
	rows := make([]map[string]any, 0, len(rawRows))
	for _, r := range rawRows {
		if m, ok := r.(map[string]any); ok {
			rows = append(rows, m)
		}
	}
	clidisplay.RenderRows(spec.columns, rows).Flush()
}

func printPreflightReport(report *preflight.Report) {
	if app.jsonOutput {
		out, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(out))
		return
	}

	fmt.Printf("Preflight report for vendor %q\n", report.Vendor)
	t := clidisplay.NewTable("CHECK", "STATUS", "MESSAGE")
	for _, r := range report.Results {
		t.Row(r.Check, clidisplay.StatusColor(string(r.Status)), r.Message)
	}
	t.Flush()
	fmt.Printf("\nOverall: %s\n", clidisplay.StatusColor(string(report.Overall)))
}
