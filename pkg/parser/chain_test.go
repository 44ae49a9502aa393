package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/vantage-net/vantage/pkg/catalog"
	"github.com/vantage-net/vantage/pkg/util"
)

func interfaceBriefFixture() string {
	return strings.Join([]string{
		"show ip interface brief",
		"Interface                  IP-Address      OK? Method Status                Protocol",
		"FastEthernet0/0             unassigned      YES NVRAM  administratively down down",
		"Ethernet1/0                 172.16.1.2      YES NVRAM  up                    up",
		"Ethernet1/1                 172.16.1.3      YES NVRAM  up                    up",
		"Ethernet1/2                 172.16.1.4      YES NVRAM  up                    down",
		"Ethernet1/3                 172.16.1.5      YES NVRAM  down                  down",
		"Ethernet2/0                 172.16.2.1      YES NVRAM  up                    up",
		"Ethernet2/1                 172.16.2.2      YES NVRAM  up                    up",
		"Ethernet2/2                 172.16.2.3      YES NVRAM  administratively down down",
		"Ethernet2/3                 172.16.2.4      YES NVRAM  up                    up",
		"Loopback0                   10.0.0.1        YES NVRAM  up                    up",
		"Vlan1                       unassigned      YES NVRAM  administratively down down",
		"router1#",
	}, "\n")
}

func interfaceBriefDescriptor() *catalog.Descriptor {
	return &catalog.Descriptor{
		Collection: "interfaces",
		Command:    "show ip interface brief",
		Parsers: []catalog.ParserSpec{
			{
				Type:    "regex",
				Pattern: `^(\S+)\s+(\S+)\s+(YES|NO)\s+(\S+)\s+(administratively down|up|down)\s+(up|down)\s*$`,
				Flags:   "MULTILINE",
				Groups: map[string]int{
					"name": 1, "ip_address": 2, "status": 5, "protocol": 6,
				},
			},
		},
	}
}

func TestChain_S1_InterfaceTableViaRegexFallback(t *testing.T) {
	c := NewChain(NewResolver(nil, "", ""))
	rows, meta := c.Parse(interfaceBriefFixture(), interfaceBriefDescriptor(), nil, nil)

	if meta.ParsedBy != "regex" {
		t.Fatalf("ParsedBy = %q, want regex (meta error: %s)", meta.ParsedBy, meta.Error)
	}
	if len(rows) != 11 {
		t.Fatalf("len(rows) = %d, want 11", len(rows))
	}
	if rows[0]["name"] != "FastEthernet0/0" {
		t.Errorf("rows[0].name = %v, want FastEthernet0/0", rows[0]["name"])
	}
	if rows[1]["ip_address"] != "172.16.1.2" {
		t.Errorf("rows[1].ip_address = %v, want 172.16.1.2", rows[1]["ip_address"])
	}
	if rows[1]["status"] != "up" {
		t.Errorf("rows[1].status = %v, want up", rows[1]["status"])
	}
	if rows[0]["status"] != "administratively down" {
		t.Errorf("rows[0].status = %v, want 'administratively down'", rows[0]["status"])
	}
}

func TestChain_S5_EmptyInput(t *testing.T) {
	c := NewChain(NewResolver(nil, "", ""))
	rows, meta := c.Parse("", interfaceBriefDescriptor(), nil, nil)
	if meta.ParsedBy != "none" {
		t.Fatalf("ParsedBy = %q, want none", meta.ParsedBy)
	}
	if !strings.Contains(meta.Error, "empty") {
		t.Errorf("Error = %q, want it to mention empty input", meta.Error)
	}
	if !errors.Is(meta.Err, util.ErrEmptyOutput) {
		t.Errorf("Err = %v, want errors.Is match against util.ErrEmptyOutput", meta.Err)
	}
	if len(rows) != 0 {
		t.Errorf("len(rows) = %d, want 0", len(rows))
	}
}

func TestChain_S6_NoParserMatches(t *testing.T) {
	c := NewChain(NewResolver(nil, "", ""))
	desc := interfaceBriefDescriptor()
	rows, meta := c.Parse("This is not CLI output at all\nJust random text\n", desc, nil, nil)
	if meta.ParsedBy != "none" {
		t.Fatalf("ParsedBy = %q, want none", meta.ParsedBy)
	}
	if !strings.Contains(meta.Error, "all parsers failed") {
		t.Errorf("Error = %q, want it to contain 'all parsers failed'", meta.Error)
	}
	if !errors.Is(meta.Err, util.ErrNoParserMatched) {
		t.Errorf("Err = %v, want errors.Is match against util.ErrNoParserMatched", meta.Err)
	}
	if len(rows) != 0 {
		t.Errorf("len(rows) = %d, want 0", len(rows))
	}
}

func TestChain_MissingTemplateYieldsErrTemplateMissing(t *testing.T) {
	c := NewChain(NewResolver(nil, "", ""))
	desc := &catalog.Descriptor{
		Collection: "interfaces",
		Command:    "show version",
		Parsers: []catalog.ParserSpec{
			{Type: "textfsm", Templates: []string{"cisco_ios_show_version.textfsm"}},
		},
	}
	_, meta := c.Parse("some output\n", desc, nil, nil)
	if !errors.Is(meta.Err, util.ErrTemplateMissing) {
		t.Errorf("Err = %v, want errors.Is match against util.ErrTemplateMissing", meta.Err)
	}
}

func TestChain_ParsedByNoneImpliesError(t *testing.T) {
	c := NewChain(NewResolver(nil, "", ""))
	_, meta := c.Parse("garbage\n", interfaceBriefDescriptor(), nil, nil)
	if meta.ParsedBy == "none" && meta.Error == "" {
		t.Error("ParsedBy == \"none\" but Error is empty")
	}
}
