package transport

import "testing"

func TestDetectPrompt(t *testing.T) {
	cases := []struct {
		name   string
		output string
		want   string
	}{
		{"simple hash prompt", "some banner\nrouter1#", "router1#"},
		{
			"repeated echoed prompt wins",
			"router1#\r\nrouter1#",
			"router1#",
		},
		{"no candidates falls back", "just text\nno prompt here at all", "#"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := detectPrompt(tc.output)
			if got != tc.want {
				t.Errorf("detectPrompt(%q) = %q, want %q", tc.output, got, tc.want)
			}
		})
	}
}

func TestExtractHostname(t *testing.T) {
	cases := []struct {
		prompt string
		want   string
	}{
		{"router1#", "router1"},
		{"router1(config)#", "router1"},
		{"router1(config-if)#", "router1"},
		{"admin@switch1>", "switch1"},
		{"> ", ""},
	}
	for _, tc := range cases {
		got := extractHostname(tc.prompt)
		if got != tc.want {
			t.Errorf("extractHostname(%q) = %q, want %q", tc.prompt, got, tc.want)
		}
	}
}

func TestFilterANSIIdempotent(t *testing.T) {
	raw := "\x1b[1;32mrouter1\x1b[0m#\x07\x1b(B"
	once := filterANSI(raw)
	twice := filterANSI(once)
	if once != twice {
		t.Errorf("filterANSI not idempotent: %q != %q", once, twice)
	}
	if once != "router1#" {
		t.Errorf("filterANSI(%q) = %q, want %q", raw, once, "router1#")
	}
}
