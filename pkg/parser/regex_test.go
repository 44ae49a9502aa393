package parser

import "testing"

func TestParseRegex_NamedGroups(t *testing.T) {
	rows, err := ParseRegex("pid=10 name=sshd\npid=22 name=cron\n", `pid=(?P<pid>\d+) name=(?P<name>\w+)`, "MULTILINE", nil)
	if err != nil {
		t.Fatalf("ParseRegex error: %s", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0]["pid"] != "10" || rows[0]["name"] != "sshd" {
		t.Errorf("rows[0] = %v", rows[0])
	}
}

func TestParseRegex_PositionalFallback(t *testing.T) {
	rows, err := ParseRegex("a b\n", `(\w+) (\w+)`, "", nil)
	if err != nil {
		t.Fatalf("ParseRegex error: %s", err)
	}
	if rows[0]["field_1"] != "a" || rows[0]["field_2"] != "b" {
		t.Errorf("rows[0] = %v, want field_1=a field_2=b", rows[0])
	}
}

func TestParseRegex_MultilineDotallUnion(t *testing.T) {
	text := "START\nmiddle line\nEND"
	rows, err := ParseRegex(text, `START(.*)END`, "MULTILINE|DOTALL", map[string]int{"body": 1})
	if err != nil {
		t.Fatalf("ParseRegex error: %s", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1 (DOTALL should let . cross the newline)", len(rows))
	}
}
