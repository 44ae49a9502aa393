// Package parser implements the ordered fallback chain — structured
// template, then template-language, then inline regex — that turns raw CLI
// output into normalized, type-coerced rows. It never panics or returns an
// error to the caller: failure is expressed as zero rows plus a Meta with
// ParsedBy == "none" and Error set.
package parser

// Row maps field name to value. It is a plain Go map, so the order in
// which fields were inserted is not kept. Values
// start as strings straight from the parser and are later coerced per
// schema; uncoercible values retain their original string form.
type Row map[string]any

// Meta carries parse provenance alongside the rows: which parser family won,
// which template name (if any), and the failure reason on exhaustion. Err
// wraps one of util's parse-chain sentinels so callers can errors.Is it;
// Error carries the same failure as a human-readable string for logging.
type Meta struct {
	ParsedBy string // "textfsm" | "ttp" | "regex" | "none"
	Template string
	Error    string
	Err      error
}
