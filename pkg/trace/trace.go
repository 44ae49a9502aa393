// Package trace implements the parse trace: a structured, append-only audit
// record of every step a poll attempt goes through, from raw CLI output to
// the payload delivered to the state store. Traces are built incrementally
// as data flows through the parser chain and vendor driver, then emitted as
// one human-readable summary line plus one structured JSON record.
package trace

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/vantage-net/vantage/pkg/util"
)

// Step is one recorded stage of a poll attempt.
type Step struct {
	Name string         `json:"step"`
	Data map[string]any `json:"-"`
}

// MarshalJSON flattens Data alongside the step name so each step serializes
// as a single flat object, matching the Python original's per-step dicts.
func (s Step) MarshalJSON() ([]byte, error) {
	out := map[string]any{"step": s.Name}
	for k, v := range s.Data {
		out[k] = v
	}
	return json.Marshal(out)
}

// Result is the final outcome recorded by Delivered.
type Result struct {
	ParsedBy   string   `json:"parsed_by"`
	Template   string   `json:"template,omitempty"`
	Fields     []string `json:"fields,omitempty"`
	Rows       int      `json:"rows"`
	DurationMs float64  `json:"duration_ms"`
	Error      string   `json:"error,omitempty"`
}

// Trace accumulates one poll attempt's provenance for a single collection.
type Trace struct {
	Collection string
	Vendor     string

	start      time.Time
	command    string
	rawLen     int
	rawPreview string
	steps      []Step
	result     *Result
}

// New starts a trace for the given collection/vendor pair.
func New(collection, vendor string) *Trace {
	return &Trace{Collection: collection, Vendor: vendor, start: time.Now()}
}

// RawReceived records the raw CLI output just returned by the transport.
func (t *Trace) RawReceived(raw, command string) {
	t.command = command
	t.rawLen = len(raw)
	preview := raw
	if len(preview) > 200 {
		preview = preview[:200]
	}
	t.rawPreview = strings.ReplaceAll(preview, "\n", "\\n")
	t.steps = append(t.steps, Step{Name: "raw", Data: map[string]any{
		"length": t.rawLen, "command": command,
	}})
}

// Sanitized records the sanitizer's output length and the line delta.
func (t *Trace) Sanitized(cleaned string, linesStripped int) {
	cleanedLen := len(cleaned)
	t.steps = append(t.steps, Step{Name: "sanitize", Data: map[string]any{
		"original_len":   t.rawLen,
		"cleaned_len":    cleanedLen,
		"lines_stripped": linesStripped,
		"delta":          t.rawLen - cleanedLen,
	}})
}

// TemplateResolved records one template-name resolution attempt.
func (t *Trace) TemplateResolved(name, resolvedPath string, searchPaths []string) {
	t.steps = append(t.steps, Step{Name: "resolve", Data: map[string]any{
		"template":     name,
		"resolved":     resolvedPath,
		"found":        resolvedPath != "",
		"search_paths": searchPaths,
	}})
}

// ParserTried records one parser-chain attempt (textfsm/ttp/regex).
func (t *Trace) ParserTried(parserType, template, resolvedPath string, success bool, reason string, rows int, fields []string) {
	data := map[string]any{
		"parser":  parserType,
		"template": template,
		"success": success,
		"rows":    rows,
	}
	if resolvedPath != "" {
		data["resolved_path"] = resolvedPath
	}
	if reason != "" {
		data["reason"] = reason
	}
	if len(fields) > 0 {
		data["fields"] = fields
	}
	t.steps = append(t.steps, Step{Name: "parse", Data: data})
}

// Normalized records a field-renaming pass.
func (t *Trace) Normalized(before, after []string, remap map[string]string) {
	t.steps = append(t.steps, Step{Name: "normalize", Data: map[string]any{
		"before": before, "after": after, "remap": remap,
	}})
}

// Coerced records a type-coercion pass.
func (t *Trace) Coerced(changes map[string]string) {
	t.steps = append(t.steps, Step{Name: "coerce", Data: map[string]any{"changes": changes}})
}

// PostProcessed records a vendor-driver transform.
func (t *Trace) PostProcessed(transform string, added, removed []string) {
	data := map[string]any{"transform": transform}
	if len(added) > 0 {
		data["added"] = added
	}
	if len(removed) > 0 {
		data["removed"] = removed
	}
	t.steps = append(t.steps, Step{Name: "post_process", Data: data})
}

// Delivered records the final outcome. parsedBy == "none" must always carry
// a non-empty errMsg — callers are expected to uphold that invariant.
func (t *Trace) Delivered(finalFields []string, rowCount int, parsedBy, template, errMsg string) {
	elapsed := time.Since(t.start).Seconds() * 1000
	t.result = &Result{
		ParsedBy:   parsedBy,
		Template:   template,
		Fields:     finalFields,
		Rows:       rowCount,
		DurationMs: roundTo1(elapsed),
		Error:      errMsg,
	}
}

func roundTo1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}

// Record is the complete trace serialized for storage/logging.
type Record struct {
	Collection string  `json:"collection"`
	Vendor     string  `json:"vendor"`
	Command    string  `json:"command"`
	RawLen     int     `json:"raw_len"`
	RawPreview string  `json:"raw_preview"`
	Steps      []Step  `json:"steps"`
	Result     Result  `json:"result"`
	DurationMs float64 `json:"duration_ms"`
}

// AsRecord returns the complete trace as a serializable Record.
func (t *Trace) AsRecord() Record {
	result := Result{ParsedBy: "none", Error: "trace incomplete"}
	duration := 0.0
	if t.result != nil {
		result = *t.result
		duration = t.result.DurationMs
	}
	return Record{
		Collection: t.Collection,
		Vendor:     t.Vendor,
		Command:    t.command,
		RawLen:     t.rawLen,
		RawPreview: t.rawPreview,
		Steps:      t.steps,
		Result:     result,
		DurationMs: duration,
	}
}

// Emit writes a one-line human summary at INFO (WARN on failure) and the
// full structured record at DEBUG.
func (t *Trace) Emit() {
	rec := t.AsRecord()
	log := util.Logger.WithField("vendor", t.Vendor)

	summary := "[" + t.Collection + "] parsed_by=" + rec.Result.ParsedBy
	if rec.Result.Error != "" || rec.Result.ParsedBy == "none" {
		log.Warnf("TRACE %s rows=%d ERROR=%s", summary, rec.Result.Rows, rec.Result.Error)
	} else {
		log.Infof("TRACE %s rows=%d duration=%.1fms", summary, rec.Result.Rows, rec.Result.DurationMs)
	}

	if b, err := json.Marshal(rec); err == nil {
		log.Debugf("TRACE_DETAIL %s", string(b))
	}
}

// ParsersTried reports how many parser-chain attempts were recorded.
func (t *Trace) ParsersTried() int {
	n := 0
	for _, s := range t.steps {
		if s.Name == "parse" {
			n++
		}
	}
	return n
}

// Success reports whether any parser attempt succeeded.
func (t *Trace) Success() bool {
	for _, s := range t.steps {
		if s.Name == "parse" && s.Data["success"] == true {
			return true
		}
	}
	return false
}
