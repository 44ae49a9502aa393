package clidisplay

import (
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
)

// RunQuery filters jsonInput (a snapshot, collection, or metadata payload as
// produced by pkg/bridge's Get* methods) through a jq expression and returns
// the result re-marshaled as indented JSON, one value per line for a
// multi-output filter (e.g. ".processes[] | select(.cpu_pct > 10)").
//
// vantage-poll's --query flag applies it to each collection payload it
// prints: ad hoc inspection of a
// live device's state from a terminal, without standing up a dashboard that
// consumes the Bridge's change-event channel.
func RunQuery(expr string, jsonInput string) (string, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return "", fmt.Errorf("invalid jq expression %q: %w", expr, err)
	}

	var input any
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return "", fmt.Errorf("input is not valid JSON: %w", err)
	}

	iter := query.Run(input)
	var out []byte
	first := true
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return "", fmt.Errorf("jq evaluation failed: %w", err)
		}
		encoded, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode jq result: %w", err)
		}
		if !first {
			out = append(out, '\n')
		}
		out = append(out, encoded...)
		first = false
	}
	return string(out), nil
}
