package parser

import (
	"strconv"
	"strings"

	"github.com/vantage-net/vantage/pkg/catalog"
)

// CoerceTypes applies the schema's declared field types to every row.
// Numeric coercion strips commas and percent signs first. A value that
// cannot be coerced retains its original form — it is never silently
// zeroed — so downstream property tests can assert "numeric or unchanged".
func CoerceTypes(rows []Row, schema *catalog.Schema) []Row {
	if schema == nil || len(schema.Fields) == 0 {
		return rows
	}
	for _, row := range rows {
		for field, spec := range schema.Fields {
			v, ok := row[field]
			if !ok {
				continue
			}
			row[field] = coerceOne(v, spec.Type)
		}
	}
	return rows
}

func coerceOne(v any, kind string) any {
	s, isStr := v.(string)
	switch kind {
	case "int":
		if !isStr {
			return v
		}
		cleaned := strings.ReplaceAll(strings.ReplaceAll(s, ",", ""), "%", "")
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return v
		}
		return int(f)
	case "float":
		if !isStr {
			return v
		}
		cleaned := strings.ReplaceAll(strings.ReplaceAll(s, ",", ""), "%", "")
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return v
		}
		return f
	case "bool":
		if !isStr {
			return v
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no", "":
			return false
		default:
			return v
		}
	case "str":
		if v == nil {
			return ""
		}
		if isStr {
			return s
		}
		return v
	default:
		return v
	}
}
