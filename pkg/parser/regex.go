package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// compileFlags turns a comma/pipe/space-separated flag string such as
// "MULTILINE|DOTALL|IGNORECASE" into Go regexp inline flags ("(?ism)"-style).
func compileFlags(flags string) string {
	var letters strings.Builder
	fields := strings.FieldsFunc(flags, func(r rune) bool {
		return r == ',' || r == '|' || r == ' '
	})
	for _, f := range fields {
		switch strings.ToUpper(strings.TrimSpace(f)) {
		case "MULTILINE":
			letters.WriteByte('m')
		case "DOTALL":
			letters.WriteByte('s')
		case "IGNORECASE":
			letters.WriteByte('i')
		}
	}
	if letters.Len() == 0 {
		return ""
	}
	return "(?" + letters.String() + ")"
}

// ParseRegex compiles pattern with the declared flags and scans all matches.
// For each match: if groups maps canonical field -> capture index, those
// indices are pulled directly; otherwise named groups are used if present;
// otherwise captures are exposed positionally as field_1..field_N.
func ParseRegex(text, pattern, flags string, groups map[string]int) ([]Row, error) {
	re, err := regexp.Compile(compileFlags(flags) + pattern)
	if err != nil {
		return nil, fmt.Errorf("compile regex: %w", err)
	}

	matches := re.FindAllStringSubmatch(text, -1)
	var rows []Row
	for _, m := range matches {
		row := Row{}
		switch {
		case len(groups) > 0:
			for field, idx := range groups {
				if idx >= 0 && idx < len(m) {
					row[field] = m[idx]
				}
			}
		case hasNamedGroups(re):
			for i, name := range re.SubexpNames() {
				if i == 0 || name == "" {
					continue
				}
				row[name] = m[i]
			}
		default:
			for i := 1; i < len(m); i++ {
				row["field_"+strconv.Itoa(i)] = m[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func hasNamedGroups(re *regexp.Regexp) bool {
	for i, name := range re.SubexpNames() {
		if i > 0 && name != "" {
			return true
		}
	}
	return false
}
