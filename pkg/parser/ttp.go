package parser

import (
	"regexp"
	"strings"
)

// ttpFieldRe matches a TTP-style "{{ name }}" or "{{ name | filter }}"
// placeholder. Filters beyond whitespace-trimming are not implemented here.
var ttpFieldRe = regexp.MustCompile(`\{\{\s*(\w+)(?:\s*\|[^}]*)?\s*\}\}`)

// ttpLineTemplate is one non-empty line of a .ttp template file, compiled
// into a regex that captures each {{ field }} placeholder.
type ttpLineTemplate struct {
	re     *regexp.Regexp
	fields []string
}

// parseTTPTemplate compiles every non-blank, non-comment line of a TTP
// template into a matcher. There is no third-party TTP implementation in
// the example pack (Python's `ttp` is the grounding reference, see
// parser_chain.py's _parse_ttp), so — like the TextFSM engine — this is a
// deliberately minimal reimplementation: flat line-pattern matching with
// named placeholders, no group nesting or macros/lookups.
func parseTTPTemplate(src string) []ttpLineTemplate {
	var templates []ttpLineTemplate
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if !ttpFieldRe.MatchString(line) {
			continue
		}
		templates = append(templates, compileTTPLine(line))
	}
	return templates
}

func compileTTPLine(line string) ttpLineTemplate {
	var fields []string
	var sb strings.Builder
	last := 0
	for _, loc := range ttpFieldRe.FindAllStringSubmatchIndex(line, -1) {
		literal := line[last:loc[0]]
		sb.WriteString(regexp.QuoteMeta(literal))
		name := line[loc[2]:loc[3]]
		fields = append(fields, name)
		sb.WriteString("(?P<" + name + ">\\S+)")
		last = loc[1]
	}
	sb.WriteString(regexp.QuoteMeta(line[last:]))

	re, err := regexp.Compile("^\\s*" + strings.TrimSpace(sb.String()) + "\\s*$")
	if err != nil {
		re = regexp.MustCompile(`$^`) // matches nothing
	}
	return ttpLineTemplate{re: re, fields: fields}
}

// ParseTTP runs every line of text against every compiled template line,
// producing one row per matching line. As in the Python original, results
// are flat dicts — nested/grouped TTP outputs are not modeled here.
func ParseTTP(text, templateSrc string) []Row {
	templates := parseTTPTemplate(templateSrc)
	var rows []Row
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		for _, tmpl := range templates {
			m := tmpl.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			row := Row{}
			names := tmpl.re.SubexpNames()
			for i, v := range m {
				if i == 0 || names[i] == "" {
					continue
				}
				row[strings.ToLower(names[i])] = v
			}
			rows = append(rows, row)
			break
		}
	}
	return rows
}
