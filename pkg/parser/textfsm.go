package parser

import (
	"bufio"
	"regexp"
	"strings"
)

// textFSMValue is one declared "Value" line: a named capture with options
// controlling how it survives across Record actions.
type textFSMValue struct {
	name     string
	pattern  string
	filldown bool
	required bool
	list     bool
}

var valueLineRe = regexp.MustCompile(`^Value\s+(?:([\w,]+)\s+)?(\w+)\s+\((.*)\)\s*$`)
var ruleLineRe = regexp.MustCompile(`^\s+(\^.*?)(?:\s+->\s+(.*))?\s*$`)

// textFSMTemplate is a hand-rolled subset of the TextFSM template language
// (github.com/google/textfsm's grammar): Value declarations, whose
// Required/Filldown/List options are all accepted but of which only Filldown
// changes the output (Required and List have no effect), and rule lines of the form
// "^regex-with-${Value}-refs -> Action". There is no third-party TextFSM
// implementation anywhere in the example pack, so this engine is
// intentionally minimal: it flattens every state's rules into a single
// ordered list and evaluates them top-to-bottom per line (no explicit state
// transitions), which covers every NTC-style "Start" + "Record" template
// this codebase ships. It does not implement continuation states,
// Error/Next-state jumps, or the EOF state.
type textFSMTemplate struct {
	values []textFSMValue
	rules  []compiledRule
}

type compiledRule struct {
	re     *regexp.Regexp
	action string // "Record", "Continue.Record", "" (no action)
}

// parseTextFSMTemplate compiles raw template source into a textFSMTemplate.
func parseTextFSMTemplate(src string) *textFSMTemplate {
	tmpl := &textFSMTemplate{}
	valueByName := map[string]string{}

	scanner := bufio.NewScanner(strings.NewReader(src))
	var ruleLines []string
	for scanner.Scan() {
		line := scanner.Text()
		if m := valueLineRe.FindStringSubmatch(line); m != nil {
			opts, name, pattern := m[1], m[2], m[3]
			v := textFSMValue{name: name, pattern: pattern}
			for _, o := range strings.Split(opts, ",") {
				switch strings.TrimSpace(o) {
				case "Required":
					v.required = true
				case "Filldown":
					v.filldown = true
				case "List":
					v.list = true
				}
			}
			tmpl.values = append(tmpl.values, v)
			valueByName[name] = pattern
			continue
		}
		if m := ruleLineRe.FindStringSubmatch(line); m != nil {
			ruleLines = append(ruleLines, line)
			_ = m
		}
	}

	for _, line := range ruleLines {
		m := ruleLineRe.FindStringSubmatch(line)
		pattern, action := m[1], m[2]
		expanded := expandValueRefs(pattern, valueByName)
		re, err := regexp.Compile(expanded)
		if err != nil {
			continue
		}
		tmpl.rules = append(tmpl.rules, compiledRule{re: re, action: action})
	}

	return tmpl
}

var valueRefRe = regexp.MustCompile(`\$\{(\w+)\}`)

// expandValueRefs replaces ${Name} with a named capture group wrapping that
// Value's declared regex, and a trailing "$$" (TextFSM's literal end-of-line
// marker) with "\s*$".
func expandValueRefs(pattern string, values map[string]string) string {
	pattern = strings.ReplaceAll(pattern, "$$", `\s*$`)
	return valueRefRe.ReplaceAllStringFunc(pattern, func(ref string) string {
		name := valueRefRe.FindStringSubmatch(ref)[1]
		if p, ok := values[name]; ok {
			return "(?P<" + name + ">" + p + ")"
		}
		return ref
	})
}

// run evaluates the template against sanitized CLI output, returning one
// row per Record action. The scratch record accumulates Value matches
// across lines; Filldown values persist across Record resets, everything
// else clears.
func (t *textFSMTemplate) run(text string) []Row {
	var rows []Row
	scratch := Row{}
	filldownVals := Row{}

	resetNonFilldown := func() {
		next := Row{}
		for k, v := range filldownVals {
			next[k] = v
		}
		scratch = next
	}

	lines := strings.Split(text, "\n")
	for _, line := range lines {
		for _, rule := range t.rules {
			m := rule.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			names := rule.re.SubexpNames()
			for i, v := range m {
				if i == 0 || names[i] == "" {
					continue
				}
				scratch[names[i]] = v
				if isFilldown(t.values, names[i]) {
					filldownVals[names[i]] = v
				}
			}
			if strings.Contains(rule.action, "Record") {
				row := Row{}
				for k, v := range scratch {
					row[k] = v
				}
				rows = append(rows, row)
				resetNonFilldown()
			}
			break // first matching rule wins, like textfsm's per-line evaluation
		}
	}
	return rows
}

func isFilldown(values []textFSMValue, name string) bool {
	for _, v := range values {
		if v.name == name {
			return v.filldown
		}
	}
	return false
}

// ParseTextFSM compiles templateSrc and runs it against text, lowercasing
// every produced key to match the normalize map's expected casing.
func ParseTextFSM(text, templateSrc string) []Row {
	tmpl := parseTextFSMTemplate(templateSrc)
	rows := tmpl.run(text)
	out := make([]Row, len(rows))
	for i, r := range rows {
		lower := Row{}
		for k, v := range r {
			lower[strings.ToLower(k)] = v
		}
		out[i] = lower
	}
	return out
}
