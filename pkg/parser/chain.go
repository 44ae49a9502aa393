package parser

import (
	"fmt"
	"strings"

	"github.com/vantage-net/vantage/pkg/catalog"
	"github.com/vantage-net/vantage/pkg/trace"
	"github.com/vantage-net/vantage/pkg/util"
)

// Chain is the ordered fallback parser: structured template, then
// template-language, then inline regex. Parse never panics or returns a Go
// error for a parsing failure — failure is expressed through Meta.
type Chain struct {
	resolver *Resolver
}

// NewChain builds a Chain backed by the given template resolver.
func NewChain(resolver *Resolver) *Chain {
	return &Chain{resolver: resolver}
}

// Capabilities reports what this chain can do, for logging and preflight.
type Capabilities struct {
	TextFSM     bool
	TTP         bool
	Regex       bool
	SearchPaths []string
}

// Capabilities returns the chain's parser backend availability. TextFSM,
// TTP, and regex are always available — they are all implemented in this
// package, not loaded as optional plugins.
func (c *Chain) Capabilities() Capabilities {
	return Capabilities{TextFSM: true, TTP: true, Regex: true, SearchPaths: c.resolver.SearchPaths()}
}

// Parse runs descriptor's parser chain against raw output, normalizes and
// coerces the winning rows per schema, and returns (rows, meta). Empty or
// whitespace-only input short-circuits to ([], {ParsedBy: "none"}) without
// attempting sanitize or any parser.
func (c *Chain) Parse(raw string, d *catalog.Descriptor, schema *catalog.Schema, t *trace.Trace) ([]Row, Meta) {
	if strings.TrimSpace(raw) == "" {
		return nil, Meta{ParsedBy: "none", Error: "empty output", Err: util.ErrEmptyOutput}
	}

	cleaned := Sanitize(raw, d.Command)
	if t != nil {
		t.Sanitized(cleaned, strings.Count(raw, "\n")-strings.Count(cleaned, "\n"))
	}

	var errs []string
	templateAttempted, templateResolved := false, false
	for _, spec := range d.Parsers {
		var rows []Row
		var template string

		switch spec.Type {
		case "textfsm":
			templateAttempted = true
			var resolved bool
			rows, template, resolved = c.tryTemplateEngine(spec.Templates, cleaned, t, "textfsm", ParseTextFSM)
			templateResolved = templateResolved || resolved
		case "ttp":
			templateAttempted = true
			var resolved bool
			rows, template, resolved = c.tryTemplateEngine(spec.Templates, cleaned, t, "ttp", ParseTTP)
			templateResolved = templateResolved || resolved
		case "regex":
			r, err := ParseRegex(cleaned, spec.Pattern, spec.Flags, spec.Groups)
			if err != nil {
				errs = append(errs, fmt.Sprintf("regex: %s", err))
				if t != nil {
					t.ParserTried("regex", "inline", "", false, err.Error(), 0, nil)
				}
				continue
			}
			rows = r
			template = "inline"
			if t != nil {
				t.ParserTried("regex", "inline", "", len(rows) > 0, "", len(rows), fieldNames(rows))
			}
		default:
			errs = append(errs, fmt.Sprintf("unknown parser type %q", spec.Type))
			continue
		}

		if len(rows) == 0 {
			errs = append(errs, fmt.Sprintf("%s: 0 rows", spec.Type))
			continue
		}

		rows = Normalize(rows, d.Normalize)
		rows = CoerceTypes(rows, schema)
		return rows, Meta{ParsedBy: spec.Type, Template: template}
	}

	err := util.ErrNoParserMatched
	if templateAttempted && !templateResolved {
		err = util.ErrTemplateMissing
	}
	return nil, Meta{ParsedBy: "none", Error: fmt.Sprintf("all parsers failed (%s)", strings.Join(errs, "; ")), Err: err}
}

// tryTemplateEngine resolves each candidate template name in order and runs
// engineFn against the first one that resolves and yields >= 1 row. resolved
// reports whether any candidate name was found on the search path at all,
// distinguishing "no template on disk" from "template ran but matched
// nothing".
func (c *Chain) tryTemplateEngine(names []string, text string, t *trace.Trace, kind string, engineFn func(text, templateSrc string) []Row) (rows []Row, template string, resolved bool) {
	for _, name := range names {
		path := c.resolver.Resolve(name)
		if t != nil {
			t.TemplateResolved(name, path, c.resolver.SearchPaths())
		}
		if path == "" {
			if t != nil {
				t.ParserTried(kind, name, "", false, "template not found", 0, nil)
			}
			continue
		}
		resolved = true
		src, err := readFile(path)
		if err != nil {
			if t != nil {
				t.ParserTried(kind, name, path, false, err.Error(), 0, nil)
			}
			continue
		}
		rows = engineFn(text, src)
		if len(rows) > 0 {
			if t != nil {
				t.ParserTried(kind, name, path, true, "", len(rows), fieldNames(rows))
			}
			return rows, name, resolved
		}
		if t != nil {
			t.ParserTried(kind, name, path, false, "0 rows returned", 0, nil)
		}
	}
	return nil, "", resolved
}

func fieldNames(rows []Row) []string {
	if len(rows) == 0 {
		return nil
	}
	out := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		out = append(out, k)
	}
	return out
}
