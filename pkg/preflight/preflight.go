// Package preflight runs static, no-connect checks against a vendor's
// collection catalog and template search path before ever dialing a device:
// is every parser backend available, does every declared template actually
// resolve, and -- for a requested collection the catalog doesn't know about
// -- is there a plausible nearest match to suggest. Grounded on the
// teacher's pkg/newtron/health.Checker (Check interface, Result/Report
// shape, worst-status-wins aggregation), adapted from "is this device
// healthy" to "is this vendor's catalog complete."
package preflight

import (
	"fmt"
	"strings"
	"time"

	"github.com/vantage-net/vantage/pkg/catalog"
	"github.com/vantage-net/vantage/pkg/parser"
)

// Status mirrors the teacher's health.Status levels.
type Status string

const (
	StatusOK       Status = "ok"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
	StatusUnknown  Status = "unknown"
)

// Result is one check's outcome.
type Result struct {
	Check    string      `json:"check"`
	Status   Status      `json:"status"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Report aggregates every check run against one vendor's catalog.
type Report struct {
	Vendor   string        `json:"vendor"`
	Overall  Status        `json:"overall"`
	Results  []Result      `json:"results"`
	Duration time.Duration `json:"duration"`
}

// Check is one static validation against a vendor's catalog.
type Check interface {
	Name() string
	Run(loader *catalog.Loader, resolver *parser.Resolver, vendor string, collections []string) Result
}

// Checker runs a fixed set of static checks with no SSH connection.
type Checker struct {
	checks []Check
}

// NewChecker returns a Checker with the default check set.
func NewChecker() *Checker {
	return &Checker{
		checks: []Check{
			&ParserBackendCheck{},
			&CollectionAvailabilityCheck{},
			&TemplateResolutionCheck{},
		},
	}
}

// Run executes every check and aggregates their status, worst wins
// (critical > warning > unknown > ok), exactly like health.Checker.Run.
func (c *Checker) Run(loader *catalog.Loader, resolver *parser.Resolver, vendor string, collections []string) *Report {
	start := time.Now()
	report := &Report{Vendor: vendor, Overall: StatusOK, Results: make([]Result, 0, len(c.checks))}

	for _, check := range c.checks {
		result := check.Run(loader, resolver, vendor, collections)
		report.Results = append(report.Results, result)

		switch {
		case result.Status == StatusCritical:
			report.Overall = StatusCritical
		case result.Status == StatusWarning && report.Overall != StatusCritical:
			report.Overall = StatusWarning
		case result.Status == StatusUnknown && report.Overall == StatusOK:
			report.Overall = StatusUnknown
		}
	}

	report.Duration = time.Since(start)
	return report
}

// ParserBackendCheck reports which parser backends this build supports.
// All three are always available -- textfsm/ttp/regex are implemented
// in-process, not loaded as optional plugins -- so this only ever fails if
// the chain can't be constructed at all.
type ParserBackendCheck struct{}

func (c *ParserBackendCheck) Name() string { return "parser_backends" }

func (c *ParserBackendCheck) Run(loader *catalog.Loader, resolver *parser.Resolver, vendor string, collections []string) Result {
	start := time.Now()
	chain := parser.NewChain(resolver)
	caps := chain.Capabilities()

	return Result{
		Check:   c.Name(),
		Status:  StatusOK,
		Message: "textfsm, ttp, and regex backends available",
		Details: map[string]any{
			"textfsm":      caps.TextFSM,
			"ttp":          caps.TTP,
			"regex":        caps.Regex,
			"search_paths": caps.SearchPaths,
		},
		Duration: time.Since(start),
	}
}

// CollectionAvailabilityCheck verifies every requested collection resolves
// to a descriptor for vendor, suggesting the nearest available collection
// (by command-text similarity) for anything that doesn't.
type CollectionAvailabilityCheck struct{}

func (c *CollectionAvailabilityCheck) Name() string { return "collection_availability" }

func (c *CollectionAvailabilityCheck) Run(loader *catalog.Loader, resolver *parser.Resolver, vendor string, collections []string) Result {
	start := time.Now()
	available := loader.ListCollections(vendor)

	var missing []string
	suggestions := map[string]string{}
	for _, requested := range collections {
		if _, err := loader.GetDescriptor(requested, vendor); err == nil {
			continue
		}
		missing = append(missing, requested)
		if s := suggestCollection(loader, vendor, requested, available); s != "" {
			suggestions[requested] = s
		}
	}

	result := Result{Check: c.Name(), Duration: time.Since(start)}
	if len(missing) == 0 {
		result.Status = StatusOK
		result.Message = fmt.Sprintf("all %d requested collections resolve for vendor %q", len(collections), vendor)
		return result
	}
	result.Status = StatusWarning
	result.Message = fmt.Sprintf("%d of %d requested collections have no descriptor for vendor %q", len(missing), len(collections), vendor)
	result.Details = map[string]any{"missing": missing, "suggestions": suggestions, "available": available}
	return result
}

// suggestCollection looks for an available collection whose command shares
// its first two words with what a naive "<requested, underscores as
// spaces>" command guess would look like -- catching the common case where
// a requested name is a real show-command fragment that just doesn't match
// any collection's canonical name (e.g. a request for "show_version" on
// arista_eos suggests "memory", whose command is "show version"). The guess
// is compared as-is, with no "show" prefix added.
func suggestCollection(loader *catalog.Loader, vendor, requested string, available []string) string {
	guessWords := firstTwoWords(strings.ReplaceAll(requested, "_", " "))
	if guessWords == "" {
		return ""
	}
	for _, name := range available {
		d, err := loader.GetDescriptor(name, vendor)
		if err != nil {
			continue
		}
		if firstTwoWords(d.Command) == guessWords {
			return name
		}
	}
	return ""
}

func firstTwoWords(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return ""
	}
	if len(fields) == 1 {
		return fields[0]
	}
	return fields[0] + " " + fields[1]
}

// TemplateResolutionCheck verifies every textfsm/ttp template a requested
// collection's descriptor declares actually resolves on the search path.
// A collection with at least one regex parser as a fallback only warns on
// missing templates; one with no regex fallback and all templates missing
// is critical, since it would fail to parse in the field.
type TemplateResolutionCheck struct{}

func (c *TemplateResolutionCheck) Name() string { return "template_resolution" }

func (c *TemplateResolutionCheck) Run(loader *catalog.Loader, resolver *parser.Resolver, vendor string, collections []string) Result {
	start := time.Now()
	type collResult struct {
		Missing      []string `json:"missing"`
		HasRegexFallback bool `json:"has_regex_fallback"`
	}
	details := map[string]collResult{}
	worst := StatusOK

	for _, name := range collections {
		d, err := loader.GetDescriptor(name, vendor)
		if err != nil {
			continue // covered by CollectionAvailabilityCheck
		}
		var missing []string
		hasRegex := false
		for _, spec := range d.Parsers {
			if spec.Type == "regex" {
				hasRegex = true
				continue
			}
			if spec.Type != "textfsm" && spec.Type != "ttp" {
				continue
			}
			anyResolved := false
			for _, tmpl := range spec.Templates {
				if resolver.Resolve(tmpl) != "" {
					anyResolved = true
					break
				}
			}
			if !anyResolved {
				missing = append(missing, spec.Templates...)
			}
		}
		if len(missing) == 0 {
			continue
		}
		details[name] = collResult{Missing: missing, HasRegexFallback: hasRegex}
		if hasRegex {
			if worst == StatusOK {
				worst = StatusWarning
			}
		} else {
			worst = StatusCritical
		}
	}

	result := Result{Check: c.Name(), Status: worst, Duration: time.Since(start)}
	if len(details) == 0 {
		result.Message = "every declared template resolves on the search path"
		return result
	}
	result.Message = fmt.Sprintf("%d collection(s) have unresolved templates", len(details))
	result.Details = details
	return result
}
