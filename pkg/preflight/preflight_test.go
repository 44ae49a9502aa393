package preflight

import (
	"testing"

	"github.com/vantage-net/vantage/pkg/catalog"
	"github.com/vantage-net/vantage/pkg/parser"
)

func newEmptyLoader(t *testing.T) *catalog.Loader {
	t.Helper()
	return catalog.NewLoader(t.TempDir())
}

func newEmptyResolver(t *testing.T) *parser.Resolver {
	t.Helper()
	return parser.NewResolver(nil, t.TempDir(), t.TempDir())
}

func TestFirstTwoWords(t *testing.T) {
	cases := map[string]string{
		"show bgp summary": "show bgp",
		"bgp_summary":       "bgp summary",
		"cpu":               "cpu",
		"":                  "",
	}
	for in, want := range cases {
		if got := firstTwoWords(in); got != want {
			t.Errorf("firstTwoWords(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCheckerRunAggregatesWorstStatus(t *testing.T) {
	// With no collections directory present, ParserBackendCheck reports OK
	// and CollectionAvailabilityCheck reports OK on an empty request list --
	// the aggregate should be OK, not spuriously escalated.
	loader := newEmptyLoader(t)
	resolver := newEmptyResolver(t)

	checker := NewChecker()
	report := checker.Run(loader, resolver, "cisco_ios", nil)

	if report.Overall != StatusOK {
		t.Fatalf("expected overall OK with no requested collections, got %v", report.Overall)
	}
	if len(report.Results) != 3 {
		t.Fatalf("expected 3 check results, got %d", len(report.Results))
	}
}

func TestCollectionAvailabilityWarnsOnMissingCollection(t *testing.T) {
	loader := newEmptyLoader(t)
	resolver := newEmptyResolver(t)

	check := &CollectionAvailabilityCheck{}
	result := check.Run(loader, resolver, "cisco_ios", []string{"does_not_exist"})

	if result.Status != StatusWarning {
		t.Fatalf("expected warning for an unresolvable collection, got %v", result.Status)
	}
}
