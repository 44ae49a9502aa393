// Package catalog loads per-(collection, vendor) YAML descriptors: the CLI
// command to run, the poll interval, the ordered parser chain, the
// canonical-to-parser field normalize map, and the sibling schema used for
// type coercion.
package catalog

// ParserSpec is one entry in a descriptor's parser chain, tried in the
// order declared until one yields at least one row.
type ParserSpec struct {
	Type string `yaml:"type"` // "textfsm" | "ttp" | "regex"

	// textfsm / ttp
	Templates []string `yaml:"templates,omitempty"`

	// regex
	Pattern string            `yaml:"pattern,omitempty"`
	Flags   string            `yaml:"flags,omitempty"`
	Groups  map[string]int    `yaml:"groups,omitempty"`
}

// Descriptor is the parsed form of collections/<name>/<vendor>.yaml.
type Descriptor struct {
	Collection string            `yaml:"-"`
	Vendor     string            `yaml:"-"`
	Command    string            `yaml:"command"`
	Interval   int               `yaml:"interval,omitempty"`
	Parsers    []ParserSpec      `yaml:"parsers"`
	Normalize  map[string]string `yaml:"normalize,omitempty"` // canonical -> parser-produced
}

// FieldSpec declares one schema field's coercion type.
type FieldSpec struct {
	Type string `yaml:"type"` // int|float|bool|str
}

// Schema is the parsed form of the sibling _schema.yaml.
type Schema struct {
	Fields map[string]FieldSpec `yaml:"fields"`
}

// DefaultInterval is used when a descriptor omits "interval" and the
// collection name has no entry in defaultIntervals.
const DefaultInterval = 60

var defaultIntervals = map[string]int{
	"cpu":              30,
	"memory":           30,
	"interfaces":       60,
	"interface_detail": 60,
	"bgp_summary":      60,
	"neighbors":        300,
	"environment":      120,
	"processes":        30,
	"log":              30,
}

// IntervalFor returns the descriptor's declared interval, falling back to
// the per-collection default, falling back to DefaultInterval.
func (d *Descriptor) IntervalFor(collection string) int {
	if d.Interval > 0 {
		return d.Interval
	}
	if v, ok := defaultIntervals[collection]; ok {
		return v
	}
	return DefaultInterval
}
