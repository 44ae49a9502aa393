package catalog

import (
	"github.com/vantage-net/vantage/pkg/util"
)

// Validate cross-checks a descriptor against its schema: every normalize
// target field must exist in the schema, and every regex groups index must
// be a positive capture-group number.
func Validate(d *Descriptor, schema *Schema) error {
	var v util.ValidationBuilder

	for canonical := range d.Normalize {
		if _, ok := schema.Fields[canonical]; !ok {
			v.AddErrorf("normalize target field %q has no entry in _schema.yaml", canonical)
		}
	}

	for i, p := range d.Parsers {
		switch p.Type {
		case "textfsm", "ttp":
			if len(p.Templates) == 0 {
				v.AddErrorf("parser[%d] (%s): no templates declared", i, p.Type)
			}
		case "regex":
			if p.Pattern == "" {
				v.AddErrorf("parser[%d] (regex): no pattern declared", i)
			}
			for field, idx := range p.Groups {
				if idx < 1 {
					v.AddErrorf("parser[%d] (regex): group index for %q must be >= 1, got %d", i, field, idx)
				}
			}
		default:
			v.AddErrorf("parser[%d]: unknown parser type %q", i, p.Type)
		}
	}

	return v.Build()
}

// ValidateAll validates every descriptor the loader can resolve for vendor
// across every listed collection, aggregating errors with the collection
// name prefixed for readability.
func ValidateAll(l *Loader, vendor string) error {
	var v util.ValidationBuilder
	for _, collection := range l.ListCollections(vendor) {
		d, err := l.GetDescriptor(collection, vendor)
		if err != nil {
			v.AddErrorf("%s: %s", collection, err)
			continue
		}
		schema, err := l.GetSchema(collection)
		if err != nil {
			v.AddErrorf("%s: %s", collection, err)
			continue
		}
		if err := Validate(d, schema); err != nil {
			v.AddErrorf("%s: %s", collection, err)
		}
	}
	return v.Build()
}
