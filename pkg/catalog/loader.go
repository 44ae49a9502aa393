package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vantage-net/vantage/pkg/util"
)

// Loader reads collection descriptors and schemas from a directory tree
// shaped like:
//
//	collections/<name>/<vendor>.yaml
//	collections/<name>/_schema.yaml
//
// Descriptors and schemas are loaded lazily and cached for the loader's
// lifetime, the way pkg/spec.Loader caches network/site/platform specs.
type Loader struct {
	dir string

	descriptors map[string]*Descriptor // cache key: "<collection>/<vendor>"
	schemas     map[string]*Schema     // cache key: "<collection>"
}

// NewLoader returns a Loader rooted at dir (typically "collections").
func NewLoader(dir string) *Loader {
	return &Loader{
		dir:         dir,
		descriptors: make(map[string]*Descriptor),
		schemas:     make(map[string]*Schema),
	}
}

// GetDescriptor loads (or returns the cached) descriptor for
// (collection, vendor), falling back by stripping one underscore segment
// off the vendor tag (cisco_ios_xe -> cisco_ios) if the exact file is
// missing, matching the vendor-driver registry's own fallback rule.
func (l *Loader) GetDescriptor(collection, vendor string) (*Descriptor, error) {
	key := collection + "/" + vendor
	if d, ok := l.descriptors[key]; ok {
		return d, nil
	}

	tried := []string{vendor}
	v := vendor
	for {
		path := filepath.Join(l.dir, collection, v+".yaml")
		if data, err := os.ReadFile(path); err == nil {
			var d Descriptor
			if err := yaml.Unmarshal(data, &d); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
			d.Collection = collection
			d.Vendor = vendor
			l.descriptors[key] = &d
			return &d, nil
		}
		idx := strings.LastIndex(v, "_")
		if idx < 0 {
			break
		}
		v = v[:idx]
		tried = append(tried, v)
	}
	return nil, fmt.Errorf("%w: no descriptor for collection %q, tried vendors %v", util.ErrNotFound, collection, tried)
}

// GetSchema loads (or returns the cached) schema for a collection.
func (l *Loader) GetSchema(collection string) (*Schema, error) {
	if s, ok := l.schemas[collection]; ok {
		return s, nil
	}
	path := filepath.Join(l.dir, collection, "_schema.yaml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s := &Schema{Fields: map[string]FieldSpec{}}
		l.schemas[collection] = s
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}
	l.schemas[collection] = &s
	return &s, nil
}

// ListCollections returns the names of every collection directory that has
// a descriptor file resolvable for vendor (exact or underscore-fallback).
func (l *Loader) ListCollections(vendor string) []string {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := l.GetDescriptor(e.Name(), vendor); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// GetInterval returns the effective poll interval for (collection, vendor),
// falling back to the collection's compiled-in default.
func (l *Loader) GetInterval(collection, vendor string, fallback int) int {
	d, err := l.GetDescriptor(collection, vendor)
	if err != nil {
		if fallback > 0 {
			return fallback
		}
		return DefaultInterval
	}
	return d.IntervalFor(collection)
}
