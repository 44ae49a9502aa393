package main

import (
	"testing"

	"github.com/vantage-net/vantage/pkg/catalog"
	"github.com/vantage-net/vantage/pkg/settings"
)

func TestResolveCollectionsSplitsCSVFlagOverSettings(t *testing.T) {
	app = &App{collectionsCSV: "cpu, memory , bgp", cfg: &settings.Settings{DefaultCollections: []string{"neighbors"}}}
	defer func() { app = &App{} }()

	got := resolveCollections(catalog.NewLoader("/nonexistent"))
	want := []string{"cpu", "memory", "bgp"}
	if len(got) != len(want) {
		t.Fatalf("resolveCollections() = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("resolveCollections() = %v, want %v", got, want)
		}
	}
}

func TestResolveCollectionsFallsBackToSettingsDefaults(t *testing.T) {
	app = &App{cfg: &settings.Settings{DefaultCollections: []string{"cpu", "neighbors"}}}
	defer func() { app = &App{} }()

	got := resolveCollections(catalog.NewLoader("/nonexistent"))
	if len(got) != 2 || got[0] != "cpu" || got[1] != "neighbors" {
		t.Fatalf("resolveCollections() = %v, want settings defaults", got)
	}
}

func TestTemplateOverrideDirsPrefersFlagOverSettings(t *testing.T) {
	app = &App{cfg: &settings.Settings{DefaultTemplatesDir: "/from/settings"}}
	defer func() { app = &App{} }()

	app.templatesDir = "/from/flag"
	if got := templateOverrideDirs(); len(got) != 1 || got[0] != "/from/flag" {
		t.Fatalf("expected flag override to win, got %v", got)
	}

	app.templatesDir = ""
	if got := templateOverrideDirs(); len(got) != 1 || got[0] != "/from/settings" {
		t.Fatalf("expected settings fallback, got %v", got)
	}
}

func TestBuildDeviceAndCredentials(t *testing.T) {
	app = &App{host: "leaf1-ny", port: 22, vendor: "cisco_ios", user: "admin", password: "secret"}
	defer func() { app = &App{} }()

	dev := buildDevice()
	if dev.Hostname != "leaf1-ny" || dev.Vendor != "cisco_ios" {
		t.Fatalf("unexpected device: %+v", dev)
	}

	creds := buildCredentials()
	if creds.Username != "admin" || creds.AuthMethod() != "password" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}
}
