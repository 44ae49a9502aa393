// vantage-poll - network telemetry poll runner
//
// A single-device SSH telemetry poller: connects to one router or switch,
// runs its requested collections on a schedule, and streams normalized state
// to stdout (or a Redis mirror) for a dashboard to consume.
//
// Examples:
//
//	vantage-poll --host leaf1-ny --vendor cisco_ios -u admin --key ~/.ssh/id_rsa
//	vantage-poll --host 10.1.1.1 --vendor arista_eos -u admin --preflight-only
//	vantage-poll --host leaf1-ny --vendor cisco_nxos -u admin --collections cpu --query '.five_sec_total'
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vantage-net/vantage/pkg/bridge"
	"github.com/vantage-net/vantage/pkg/catalog"
	"github.com/vantage-net/vantage/pkg/devicemodel"
	"github.com/vantage-net/vantage/pkg/engine"
	"github.com/vantage-net/vantage/pkg/parser"
	"github.com/vantage-net/vantage/pkg/preflight"
	"github.com/vantage-net/vantage/pkg/settings"
	"github.com/vantage-net/vantage/pkg/transport"
	"github.com/vantage-net/vantage/pkg/util"
)

const (
	defaultLocalTemplatesDir     = "/etc/vantage/templates/local"
	defaultCommunityTemplatesDir = "/etc/vantage/templates/community"
)

// App holds CLI state shared across the root command and its version
// subcommand, built once in PersistentPreRunE the way cmd/newtron's App is.
type App struct {
	// Device/connection flags
	host     string
	port     int
	vendor   string
	user     string
	password string
	keyPath  string
	name     string

	// Behavior flags
	templatesDir   string
	collectionsCSV string
	legacy         bool
	debug          bool
	preflightOnly  bool
	jsonOutput     bool
	query          string

	redisAddr          string
	redisChannelPrefix string

	settingsPath string

	// Initialized in PersistentPreRunE
	cfg *settings.Settings
}

var app = &App{}

func main() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	if ee, ok := err.(*exitError); ok {
		os.Exit(ee.code)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

var rootCmd = &cobra.Command{
	Use:           "vantage-poll",
	Short:         "Poll a network device over SSH and stream normalized telemetry",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		path := app.settingsPath
		var cfg *settings.Settings
		var err error
		if path != "" {
			cfg, err = settings.LoadFrom(path)
		} else {
			cfg, err = settings.Load()
		}
		if err != nil {
			util.Logger.Warnf("could not load settings: %v", err)
			cfg = &settings.Settings{}
		}
		app.cfg = cfg

		if app.debug {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}

		if app.host == "" {
			return fmt.Errorf("--host is required")
		}
		if app.vendor == "" {
			app.vendor = cfg.DefaultVendor
		}
		if app.vendor == "" {
			return fmt.Errorf("--vendor is required (or set default_vendor in settings)")
		}
		if app.redisAddr == "" {
			app.redisAddr = cfg.RedisAddr
		}
		if app.redisChannelPrefix == "" {
			app.redisChannelPrefix = cfg.GetRedisChannelPrefix()
		}

		return nil
	},
	RunE: runPoll,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.host, "host", "", "Device hostname or IP (required)")
	flags.IntVar(&app.port, "port", 22, "SSH port")
	flags.StringVar(&app.vendor, "vendor", "", "Vendor tag: cisco_ios, cisco_ios_xe, cisco_nxos, arista_eos, juniper_junos")
	flags.StringVarP(&app.user, "user", "u", "", "SSH username")
	flags.StringVar(&app.password, "password", "", "SSH password")
	flags.StringVar(&app.keyPath, "key", "", "Path to an SSH private key")
	flags.StringVar(&app.name, "name", "", "Display name for this device (defaults to --host)")

	flags.StringVar(&app.templatesDir, "templates", "", "Override directory for textfsm/ttp templates, tried before bundled dirs")
	flags.StringVar(&app.collectionsCSV, "collections", "", "Comma-separated collection names to poll (defaults to settings or all available)")
	flags.BoolVar(&app.legacy, "legacy", true, "Enable legacy SSH KEX/cipher/host-key algorithms (most network gear needs this)")
	flags.BoolVar(&app.debug, "debug", false, "Verbose logging")
	flags.BoolVar(&app.preflightOnly, "preflight-only", false, "Validate the catalog/templates for this vendor and exit (0 pass, 1 fail) without connecting")
	flags.BoolVar(&app.jsonOutput, "json", false, "Print raw JSON instead of tables")
	flags.StringVar(&app.query, "query", "", "Filter printed JSON through this jq expression")
	flags.StringVar(&app.redisAddr, "redis-addr", "", "Optional Redis address to additionally mirror change events to")
	flags.StringVar(&app.redisChannelPrefix, "redis-channel-prefix", "", "Channel prefix for the Redis mirror (default \"vantage\")")
	flags.StringVar(&app.settingsPath, "settings", "", "Override path to settings.json (default ~/.vantage/settings.json)")

	rootCmd.AddCommand(versionCmd)
}

func buildDevice() *devicemodel.Device {
	return &devicemodel.Device{
		Hostname: app.host,
		Port:     app.port,
		Vendor:   app.vendor,
		Name:     app.name,
	}
}

func buildCredentials() *devicemodel.Credentials {
	return &devicemodel.Credentials{
		Username: app.user,
		Password: app.password,
		KeyPath:  app.keyPath,
	}
}

func resolveCollections(loader *catalog.Loader) []string {
	if app.collectionsCSV != "" {
		return util.SplitCommaSeparated(app.collectionsCSV)
	}
	if len(app.cfg.DefaultCollections) > 0 {
		return app.cfg.DefaultCollections
	}
	return loader.ListCollections(app.vendor)
}

func templateOverrideDirs() []string {
	if app.templatesDir != "" {
		return []string{app.templatesDir}
	}
	if app.cfg.DefaultTemplatesDir != "" {
		return []string{app.cfg.DefaultTemplatesDir}
	}
	return nil
}

func runPoll(cmd *cobra.Command, args []string) error {
	collectionsDir := app.cfg.GetCollectionsDir()
	loader := catalog.NewLoader(collectionsDir)
	resolver := parser.NewResolver(templateOverrideDirs(), defaultLocalTemplatesDir, defaultCommunityTemplatesDir)
	collections := resolveCollections(loader)

	if app.preflightOnly {
		report := preflight.NewChecker().Run(loader, resolver, app.vendor, collections)
		printPreflightReport(report)
		if report.Overall == preflight.StatusCritical {
			return &exitError{code: 1}
		}
		return nil
	}

	e := engine.New(engine.Config{
		Device:              buildDevice(),
		Credentials:         buildCredentials(),
		Transport:           transport.Config{Legacy: app.legacy},
		Collections:         collections,
		CatalogDir:          collectionsDir,
		TemplateDirs:        templateOverrideDirs(),
		LocalDir:            defaultLocalTemplatesDir,
		CommunityDir:        defaultCommunityTemplatesDir,
		BaseIntervalSeconds: app.cfg.GetBaseIntervalSeconds(),
	})

	b := bridge.New(e)
	defer b.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if app.redisAddr != "" {
		attachRedisMirror(ctx, b)
	}

	go printUpdates(b)

	err := e.Run(ctx)
	if err != nil {
		return fmt.Errorf("poll run ended: %w", err)
	}
	return nil
}

// exitError carries a process exit code through cobra's error-returning
// RunE without printing an extra message (main already suppressed cobra's
// own usage/error output via SilenceUsage/SilenceErrors).
type exitError struct{ code int }

func (e *exitError) Error() string { return "" }
