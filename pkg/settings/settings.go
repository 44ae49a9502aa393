// Package settings manages persistent user settings for the vantage-poll CLI.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// DefaultCollectionsDir is the default collection descriptor directory used when no override is configured.
const DefaultCollectionsDir = "/etc/vantage/collections"

// Settings holds persistent user preferences
type Settings struct {
	// DefaultVendor is the vendor tag used when --vendor is not given
	DefaultVendor string `json:"default_vendor,omitempty"`

	// CollectionsDir overrides the default collection descriptor directory
	CollectionsDir string `json:"collections_dir,omitempty"`

	// DefaultTemplatesDir overrides the bundled local textfsm/ttp template directory
	DefaultTemplatesDir string `json:"default_templates_dir,omitempty"`

	// DefaultCollections is the collection list used when --collections is not specified
	DefaultCollections []string `json:"default_collections,omitempty"`

	// LegacyModeDefault is saved and loaded with the other settings; vantage-poll
	// does not read it (legacy SSH algorithms follow its --legacy flag, default on)
	LegacyModeDefault bool `json:"legacy_mode_default,omitempty"`

	// BaseIntervalSeconds is the default sleep between poll cycles
	BaseIntervalSeconds int `json:"base_interval_seconds,omitempty"`

	// RedisAddr is the default Redis address for the optional pub/sub mirror
	RedisAddr string `json:"redis_addr,omitempty"`

	// RedisChannelPrefix is the default channel prefix for the Redis mirror
	RedisChannelPrefix string `json:"redis_channel_prefix,omitempty"`

	// LastDevice remembers the most recently polled device hostname
	LastDevice string `json:"last_device,omitempty"`
}

const (
	// DefaultBaseIntervalSeconds is used when Settings.BaseIntervalSeconds is unset.
	DefaultBaseIntervalSeconds = 30

	// DefaultRedisChannelPrefix is used when Settings.RedisChannelPrefix is unset and a Redis mirror is attached.
	DefaultRedisChannelPrefix = "vantage"
)

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "vantage_settings.json"
	}
	return filepath.Join(home, ".vantage", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty settings if file doesn't exist
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetCollectionsDir returns the collection descriptor directory (with fallback)
func (s *Settings) GetCollectionsDir() string {
	if s.CollectionsDir != "" {
		return s.CollectionsDir
	}
	return DefaultCollectionsDir
}

// GetBaseIntervalSeconds returns the configured base interval with a default of 30.
func (s *Settings) GetBaseIntervalSeconds() int {
	if s.BaseIntervalSeconds > 0 {
		return s.BaseIntervalSeconds
	}
	return DefaultBaseIntervalSeconds
}

// GetRedisChannelPrefix returns the configured Redis channel prefix with a default of "vantage".
func (s *Settings) GetRedisChannelPrefix() string {
	if s.RedisChannelPrefix != "" {
		return s.RedisChannelPrefix
	}
	return DefaultRedisChannelPrefix
}

// SetVendor sets the default vendor tag.
func (s *Settings) SetVendor(vendor string) {
	s.DefaultVendor = vendor
}

// SetLastDevice records the most recently polled device hostname.
func (s *Settings) SetLastDevice(hostname string) {
	s.LastDevice = hostname
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
