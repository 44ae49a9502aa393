// Package devicemodel holds the identity and credential types shared by the
// transport, engine, and store layers.
package devicemodel

import "fmt"

// Device identifies a single polling target: a network device reachable over
// SSH, tagged with the vendor driver that should parse its output.
type Device struct {
	Hostname string   `json:"hostname"`
	IP       string   `json:"ip"`
	Port     int      `json:"port"`
	Vendor   string   `json:"vendor"`
	Name     string   `json:"name,omitempty"` // display name; defaults to Hostname
	Tags     []string `json:"tags"`

	// Filled in by the transport after connect.
	DetectedPrompt   string `json:"prompt"`
	DetectedHostname string `json:"detected_hostname"`
	Username         string `json:"username"`
}

// DisplayName returns Name if set, otherwise Hostname.
func (d *Device) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Hostname
}

func (d *Device) String() string {
	return fmt.Sprintf("%s@%s:%d", d.Username, d.Hostname, d.Port)
}

// JumpHop describes one hop of a jump-host chain used to reach a device that
// isn't directly reachable.
type JumpHop struct {
	Hostname        string
	Port            int
	Username        string
	Password        string
	KeyData         string
	RequiresTouch   bool // hardware-token prompt (e.g. Yubikey touch) expected
}

// Credentials carries exactly one authentication method for the target
// device, plus an optional jump-host chain. It is a plain struct the caller
// populates — CLI flags, or an external vault integration — never a type
// that reads secrets from disk by convention.
type Credentials struct {
	Username string

	Password      string
	KeyPath       string
	KeyData       string
	KeyPassphrase string
	UseAgent      bool

	JumpHops []JumpHop
}

// AuthMethod reports which of the mutually exclusive auth fields is set.
func (c *Credentials) AuthMethod() string {
	switch {
	case c.UseAgent:
		return "agent"
	case c.KeyData != "":
		return "key-memory"
	case c.KeyPath != "":
		return "key-file"
	case c.Password != "":
		return "password"
	default:
		return "none"
	}
}
