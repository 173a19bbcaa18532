// Package meshconfig loads the per-node configuration that wires a
// netcoding.Node up to a transport: node id, role, combine
// probability, and the UDP addresses it listens on and forwards to.
package meshconfig

/*------------------------------------------------------------------
 *
 * Purpose:	Read node configuration from a YAML file, then apply an
 *		optional local JSONC override file, then pflag overrides.
 *
 * Description:	Three layers, lowest precedence first: the YAML
 *		document is the durable description of a node an operator
 *		checks into version control; .netcodingrc is a scratch
 *		file of measurement notes an operator edits locally and
 *		wants inline comments in, which plain encoding/json can't
 *		parse; pflag wins over both for one-off overrides on the
 *		command line.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// Role names as they appear in configuration files.
const (
	RoleNormal   = "normal"
	RoleRouter   = "router"
	RoleReceiver = "receiver"
)

// Config is a single node's configuration.
type Config struct {
	ID            uint32 `yaml:"id"             json:"id,omitempty"`
	Role          string `yaml:"role"           json:"role,omitempty"`
	ProbToCombine int    `yaml:"prob_to_combine" json:"prob_to_combine,omitempty"`
	Listen        string `yaml:"listen"         json:"listen,omitempty"`
	Peer          string `yaml:"peer"           json:"peer,omitempty"`
	BenchmarkFile string `yaml:"benchmark_file" json:"benchmark_file,omitempty"`
}

// DefaultProbToCombine is the default combination probability for a
// combinatory router.
const DefaultProbToCombine = 30

// Default returns a normal-role node with no combination and no peer
// configured.
func Default() Config {
	return Config{
		Role:          RoleNormal,
		ProbToCombine: 0,
		Listen:        ":9900",
	}
}

// Load reads path as YAML into a Config seeded from Default.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("meshconfig: reading %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("meshconfig: parsing %q: %w", path, err)
	}

	return cfg, nil
}

// ApplyLocalOverride merges a JSONC (JSON-with-comments) override file
// at path over cfg, if path exists. It is not an error for path to be
// absent; the override file is optional, scratch-local state an
// operator may never have created.
func ApplyLocalOverride(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("meshconfig: reading override %q: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("meshconfig: invalid JSONC in %q: %w", path, err)
	}

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("meshconfig: invalid JSON in %q: %w", path, err)
	}

	return cfg, nil
}

// Validate reports whether cfg describes a usable node.
func (c Config) Validate() error {
	switch c.Role {
	case RoleNormal, RoleRouter, RoleReceiver:
	default:
		return fmt.Errorf("meshconfig: unknown role %q", c.Role)
	}
	if c.ProbToCombine < 0 || c.ProbToCombine > 100 {
		return fmt.Errorf("meshconfig: prob_to_combine %d out of [0,100]", c.ProbToCombine)
	}
	if c.Listen == "" {
		return fmt.Errorf("meshconfig: listen address required")
	}
	return nil
}
