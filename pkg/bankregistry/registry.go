// Package bankregistry loads the static registry of supported aggregator
// bank families: which PLAID_ENV-style environment and connection quirks
// apply to each bank a user can pledge against.
package bankregistry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is one bank family's aggregator connection profile.
type Profile struct {
	Type          string `yaml:"type"`
	DisplayName   string `yaml:"display_name"`
	AggregatorEnv string `yaml:"aggregator_env"`
}

// bankEntry maps a concrete bank id (model.Bank.ID) to its family type.
type bankEntry struct {
	ID   string `yaml:"id"`
	Type string `yaml:"type"`
}

type registryFile struct {
	Profiles []Profile   `yaml:"profiles"`
	Banks    []bankEntry `yaml:"banks"`
}

// Registry resolves bank ids to their family profile.
type Registry struct {
	profiles  map[string]Profile
	bankTypes map[string]string
}

// Load reads and parses the YAML bank registry at path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bankregistry: reading %s: %w", path, err)
	}
	return parse(data)
}

func parse(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("bankregistry: parsing registry: %w", err)
	}

	reg := &Registry{
		profiles:  make(map[string]Profile, len(file.Profiles)),
		bankTypes: make(map[string]string, len(file.Banks)),
	}
	for _, p := range file.Profiles {
		reg.profiles[p.Type] = p
	}
	for _, b := range file.Banks {
		reg.bankTypes[b.ID] = b.Type
	}
	return reg, nil
}

// TypeForBank returns the bank-family type for a bank id.
func (r *Registry) TypeForBank(bankID string) (string, bool) {
	t, ok := r.bankTypes[bankID]
	return t, ok
}

// Profile returns the connection profile for a bank-family type.
func (r *Registry) Profile(bankType string) (Profile, bool) {
	p, ok := r.profiles[bankType]
	return p, ok
}
