package rls

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Manifest lists the tables that must be protected by RLS regardless of what
// catalog discovery finds, and the table used by the isolation probe.
type Manifest struct {
	Schema     string   `yaml:"schema"`
	ProbeTable string   `yaml:"probe_table"`
	Tables     []string `yaml:"tables"`
}

// DefaultManifest matches the bundled schema.
func DefaultManifest() Manifest {
	return Manifest{
		Schema:     "public",
		ProbeTable: "projects",
		Tables:     []string{"memberships", "projects", "boards"},
	}
}

// LoadManifest reads a YAML manifest from path.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, errors.Join(ErrManifestInvalid, err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes and validates a YAML manifest. Missing fields fall
// back to DefaultManifest values.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, errors.Join(ErrManifestInvalid, err)
	}

	def := DefaultManifest()
	if m.Schema == "" {
		m.Schema = def.Schema
	}
	if m.ProbeTable == "" {
		m.ProbeTable = def.ProbeTable
	}
	if len(m.Tables) == 0 {
		m.Tables = def.Tables
	}

	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Validate checks that every name is a plain SQL identifier. Names are later
// quoted with pgx.Identifier, this keeps typos out of reports.
func (m Manifest) Validate() error {
	names := append([]string{m.Schema, m.ProbeTable}, m.Tables...)
	for _, n := range names {
		if !identifierPattern.MatchString(n) {
			return fmt.Errorf("%w: %q is not a valid identifier", ErrManifestInvalid, n)
		}
	}
	if !slices.Contains(m.Tables, m.ProbeTable) {
		return fmt.Errorf("%w: probe table %q is not listed in tables", ErrManifestInvalid, m.ProbeTable)
	}
	return nil
}
