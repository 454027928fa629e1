package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is a saved extraction setup. Secrets are stripped on save so a
// profile file never carries passwords.
type Profile struct {
	Name       string           `yaml:"name"`
	Extraction ExtractionConfig `yaml:"extraction"`
}

// LoadProfile reads a YAML profile from disk.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return &p, nil
}

// SaveProfile writes the profile as YAML, dropping credential material
// first. Connection user and server survive; passwords do not.
func SaveProfile(path string, p *Profile) error {
	clean := *p
	clean.Extraction = *p.Extraction.Clone()
	if clean.Extraction.Connection != nil {
		clean.Extraction.Connection.Password = ""
	}
	clean.Extraction.TDE.CertPassword = ""
	clean.Extraction.TDE.MasterKeyPassword = ""

	data, err := yaml.Marshal(&clean)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}
