package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type menuFile struct {
	PrimaryBlend string  `yaml:"primary_blend"`
	ToteSet      string  `yaml:"tote_set"`
	Entries      []Entry `yaml:"entries"`
}

// Load reads a YAML menu definition. An empty path yields the built-in menu.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML menu definition.
func Parse(data []byte) (*Catalog, error) {
	var menu menuFile
	if err := yaml.Unmarshal(data, &menu); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(menu.Entries, menu.PrimaryBlend, menu.ToteSet)
}
