package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads and compiles a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and compiles a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.Entities) == 0 && len(c.Rules) == 0 {
		return nil, fmt.Errorf("%w: no entities and no rules", ErrInvalidCatalog)
	}
	if err := c.Compile(); err != nil {
		return nil, err
	}
	return &c, nil
}
