package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type categoryFile struct {
	Categories []Category `toml:"categories" yaml:"categories"`
}

// LoadCategories reads an ordered category table from a TOML or YAML file.
// The file holds a top-level "categories" list of {name, extensions}.
func LoadCategories(path string) ([]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category table: %w", err)
	}

	var parsed categoryFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("parse category table: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("parse category table: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported category table format %q (use .toml, .yaml, or .yml)", filepath.Ext(path))
	}
	if len(parsed.Categories) == 0 {
		return nil, fmt.Errorf("category table %s is empty", path)
	}
	return parsed.Categories, nil
}
