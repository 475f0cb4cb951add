package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BouquetConfig is a single bouquet entry in catalog.yaml.
type BouquetConfig struct {
	ID          int64  `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       int    `yaml:"price"`
	Occasion    string `yaml:"occasion"`
	Image       string `yaml:"image,omitempty"`
}

// CatalogConfig is the root of catalog.yaml.
type CatalogConfig struct {
	Bouquets []BouquetConfig `yaml:"bouquets"`
}

// Occasion keys the shop sells for. "other" is handled as free text
// and never appears in the catalog.
var KnownOccasions = []string{"birthday", "wedding", "school", "no_reason"}

// LoadCatalog loads and validates the bouquet catalog from a YAML file.
func LoadCatalog(path string) (*CatalogConfig, error) {
	if path == "" {
		path = "configs/catalog.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog config: %w", err)
	}

	var cfg CatalogConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse catalog config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the catalog for errors.
func (c *CatalogConfig) Validate() error {
	if len(c.Bouquets) == 0 {
		return fmt.Errorf("no bouquets defined")
	}

	known := make(map[string]bool, len(KnownOccasions))
	for _, o := range KnownOccasions {
		known[o] = true
	}

	ids := make(map[int64]bool)
	names := make(map[string]bool)

	for i, b := range c.Bouquets {
		if b.ID <= 0 {
			return fmt.Errorf("bouquet[%d]: id must be positive, got %d", i, b.ID)
		}
		if ids[b.ID] {
			return fmt.Errorf("bouquet[%d]: duplicate id %d", i, b.ID)
		}
		ids[b.ID] = true

		if b.Name == "" {
			return fmt.Errorf("bouquet[%d]: name is required", i)
		}
		if names[b.Name] {
			return fmt.Errorf("bouquet[%d]: duplicate name %q", i, b.Name)
		}
		names[b.Name] = true

		if b.Price <= 0 {
			return fmt.Errorf("bouquet[%d]: price must be positive, got %d", i, b.Price)
		}
		if !known[b.Occasion] {
			return fmt.Errorf("bouquet[%d]: unknown occasion %q", i, b.Occasion)
		}
	}

	return nil
}

// String returns a summary of the catalog.
func (c *CatalogConfig) String() string {
	return fmt.Sprintf("CatalogConfig: %d bouquets", len(c.Bouquets))
}
