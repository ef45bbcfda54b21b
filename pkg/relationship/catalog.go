// Package relationship decides whether a vendor-product pair should exist
// in the graph and at what confidence. Validation runs at ingestion time
// but defines the edge weights retrieval and ranking rely on.
package relationship

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is the curated vendor → known products mapping. A catalog match
// is the strongest relationship signal and always yields high confidence.
type Catalog struct {
	Vendors map[string][]string `yaml:"vendors"`
}

// catalogFile mirrors the on-disk layout: the vendor map sits under a
// product_classification section so one config file can serve ingestion
// and classification alike.
type catalogFile struct {
	ProductClassification struct {
		Vendors map[string][]string `yaml:"vendors"`
	} `yaml:"product_classification"`
}

// EmptyCatalog returns a catalog with no entries. Validation still works,
// it just never reaches high confidence.
func EmptyCatalog() *Catalog {
	return &Catalog{Vendors: map[string][]string{}}
}

// LoadCatalog reads the vendor catalog from a YAML config file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	return &Catalog{Vendors: file.ProductClassification.Vendors}, nil
}

// Contains reports whether the pair is curated. Vendor matching is
// case-insensitive containment in both directions ("palo alto" matches
// "Palo Alto Networks" and vice versa); product matching is exact,
// case-insensitive.
func (c *Catalog) Contains(vendor, product string) bool {
	if c == nil || len(c.Vendors) == 0 {
		return false
	}

	vendorLower := strings.ToLower(vendor)
	productLower := strings.ToLower(product)

	for knownVendor, products := range c.Vendors {
		knownLower := strings.ToLower(knownVendor)
		if !strings.Contains(vendorLower, knownLower) && !strings.Contains(knownLower, vendorLower) {
			continue
		}
		for _, knownProduct := range products {
			if productLower == strings.ToLower(knownProduct) {
				return true
			}
		}
	}
	return false
}
