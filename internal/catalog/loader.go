package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// productSpec is the on-disk shape of a product. Availability is kept as a
// string so a bad value is reported as a validation problem rather than a
// decode failure.
type productSpec struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Price        string   `yaml:"price"`
	Rating       float64  `yaml:"rating"`
	Availability string   `yaml:"availability"`
	ImageURL     string   `yaml:"image_url"`
	Keywords     []string `yaml:"keywords"`
}

type catalogFile struct {
	Products []productSpec `yaml:"products"`
}

// Load reads a catalog from a YAML or JSON file. Any problem is fatal: a
// catalog with missing fields would silently degrade match quality.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
			return nil, loadErr
		}
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes catalog data. JSON input works as well since it is a
// subset of YAML.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(file.Products) == 0 {
		return nil, ErrEmptyCatalog
	}

	products := make([]Product, 0, len(file.Products))
	var problems []*ValidationError
	for i, spec := range file.Products {
		avail, err := ParseAvailability(spec.Availability)
		if err != nil {
			problems = append(problems, &ValidationError{Index: i, ID: spec.ID, Field: "availability", Message: err.Error()})
		}
		products = append(products, Product{
			ID:           spec.ID,
			Name:         spec.Name,
			Description:  spec.Description,
			Price:        spec.Price,
			Rating:       spec.Rating,
			Availability: avail,
			ImageURL:     spec.ImageURL,
			Keywords:     spec.Keywords,
		})
	}

	c, err := New(products)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			loadErr.Problems = append(problems, loadErr.Problems...)
			return nil, loadErr
		}
		return nil, err
	}
	if len(problems) > 0 {
		return nil, &LoadError{Problems: problems}
	}
	return c, nil
}

// Default returns the built-in outdoor gear catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// LoadOrDefault loads path, or the built-in catalog when path is empty.
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
