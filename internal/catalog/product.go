/*
Package catalog holds the static product catalog that searches run against.

The catalog is read once at startup from YAML or JSON and never mutated
afterwards, so a single *Catalog can be shared by every session without
locking.

File format:

	products:
	  - id: camping_cot
	    name: Portable Camping Cot
	    description: Lightweight foldable sleeping cot for camping
	    price: "$89.99"
	    rating: 4.3
	    availability: In Stock
	    image_url: https://example.com/cot.png
	    keywords: [foldable, sleep, camping, cot]
*/
package catalog

import (
	"fmt"
	"strings"
)

// Availability is the stock state of a product.
type Availability int

const (
	// InStock means the product can be ordered.
	InStock Availability = iota
	// OutOfStock means the product is listed but cannot be ordered.
	OutOfStock
)

// String returns the display form used by the storefront.
func (a Availability) String() string {
	switch a {
	case OutOfStock:
		return "Out of Stock"
	default:
		return "In Stock"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Availability) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Availability) UnmarshalText(text []byte) error {
	parsed, err := ParseAvailability(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAvailability accepts the display form ("In Stock") as well as
// snake_case ("in_stock"). An empty string means in stock.
func ParseAvailability(s string) (Availability, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)

	switch norm {
	case "", "in stock", "instock", "available":
		return InStock, nil
	case "out of stock", "outofstock", "unavailable", "sold out":
		return OutOfStock, nil
	default:
		return InStock, fmt.Errorf("unknown availability %q", s)
	}
}

// Product is a single catalog entry. Keywords are lowercased and
// de-duplicated when the catalog is built.
type Product struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Price        string       `json:"price"`
	Rating       float64      `json:"rating"`
	Availability Availability `json:"availability"`
	ImageURL     string       `json:"image_url,omitempty"`
	Keywords     []string     `json:"keywords"`
}

// HasKeyword reports whether kw is an exact member of the keyword set.
func (p Product) HasKeyword(kw string) bool {
	for _, k := range p.Keywords {
		if k == kw {
			return true
		}
	}
	return false
}

// InStock reports whether the product can currently be ordered.
func (p Product) InStock() bool {
	return p.Availability == InStock
}
