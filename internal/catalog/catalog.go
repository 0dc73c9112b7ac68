package catalog

import (
	"strings"
	"unicode"
)

// Catalog is an ordered, read-only collection of products. Order is the
// order of the source file and is what search uses to break ties.
type Catalog struct {
	products []Product
	byID     map[string]int
}

// New validates and normalizes products into a Catalog. All problems are
// collected into a *LoadError rather than stopping at the first one.
func New(products []Product) (*Catalog, error) {
	if len(products) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}

	var problems []*ValidationError
	for i, p := range products {
		p, errs := normalizeProduct(i, p)
		if len(errs) > 0 {
			problems = append(problems, errs...)
			continue
		}
		if _, dup := c.byID[p.ID]; dup {
			problems = append(problems, &ValidationError{Index: i, ID: p.ID, Field: "id", Message: "duplicate id"})
			continue
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}

	if len(problems) > 0 {
		return nil, &LoadError{Problems: problems}
	}
	return c, nil
}

// Products returns a copy of the catalog in source order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Get looks up a product by id.
func (c *Catalog) Get(id string) (Product, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[idx], true
}

func normalizeProduct(index int, p Product) (Product, []*ValidationError) {
	var errs []*ValidationError
	fail := func(field, msg string) {
		errs = append(errs, &ValidationError{Index: index, ID: p.ID, Field: field, Message: msg})
	}

	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		p.ID = Slug(p.Name)
	}

	if p.Name == "" {
		fail("name", "required")
	}
	if p.Description == "" {
		fail("description", "required")
	}
	if p.Rating < 0 || p.Rating > 5 {
		fail("rating", "must be between 0 and 5")
	}

	p.Keywords = normalizeKeywords(p.Keywords)
	if len(p.Keywords) == 0 {
		fail("keywords", "at least one keyword is required")
	}

	return p, errs
}

// normalizeKeywords lowercases, trims and de-duplicates keywords while
// keeping their first-seen order.
func normalizeKeywords(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, kw := range in {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

// Slug derives an identifier from a product name: "Portable Camping Cot"
// becomes "portable_camping_cot".
func Slug(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
