package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyCatalog is returned when a catalog file contains no products.
var ErrEmptyCatalog = errors.New("catalog contains no products")

// ValidationError describes one malformed product entry.
type ValidationError struct {
	Index   int    // position in the products list
	ID      string // product id, if known
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	who := fmt.Sprintf("product #%d", e.Index)
	if e.ID != "" {
		who = fmt.Sprintf("product #%d (%s)", e.Index, e.ID)
	}
	return fmt.Sprintf("%s: %s: %s", who, e.Field, e.Message)
}

// LoadError aggregates every problem found while loading a catalog so the
// operator can fix them in one pass.
type LoadError struct {
	Path     string
	Problems []*ValidationError
}

func (e *LoadError) Error() string {
	var b strings.Builder
	if e.Path != "" {
		fmt.Fprintf(&b, "invalid catalog %s", e.Path)
	} else {
		b.WriteString("invalid catalog")
	}
	fmt.Fprintf(&b, " (%d problem(s))", len(e.Problems))
	for _, p := range e.Problems {
		b.WriteString("\n  - ")
		b.WriteString(p.Error())
	}
	return b.String()
}
