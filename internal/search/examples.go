package search

// ExampleQueries are the suggestion prompts shown to new visitors. Each one
// is written against the built-in catalog.
var ExampleQueries = []string{
	"foldable thing people sleep on during camping",
	"bottle which filters river water",
	"light that goes on your head for camping",
	"portable chair for outdoor use",
	"waterproof shelter for camping",
}

// Examples returns a copy of ExampleQueries.
func Examples() []string {
	out := make([]string, len(ExampleQueries))
	copy(out, ExampleQueries)
	return out
}
