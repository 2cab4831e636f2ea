package catalog

import (
	"strings"
)

// readablePrefixes lists the media types a Document can be built from, best first.
var readablePrefixes = []string{
	"text/plain; charset=utf-8",
	"text/plain; charset=us-ascii",
	"text/plain",
	"text/html",
}

// TextURL returns the download URL of the best readable format, or "" when
// the book has none. Zipped variants are skipped.
func (b *Book) TextURL() string {
	for _, prefix := range readablePrefixes {
		best := ""
		for mt, u := range b.Formats {
			if !strings.HasPrefix(strings.ToLower(mt), prefix) || strings.HasSuffix(strings.ToLower(u), ".zip") {
				continue
			}
			// Map order is random; pick deterministically.
			if best == "" || u < best {
				best = u
			}
		}
		if best != "" {
			return best
		}
	}
	return ""
}

// AuthorNames returns the names of the book's authors.
func (b *Book) AuthorNames() []string {
	names := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		names = append(names, a.Name)
	}
	return names
}
