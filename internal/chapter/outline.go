package chapter

import (
	"sort"
	"strings"
)

// Heading is one entry of a document outline.
type Heading struct {
	Number int    `json:"number"`
	Label  string `json:"label"`
	Start  int    `json:"start"`
	Score  int    `json:"score"`
}

// Outline lists the chapter headings of doc in document order. When a chapter
// number occurs more than once (table of contents, running heads) only its
// best-scoring occurrence is kept.
func Outline(doc string) []Heading {
	best := make(map[int]Heading)
	for _, c := range Rank(doc, anyChapter) {
		id, err := ParseIdentifier(strings.TrimSuffix(c.Text, "."))
		if err != nil || id.Number <= 0 {
			continue
		}
		if _, ok := best[id.Number]; ok {
			continue // Rank is best first.
		}
		best[id.Number] = Heading{
			Number: id.Number,
			Label:  c.Text,
			Start:  c.Start,
			Score:  c.Score,
		}
	}

	out := make([]Heading, 0, len(best))
	for _, h := range best {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}
