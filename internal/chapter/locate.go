// Package chapter finds chapter boundaries in the raw text of a book.
//
// Headings like "CHAPTER III" usually occur more than once in a Gutenberg
// text: in the table of contents and again at the real chapter start. Every
// occurrence is scored on the text that follows it and the most prose-like
// one wins. The chapter then runs to the next heading of any number.
package chapter

import (
	"fmt"
	"strings"
)

const (
	// MinChapterGap is the minimum distance, in characters, between a chosen
	// heading and the heading that ends its chapter. Closer hits are stray
	// numerals inside the chapter body.
	MinChapterGap = 300
	// DefaultPrefixChars is how much of a headingless document LocateDefault returns.
	DefaultPrefixChars = 10000
)

// Chapter is a located slice of a document.
type Chapter struct {
	Heading  string // Heading that opened the chapter, empty on fallback.
	Start    int    // Offset where the chapter body begins.
	End      int    // Offset where the next heading (or the document) begins.
	Text     string // doc[Start:End] with surrounding whitespace trimmed.
	Score    int
	Fallback bool // No heading was found and Text is a document prefix.
}

// Locate returns the text of the requested chapter.
func Locate(doc string, id Identifier) (Chapter, error) {
	candidates := Rank(doc, ForIdentifier(id))
	if len(candidates) == 0 {
		return Chapter{}, fmt.Errorf("%w: %s", ErrChapterNotFound, id)
	}
	return sliceFrom(doc, candidates[0]), nil
}

// LocateQuery parses query and locates that chapter.
func LocateQuery(doc, query string) (Chapter, error) {
	id, err := ParseIdentifier(query)
	if err != nil {
		return Chapter{}, err
	}
	return Locate(doc, id)
}

// LocateDefault returns the first chapter of doc, used when a book is opened
// without a chapter request. Texts without recognizable headings yield their
// first DefaultPrefixChars characters instead of an error.
func LocateDefault(doc string) Chapter {
	candidates := Rank(doc, FirstChapter())
	if len(candidates) > 0 {
		return sliceFrom(doc, candidates[0])
	}
	prefix := prefixRunes(doc, DefaultPrefixChars)
	return Chapter{
		Start:    0,
		End:      len(prefix),
		Text:     strings.TrimSpace(prefix),
		Fallback: true,
	}
}

func sliceFrom(doc string, c Candidate) Chapter {
	end := nextHeading(doc, c.End)
	return Chapter{
		Heading: c.Text,
		Start:   c.End,
		End:     end,
		Text:    strings.TrimSpace(doc[c.End:end]),
		Score:   c.Score,
	}
}

// nextHeading returns the offset of the first heading of any chapter that
// begins at least MinChapterGap characters after from, or len(doc).
func nextHeading(doc string, from int) int {
	minStart := advanceRunes(doc, from, MinChapterGap)
	next := len(doc)
	for _, m := range anyChapter.findAll(doc[from:], from) {
		if m.start >= minStart && m.start < next {
			next = m.start
		}
	}
	return next
}
