package chapter

import (
	"regexp"
	"strconv"
	"strings"
)

// chapterWords are the heading words recognized in front of a chapter number.
// Lowercase "chapter" is left out on purpose: in running prose it is almost
// always a cross reference, not a heading.
var chapterWords = []string{"Chapter", "CHAPTER"}

const (
	anyDecimal = `[0-9]+`
	anyRoman   = `[IVXLCDM]+`
)

// PatternSet is a compiled family of heading patterns. Every pattern carries a
// "head" group spanning the heading text that precedes the chapter body.
type PatternSet struct {
	patterns []*regexp.Regexp
}

var (
	anyChapter   = newPatternSet([]string{anyDecimal, anyRoman}, true)
	firstChapter = newPatternSet([]string{
		"1", "I", "One", "ONE", "First", "FIRST",
	}, false)
)

// ForIdentifier builds the heading patterns for one specific chapter. The
// number matches in decimal, in the caller's Roman form and in the canonical
// Roman form, so "2" finds "Chapter II" and "iv" finds "CHAPTER 4".
func ForIdentifier(id Identifier) PatternSet {
	forms := []string{regexp.QuoteMeta(strconv.Itoa(id.Number))}
	seen := map[string]bool{forms[0]: true}
	for _, f := range []string{id.Roman, ToRoman(id.Number)} {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		forms = append(forms, regexp.QuoteMeta(f))
	}
	return newPatternSet(forms, true)
}

// AnyChapter returns the pattern set matching a heading for any chapter number.
func AnyChapter() PatternSet { return anyChapter }

// FirstChapter returns the pattern set used when no chapter was requested.
func FirstChapter() PatternSet { return firstChapter }

func newPatternSet(forms []string, bareLines bool) PatternSet {
	alt := strings.Join(forms, "|")
	var set PatternSet
	for _, word := range chapterWords {
		set.patterns = append(set.patterns, regexp.MustCompile(
			`(?P<head>\b`+word+`\s+(?:`+alt+`)\.?)(?:[^\p{L}\p{N}]|$)`,
		))
	}
	if bareLines {
		set.patterns = append(set.patterns, regexp.MustCompile(
			`(?m)^[ \t]*(?P<head>(?:`+alt+`)\.?)[ \t]*$`,
		))
	}
	return set
}

// match is a raw heading hit before scoring.
type match struct {
	start, end int
}

// findAll returns every heading hit of every pattern in doc, offset by base.
func (s PatternSet) findAll(doc string, base int) []match {
	var out []match
	for _, re := range s.patterns {
		head := re.SubexpIndex("head")
		for _, m := range re.FindAllStringSubmatchIndex(doc, -1) {
			out = append(out, match{start: base + m[2*head], end: base + m[2*head+1]})
		}
	}
	return out
}
