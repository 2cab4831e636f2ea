package chapter

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Scoring constants. They were tuned by hand against Gutenberg texts and are
// kept as-is until a regression corpus says otherwise.
const (
	ProbeChars       = 1000 // Characters after a heading examined for prose.
	ScoredLines      = 15   // Lines of the probe that earn length points.
	LongLine         = 60   // Lines longer than this earn LongLinePoints.
	MediumLine       = 30   // Lines longer than this earn MediumLinePoints.
	LongLinePoints   = 2
	MediumLinePoints = 1
	ParagraphPoints  = 5 // More than one paragraph break in the probe.
	SentencePoints   = 3 // Sentence end followed by a capitalized word.
)

var (
	paragraphBreakRe = regexp.MustCompile(`\n[ \t]*\n\s*`)
	sentenceRe       = regexp.MustCompile(`[.!?]\s+[A-Z]`)
)

// Candidate is one heading occurrence with its prose-likelihood score.
type Candidate struct {
	Start int    `json:"start"` // Offset of the heading in the document.
	End   int    `json:"end"`   // Offset just after the heading; the chapter body starts here.
	Text  string `json:"text"`  // Heading as matched, e.g. "CHAPTER III.".
	Score int    `json:"score"`
}

// Rank finds every heading matched by set in doc and scores each one on the
// text that follows it. Candidates are ordered by score, best first; equal
// scores keep document order.
func Rank(doc string, set PatternSet) []Candidate {
	matches := set.findAll(doc, 0)
	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	candidates := make([]Candidate, 0, len(matches))
	seen := make(map[int]bool, len(matches))
	for _, m := range matches {
		if seen[m.start] {
			continue
		}
		seen[m.start] = true
		candidates = append(candidates, Candidate{
			Start: m.start,
			End:   m.end,
			Text:  doc[m.start:m.end],
			Score: Score(prefixRunes(doc[m.end:], ProbeChars)),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

// Score rates how much a probe window looks like continuous prose rather
// than a list of short entries such as a table of contents.
func Score(probe string) int {
	score := 0

	lines := strings.Split(probe, "\n")
	if len(lines) > ScoredLines {
		lines = lines[:ScoredLines]
	}
	for _, line := range lines {
		n := utf8.RuneCountInString(strings.TrimSpace(line))
		switch {
		case n > LongLine:
			score += LongLinePoints
		case n > MediumLine:
			score += MediumLinePoints
		}
	}

	if len(paragraphBreakRe.FindAllStringIndex(probe, 2)) > 1 {
		score += ParagraphPoints
	}
	if sentenceRe.MatchString(probe) {
		score += SentencePoints
	}
	return score
}

// prefixRunes returns at most n characters from the start of s.
func prefixRunes(s string, n int) string {
	return s[:advanceRunes(s, 0, n)]
}

// advanceRunes returns the byte offset n characters after from, capped at len(s).
func advanceRunes(s string, from, n int) int {
	i := from
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}
