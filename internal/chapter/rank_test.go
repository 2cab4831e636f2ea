package chapter

import (
	"strings"
	"testing"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		probe string
		want  int
	}{
		{"empty", "", 0},
		{"long line", strings.Repeat("a", 61), LongLinePoints},
		{"sixty is medium", strings.Repeat("a", 60), MediumLinePoints},
		{"thirty one is medium", strings.Repeat("a", 31), MediumLinePoints},
		{"thirty is short", strings.Repeat("a", 30), 0},
		{"indent ignored", "          " + strings.Repeat("a", 30), 0},
		{"single paragraph break", "one\n\ntwo", 0},
		{"paragraphs and sentence", "Short.\n\nAnother.\n\nThird.", ParagraphPoints + SentencePoints},
		{"blank run is one break", "one\n\n\n\ntwo", 0},
		{"only fifteen lines count", strings.Repeat(strings.Repeat("a", 70)+"\n", 20), ScoredLines * LongLinePoints},
	}
	for _, tt := range tests {
		if got := Score(tt.probe); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, got)
		}
	}
}

func TestRank_TableOfContentsScoresLower(t *testing.T) {
	doc := bookWithContents(20, 3)
	candidates := Rank(doc, ForIdentifier(Identifier{Number: 2}))
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	real := strings.LastIndex(doc, "Chapter II\n")
	if candidates[0].Start != real {
		t.Errorf("expected best candidate at %d, got %d", real, candidates[0].Start)
	}
	if candidates[0].Score <= candidates[1].Score {
		t.Errorf("expected prose heading to outscore contents entry, got %d vs %d",
			candidates[0].Score, candidates[1].Score)
	}
	if candidates[0].Text != "Chapter II" {
		t.Errorf("expected heading text %q, got %q", "Chapter II", candidates[0].Text)
	}
}

func TestRank_TiesKeepDocumentOrder(t *testing.T) {
	block := "Chapter 7\n\n" + prose(5) + "\n\n"
	doc := block + block

	candidates := Rank(doc, ForIdentifier(Identifier{Number: 7}))
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Score != candidates[1].Score {
		t.Fatalf("expected equal scores, got %d and %d", candidates[0].Score, candidates[1].Score)
	}
	if candidates[0].Start != 0 {
		t.Errorf("expected first occurrence to rank first, got start %d", candidates[0].Start)
	}
}

func TestRank_NoMatches(t *testing.T) {
	if got := Rank(prose(3), ForIdentifier(Identifier{Number: 4})); len(got) != 0 {
		t.Errorf("expected no candidates, got %d", len(got))
	}
}

func TestRank_HeadingFormsAndBoundaries(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		id   Identifier
		want int
	}{
		{"decimal with period", "CHAPTER 3. The Storm\n", Identifier{Number: 3}, 1},
		{"roman for decimal query", "CHAPTER III\n", Identifier{Number: 3}, 1},
		{"decimal for roman query", "Chapter 3\n", Identifier{Number: 3, Roman: "III"}, 1},
		{"bare numeral line", "\n  III.  \n", Identifier{Number: 3}, 1},
		{"bare decimal line", "\n3\n", Identifier{Number: 3}, 1},
		{"longer number rejected", "Chapter 30\n", Identifier{Number: 3}, 0},
		{"longer numeral rejected", "Chapter IIII\n", Identifier{Number: 3}, 0},
		{"numeral followed by letter", "Chapter IIIrd\n", Identifier{Number: 3}, 0},
		{"lowercase word ignored", "see chapter 3 below\n", Identifier{Number: 3}, 0},
		{"inline numeral ignored", "on the 3rd of March\n", Identifier{Number: 3}, 0},
		{"heading at end of document", "Chapter 3", Identifier{Number: 3}, 1},
	}
	for _, tt := range tests {
		got := Rank(tt.doc, ForIdentifier(tt.id))
		if len(got) != tt.want {
			t.Errorf("%s: expected %d candidates, got %d", tt.name, tt.want, len(got))
		}
	}
}
