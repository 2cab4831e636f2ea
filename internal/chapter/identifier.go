package chapter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrInvalidIdentifier is returned when a chapter query cannot be parsed.
	ErrInvalidIdentifier = errors.New("invalid chapter identifier")
	// ErrChapterNotFound is returned when no heading for the requested chapter exists.
	ErrChapterNotFound = errors.New("chapter not found")
)

// Identifier is a parsed chapter query such as "3", "III" or "Chapter III".
type Identifier struct {
	Number int
	Roman  string // Uppercased Roman form as written by the caller, empty for decimal input.
}

func (id Identifier) String() string {
	if id.Roman != "" {
		return "Chapter " + id.Roman
	}
	return "Chapter " + strconv.Itoa(id.Number)
}

var (
	chapterPrefixRe = regexp.MustCompile(`(?i)^\s*chapter\s*`)
	digitsRe        = regexp.MustCompile(`^[0-9]+$`)
)

var romanValues = map[byte]int{
	'I': 1,
	'V': 5,
	'X': 10,
	'L': 50,
	'C': 100,
	'D': 500,
	'M': 1000,
}

// ParseIdentifier parses a user-supplied chapter identifier. A leading
// "chapter" word is optional and matching is case-insensitive.
func ParseIdentifier(input string) (Identifier, error) {
	token := strings.TrimSpace(chapterPrefixRe.ReplaceAllString(input, ""))
	if token == "" {
		return Identifier{}, fmt.Errorf("%w: %q is empty", ErrInvalidIdentifier, input)
	}

	if digitsRe.MatchString(token) {
		n, err := strconv.Atoi(token)
		if err != nil {
			return Identifier{}, fmt.Errorf("%w: %q: %v", ErrInvalidIdentifier, input, err)
		}
		return Identifier{Number: n}, nil
	}

	roman := strings.ToUpper(token)
	n, err := parseRoman(roman)
	if err != nil {
		return Identifier{}, fmt.Errorf("%w: %q: %v", ErrInvalidIdentifier, input, err)
	}
	return Identifier{Number: n, Roman: roman}, nil
}

// parseRoman sums symbol values left to right, subtracting a symbol that is
// smaller than its successor. Non-canonical forms such as "IIII" are accepted.
func parseRoman(s string) (int, error) {
	total := 0
	for i := 0; i < len(s); i++ {
		v, ok := romanValues[s[i]]
		if !ok {
			return 0, fmt.Errorf("unexpected character %q", s[i])
		}
		if i+1 < len(s) {
			if next, ok := romanValues[s[i+1]]; ok && v < next {
				total -= v
				continue
			}
		}
		total += v
	}
	return total, nil
}

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// ToRoman returns the canonical Roman numeral for n, or "" when n is outside 1..3999.
func ToRoman(n int) string {
	if n <= 0 || n >= 4000 {
		return ""
	}
	var sb strings.Builder
	for _, r := range romanTable {
		for n >= r.value {
			sb.WriteString(r.symbol)
			n -= r.value
		}
	}
	return sb.String()
}
