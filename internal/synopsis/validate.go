package synopsis

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrInvalidSynopsis is returned when model output fails validation.
var ErrInvalidSynopsis = errors.New("invalid synopsis")

const (
	minSynopsisChars = 20
	maxSynopsisChars = 4000
)

// Book excerpts are untrusted input; output that talks about its own
// instructions means the excerpt steered the model.
var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(the\s+)?(previous|all|above)\s+instructions|system\s*prompt|` +
		`new\s+instructions|as\s+an\s+ai\s+(language\s+)?model)`,
)

// Validate checks model output before it is shown to a reader.
func Validate(text string) error {
	text = strings.TrimSpace(text)
	n := utf8.RuneCountInString(text)
	if n < minSynopsisChars {
		return fmt.Errorf("%w: too short (%d characters)", ErrInvalidSynopsis, n)
	}
	if n > maxSynopsisChars {
		return fmt.Errorf("%w: too long (%d characters)", ErrInvalidSynopsis, n)
	}
	if m := injectionPattern.FindString(text); m != "" {
		return fmt.Errorf("%w: contains %q", ErrInvalidSynopsis, m)
	}
	return nil
}
