package content

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Gutenberg wraps every book in license text delimited by marker lines such as
// "*** START OF THE PROJECT GUTENBERG EBOOK PRIDE AND PREJUDICE ***".
var (
	startMarkerRe = regexp.MustCompile(`(?im)^.*\*\*\*\s*START OF.*PROJECT GUTENBERG E-?BOOK.*$`)
	endMarkerRe   = regexp.MustCompile(`(?im)^.*\*\*\*\s*END OF.*PROJECT GUTENBERG E-?BOOK.*$`)
)

// TrimBoilerplate removes everything up to and including the start marker
// line and everything from the end marker line on. A missing marker leaves
// that side of the text untouched.
func TrimBoilerplate(text string) string {
	if loc := startMarkerRe.FindStringIndex(text); loc != nil {
		text = text[loc[1]:]
	}
	if loc := endMarkerRe.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}
	return strings.TrimSpace(text)
}

// Normalize converts line endings to LF, drops a byte order mark and puts
// the text in Unicode NFC so headings compare byte for byte.
func Normalize(text string) string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return norm.NFC.String(text)
}
