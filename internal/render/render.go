// Package render turns chapter text and synopsis markdown into HTML.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
)

// Raw HTML in the source is omitted by goldmark's default renderer.
var md = goldmark.New()

// MarkdownHTML renders markdown such as a model-written synopsis.
func MarkdownHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// ChapterHTML renders plain chapter prose. Blank lines separate paragraphs and
// Gutenberg's _underscore_ italics become emphasis; every other markdown
// construct is escaped so prose is never read as markup.
func ChapterHTML(text string) (string, error) {
	return MarkdownHTML(escapeProse(text))
}

func escapeProse(text string) string {
	var sb strings.Builder
	sb.Grow(len(text) + len(text)/8)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, r := range line {
			if r < 0x80 && r != '_' && isASCIIPunct(byte(r)) {
				sb.WriteByte('\\')
			}
			sb.WriteRune(r)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func isASCIIPunct(c byte) bool {
	return (c >= '!' && c <= '/') || (c >= ':' && c <= '@') || (c >= '[' && c <= '`') || (c >= '{' && c <= '~')
}
