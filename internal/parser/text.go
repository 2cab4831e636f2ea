package parser

import (
	"io"

	"github.com/dgallion1/bookreader/internal/content"
)

// TextParser handles plain text files, including raw Gutenberg downloads.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text, err := content.Extract(data, "text/plain")
	if err != nil {
		return nil, err
	}
	return &Document{
		Title: titleFromFilename(filename),
		Text:  text,
	}, nil
}
