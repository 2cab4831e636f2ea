package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/bookreader/internal/catalog"
	"github.com/dgallion1/bookreader/internal/content"
	"github.com/dgallion1/bookreader/internal/parser"
)

// maxDocumentBytes bounds downloads made by the CLI.
const maxDocumentBytes = 20 << 20

type commandContext struct {
	gutendexURL string
	timeout     time.Duration
	json        bool
}

// sourceFlags selects the book a command reads.
type sourceFlags struct {
	file string
	book int
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.file, "file", "f", "", "Local book file (txt, md, html, pdf, docx)")
	cmd.Flags().IntVarP(&s.book, "book", "b", 0, "Project Gutenberg book id")
	cmd.MarkFlagsMutuallyExclusive("file", "book")
	cmd.MarkFlagsOneRequired("file", "book")
}

func (c *commandContext) catalog() *catalog.Client {
	return catalog.NewClient(c.gutendexURL, c.timeout)
}

// loadDocument returns the title and extracted text of the selected book.
func (c *commandContext) loadDocument(ctx context.Context, src sourceFlags) (string, string, error) {
	if src.file != "" {
		p, err := parser.ForFile(src.file, parser.Options{})
		if err != nil {
			return "", "", err
		}
		f, err := os.Open(src.file)
		if err != nil {
			return "", "", err
		}
		defer f.Close()
		doc, err := p.Parse(f, src.file)
		if err != nil {
			return "", "", fmt.Errorf("parse %s: %w", src.file, err)
		}
		return doc.Title, doc.Text, nil
	}

	if src.book <= 0 {
		return "", "", errors.New("book id must be positive")
	}
	cat := c.catalog()
	defer cat.Close()
	book, err := cat.Get(ctx, src.book)
	if err != nil {
		return "", "", err
	}
	u := book.TextURL()
	if u == "" {
		return "", "", fmt.Errorf("book %d has no readable text format", src.book)
	}
	fetcher := content.NewFetcher(c.timeout, maxDocumentBytes)
	defer fetcher.Close()
	text, err := fetcher.Fetch(ctx, u)
	if err != nil {
		return "", "", err
	}
	return book.Title, text, nil
}
