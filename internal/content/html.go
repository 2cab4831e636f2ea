package content

import (
	"fmt"
	"io"
	"mime"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// blockElements start and end a paragraph in the extracted text.
var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "ul": true, "ol": true, "dl": true, "dt": true, "dd": true,
	"table": true, "tr": true, "blockquote": true, "pre": true, "hr": true,
}

var (
	spaceRunRe = regexp.MustCompile(`[\s\p{Zs}]+`)
	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

// StripHTML reduces an HTML document to plain text. Script, style and head
// content is dropped, whitespace inside text runs is collapsed, and block
// elements are separated by blank lines so headings stay on their own line.
func StripHTML(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var buf strings.Builder
	inPre := 0

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if inPre > 0 {
				buf.WriteString(n.Data)
			} else {
				buf.WriteString(spaceRunRe.ReplaceAllString(n.Data, " "))
			}
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "head", "noscript", "template":
				return
			case "br":
				buf.WriteString("\n")
				return
			}
		}

		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			buf.WriteString("\n\n")
		}
		if n.Type == html.ElementNode && n.Data == "pre" {
			inPre++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && n.Data == "pre" {
			inPre--
		}
		if block {
			buf.WriteString("\n\n")
		}
	}
	walk(doc)

	lines := strings.Split(buf.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text := blankRunRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text), nil
}

// IsHTML reports whether a body should be treated as HTML, by media type
// first and by its leading markup otherwise.
func IsHTML(contentType string, body []byte) bool {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			switch mt {
			case "text/html", "application/xhtml+xml":
				return true
			case "text/plain":
				return false
			}
		}
	}
	head := body
	if len(head) > 512 {
		head = head[:512]
	}
	lead := strings.ToLower(strings.TrimSpace(string(head)))
	lead = strings.TrimPrefix(lead, "\ufeff")
	return strings.HasPrefix(lead, "<!doctype html") ||
		strings.HasPrefix(lead, "<html") ||
		(strings.HasPrefix(lead, "<?xml") && strings.Contains(lead, "<html"))
}
