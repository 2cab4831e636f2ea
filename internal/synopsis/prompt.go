package synopsis

import (
	"fmt"
	"strings"
)

// ExcerptTokenBudget caps the share of the prompt spent on book text.
const ExcerptTokenBudget = 6000

const SystemPrompt = `You write synopses of public-domain books for readers deciding what to read next.`

const instructions = `Write a synopsis of the book below in markdown.

Rules:
- Start with one paragraph on the premise and setting
- Follow with a short bulleted list of the main characters, if any
- Do not reveal the ending
- Stay under 250 words
- Base the synopsis on the excerpt and your knowledge of the work; say so if the excerpt is all you have

Respond with ONLY the markdown, no other text.`

// BuildPrompt renders the user prompt for req, cutting the excerpt so it fits
// within budget estimated tokens.
func BuildPrompt(req Request, budget int) string {
	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n---\n")
	sb.WriteString(fmt.Sprintf("Title: %q\n", req.Title))
	if len(req.Authors) > 0 {
		sb.WriteString("Authors: ")
		sb.WriteString(strings.Join(req.Authors, "; "))
		sb.WriteString("\n")
	}
	sb.WriteString("---\n")
	sb.WriteString(TruncateTokens(req.Excerpt, budget))
	return sb.String()
}

// EstimateTokens gives a rough token count at about 1.33 tokens per word.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// TruncateTokens returns the longest whole-word prefix of text whose estimated
// token count is within budget. Line breaks inside the prefix are kept.
func TruncateTokens(text string, budget int) string {
	if budget <= 0 {
		return ""
	}
	if EstimateTokens(text) <= budget {
		return text
	}
	maxWords := int(float64(budget) / 1.33)

	words := 0
	inWord := false
	for i, r := range text {
		space := r == ' ' || r == '\n' || r == '\t' || r == '\r'
		if !space && !inWord {
			if words == maxWords {
				return strings.TrimSpace(text[:i])
			}
			words++
		}
		inWord = !space
	}
	return text
}
