package stylesheet

import "strings"

// Rule is one top-level "selectors { declarations }" block.
type Rule struct {
	SelectorText string
	Selectors    []string
	Body         string
}

// Rules is an ordered list of parsed rules, in source order.
type Rules []Rule

// Parser turns comment-free stylesheet text into rules.
type Parser interface {
	Parse(text string) Rules
}

// BraceParser is a loose brace scanner. It is not a CSS grammar: at-rules
// get no special treatment and a nested "{" inside a body is kept as text,
// so the body ends at the first "}" that follows the opening brace.
type BraceParser struct{}

// Parse scans text for selector runs followed by a braced body. The selector
// text is the run of non-brace characters right before "{".
func (BraceParser) Parse(text string) Rules {
	var rules Rules

	pos := 0
	for pos < len(text) {
		open := strings.IndexByte(text[pos:], '{')
		if open < 0 {
			break
		}
		open += pos

		start := open
		for start > pos && text[start-1] != '{' && text[start-1] != '}' {
			start--
		}
		if start == open {
			pos = open + 1
			continue
		}

		end := strings.IndexByte(text[open+1:], '}')
		if end < 0 {
			break
		}
		end += open + 1
		pos = end + 1

		selectorText := strings.TrimSpace(text[start:open])
		if selectorText == "" {
			continue
		}

		rules = append(rules, Rule{
			SelectorText: selectorText,
			Selectors:    splitSelectors(selectorText),
			Body:         strings.TrimSpace(text[open+1 : end]),
		})
	}

	return rules
}

// Parse runs the default BraceParser.
func Parse(text string) Rules {
	return BraceParser{}.Parse(text)
}

func splitSelectors(selectorText string) []string {
	parts := strings.Split(selectorText, ",")
	selectors := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			selectors = append(selectors, trimmed)
		}
	}
	return selectors
}
