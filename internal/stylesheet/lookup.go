package stylesheet

import (
	"regexp"
	"strings"
)

// Exact returns the body of every rule that lists selector among its
// comma-separated selectors. Comparison is case-insensitive after trimming.
// Repeated selectors yield one body per rule.
func (r Rules) Exact(selector string) []string {
	target := strings.ToLower(strings.TrimSpace(selector))

	var bodies []string
	for _, rule := range r {
		for _, candidate := range rule.Selectors {
			if strings.ToLower(strings.TrimSpace(candidate)) == target {
				bodies = append(bodies, rule.Body)
				break
			}
		}
	}
	return bodies
}

// Matching returns the body of every rule whose full selector text matches
// pattern. Use it for descendant, pseudo-class and grouped selectors.
func (r Rules) Matching(pattern *regexp.Regexp) []string {
	if pattern == nil {
		return nil
	}

	var bodies []string
	for _, rule := range r {
		if pattern.MatchString(rule.SelectorText) {
			bodies = append(bodies, rule.Body)
		}
	}
	return bodies
}

// Has reports whether at least one rule lists selector.
func (r Rules) Has(selector string) bool {
	return len(r.Exact(selector)) > 0
}

// SelectorPattern compiles a case-insensitive selector pattern. It panics on
// an invalid expression, so use it for package-level tables only.
func SelectorPattern(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + expr)
}
