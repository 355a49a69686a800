package stylesheet

import (
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

const importantSuffix = "!important"

// Declaration is one "property: value" pair from a rule body.
type Declaration struct {
	Property string
	Value    string
}

// Declarations reads a body as an inline declaration list. Properties are
// lower-cased, values are trimmed and lose a trailing !important. Fragments
// the parser rejects are skipped, so a malformed body simply yields fewer
// declarations.
func Declarations(body string) []Declaration {
	var declarations []Declaration

	parser := css.NewParser(parse.NewInputString(body), true)
	for {
		gt, _, data := parser.Next()

		var property, value string
		switch gt {
		case css.ErrorGrammar:
			if parser.HasParseError() {
				continue
			}
			return declarations
		case css.DeclarationGrammar:
			property = string(data)
			value = tokenText(parser.Values())
		case css.CustomPropertyGrammar:
			property = strings.ToLower(string(data))
			value = tokenText(parser.Values())
		default:
			continue
		}

		property = strings.TrimSpace(property)
		if property == "" {
			continue
		}
		value = strings.TrimSpace(value)
		if strings.HasSuffix(strings.ToLower(value), importantSuffix) {
			value = strings.TrimSpace(value[:len(value)-len(importantSuffix)])
		}
		declarations = append(declarations, Declaration{Property: property, Value: value})
	}
}

func tokenText(tokens []css.Token) string {
	var sb strings.Builder
	for _, token := range tokens {
		sb.Write(token.Data)
	}
	return sb.String()
}

// Condition is something a single declaration body either satisfies or not.
type Condition interface {
	Holds(body string) bool
}

// Requirement holds when a declaration uses one of Properties and its value
// is accepted by one of Values. With no Values only the property has to be
// present.
type Requirement struct {
	Properties []string
	Values     []ValueMatcher
}

// Property starts a requirement on any of the given property names.
func Property(names ...string) Requirement {
	return Requirement{Properties: names}
}

// Value returns a copy of r that also requires one of the matchers to accept
// the declaration value.
func (r Requirement) Value(matchers ...ValueMatcher) Requirement {
	values := make([]ValueMatcher, 0, len(r.Values)+len(matchers))
	values = append(values, r.Values...)
	values = append(values, matchers...)
	return Requirement{Properties: r.Properties, Values: values}
}

// Holds implements Condition.
func (r Requirement) Holds(body string) bool {
	if strings.TrimSpace(body) == "" {
		return false
	}

	for _, decl := range Declarations(body) {
		if !containsFold(r.Properties, decl.Property) {
			continue
		}
		if len(r.Values) == 0 {
			return true
		}
		for _, matcher := range r.Values {
			if matcher.MatchValue(decl.Value) {
				return true
			}
		}
	}
	return false
}

// AllOf holds when every condition holds in the same body.
type AllOf []Condition

// Holds implements Condition.
func (a AllOf) Holds(body string) bool {
	if len(a) == 0 {
		return false
	}
	for _, condition := range a {
		if !condition.Holds(body) {
			return false
		}
	}
	return true
}

// AnyOf holds when at least one condition holds.
type AnyOf []Condition

// Holds implements Condition.
func (a AnyOf) Holds(body string) bool {
	for _, condition := range a {
		if condition.Holds(body) {
			return true
		}
	}
	return false
}

// AnyBody reports whether some body satisfies condition. Repeated selectors
// are legal, so one satisfying occurrence is enough.
func AnyBody(bodies []string, condition Condition) bool {
	for _, body := range bodies {
		if condition.Holds(body) {
			return true
		}
	}
	return false
}
