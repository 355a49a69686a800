package stylesheet

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// RootFontSize is the px size one rem or em is taken to mean.
const RootFontSize = 16.0

const epsilon = 1e-9

// ValueMatcher accepts or rejects a declaration value. Matchers that look at
// a single component inspect the first whitespace-separated component, so a
// shorthand such as "padding: 12px 1rem" satisfies a check on its first part.
type ValueMatcher interface {
	MatchValue(value string) bool
}

// ValueFunc adapts a plain function to ValueMatcher.
type ValueFunc func(value string) bool

// MatchValue calls f.
func (f ValueFunc) MatchValue(value string) bool { return f(value) }

// Pattern matches when the value starts with text matching expr,
// case-insensitively.
type Pattern struct {
	re *regexp.Regexp
}

// NewPattern compiles expr anchored at the start of the value. It panics on
// an invalid expression.
func NewPattern(expr string) Pattern {
	return Pattern{re: regexp.MustCompile(`(?i)^(?:` + expr + `)`)}
}

// MatchValue implements ValueMatcher.
func (p Pattern) MatchValue(value string) bool {
	return p.re != nil && p.re.MatchString(value)
}

// Keyword matches when the first component equals one of the words.
type Keyword []string

// MatchValue implements ValueMatcher.
func (k Keyword) MatchValue(value string) bool {
	first := firstComponent(value)
	for _, word := range k {
		if strings.EqualFold(first, word) {
			return true
		}
	}
	return false
}

// Length is a window over absolute lengths. Relative units are converted at
// RootFontSize before comparison; a bare zero counts as 0px. When Units is
// set only those units are accepted.
type Length struct {
	MinPx float64
	MaxPx float64
	Units []string
}

// Near accepts lengths within tolerance px of px.
func Near(px, tolerance float64) Length {
	return Length{MinPx: px - tolerance, MaxPx: px + tolerance}
}

// Rem accepts exactly rem, expressed in rem, em, or the equivalent px.
func Rem(rem float64) Length {
	return Near(rem*RootFontSize, 0)
}

// AtLeast accepts any length of px or more.
func AtLeast(px float64) Length {
	return Length{MinPx: px, MaxPx: math.Inf(1)}
}

// InUnits accepts any non-negative length written in one of the units.
func InUnits(units ...string) Length {
	return Length{MinPx: 0, MaxPx: math.Inf(1), Units: units}
}

// MatchValue implements ValueMatcher.
func (l Length) MatchValue(value string) bool {
	number, unit, ok := splitNumber(firstComponent(value))
	if !ok {
		return false
	}
	if len(l.Units) > 0 && !containsFold(l.Units, unit) {
		return false
	}

	px, ok := toPixels(number, unit)
	if !ok {
		return false
	}
	return px >= l.MinPx-epsilon && px <= l.MaxPx+epsilon
}

// Number is a window over unitless numbers, such as line-height.
type Number struct {
	Min float64
	Max float64
	// AnyUnit also accepts a number with a unit, judged on the number alone.
	AnyUnit bool
}

// MatchValue implements ValueMatcher.
func (n Number) MatchValue(value string) bool {
	number, unit, ok := splitNumber(firstComponent(value))
	if !ok || (unit != "" && !n.AnyUnit) {
		return false
	}
	return number >= n.Min-epsilon && number <= n.Max+epsilon
}

var weightKeywords = map[string]float64{
	"normal": 400,
	"bold":   700,
}

// Weight is a font-weight window; "normal" and "bold" map to 400 and 700.
type Weight struct {
	Min float64
	Max float64
}

// MatchValue implements ValueMatcher.
func (w Weight) MatchValue(value string) bool {
	first := strings.ToLower(firstComponent(value))

	weight, ok := weightKeywords[first]
	if !ok {
		number, unit, parsed := splitNumber(first)
		if !parsed || unit != "" {
			return false
		}
		weight = number
	}
	return weight >= w.Min-epsilon && weight <= w.Max+epsilon
}

var namedColors = map[string]string{
	"black":   "#000000",
	"silver":  "#c0c0c0",
	"gray":    "#808080",
	"grey":    "#808080",
	"white":   "#ffffff",
	"maroon":  "#800000",
	"red":     "#ff0000",
	"purple":  "#800080",
	"fuchsia": "#ff00ff",
	"green":   "#008000",
	"lime":    "#00ff00",
	"olive":   "#808000",
	"yellow":  "#ffff00",
	"navy":    "#000080",
	"blue":    "#0000ff",
	"teal":    "#008080",
	"aqua":    "#00ffff",
}

// Color matches a color written as a name, short hex, long hex, or rgb().
type Color string

// MatchValue implements ValueMatcher.
func (c Color) MatchValue(value string) bool {
	want, ok := normalizeColor(string(c))
	if !ok {
		return false
	}
	got, ok := normalizeColor(firstComponent(value))
	return ok && got == want
}

// Tokens matches the leading components of a shorthand one by one. Extra
// trailing components are allowed.
type Tokens []ValueMatcher

// MatchValue implements ValueMatcher.
func (t Tokens) MatchValue(value string) bool {
	components := Components(value)
	if len(components) < len(t) {
		return false
	}
	for i, matcher := range t {
		if !matcher.MatchValue(components[i]) {
			return false
		}
	}
	return true
}

// Components splits a value on top-level whitespace, keeping parenthesised
// groups such as rgba(0, 0, 0, 0.18) together.
func Components(value string) []string {
	var (
		components []string
		current    strings.Builder
		depth      int
	)

	flush := func() {
		if current.Len() > 0 {
			components = append(components, current.String())
			current.Reset()
		}
	}

	lexer := css.NewLexer(parse.NewInputString(value))
	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			flush()
			return components
		case css.CommentToken:
			continue
		case css.FunctionToken, css.LeftParenthesisToken:
			depth++
		case css.RightParenthesisToken:
			if depth > 0 {
				depth--
			}
		case css.WhitespaceToken:
			if depth == 0 {
				flush()
				continue
			}
		}
		current.Write(data)
	}
}

func firstComponent(value string) string {
	components := Components(value)
	if len(components) == 0 {
		return ""
	}
	return components[0]
}

var numberPattern = regexp.MustCompile(`^([+-]?(?:\d+(?:\.\d*)?|\.\d+))([a-zA-Z%]*)$`)

func splitNumber(token string) (float64, string, bool) {
	match := numberPattern.FindStringSubmatch(strings.TrimSpace(token))
	if match == nil {
		return 0, "", false
	}
	number, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, "", false
	}
	return number, strings.ToLower(match[2]), true
}

func toPixels(number float64, unit string) (float64, bool) {
	switch unit {
	case "px":
		return number, true
	case "rem", "em":
		return number * RootFontSize, true
	case "":
		if number == 0 {
			return 0, true
		}
		return 0, false
	default:
		return 0, false
	}
}

var rgbPattern = regexp.MustCompile(`^rgb\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)$`)

func normalizeColor(token string) (string, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if hex, ok := namedColors[token]; ok {
		return hex, true
	}

	if strings.HasPrefix(token, "#") {
		digits := token[1:]
		if !isHex(digits) {
			return "", false
		}
		switch len(digits) {
		case 3:
			return "#" + string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]}), true
		case 6:
			return token, true
		default:
			return "", false
		}
	}

	if match := rgbPattern.FindStringSubmatch(token); match != nil {
		channels := make([]int, 3)
		for i := range channels {
			channel, err := strconv.Atoi(match[i+1])
			if err != nil || channel > 255 {
				return "", false
			}
			channels[i] = channel
		}
		return fmt.Sprintf("#%02x%02x%02x", channels[0], channels[1], channels[2]), true
	}

	return "", false
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(value, target) {
			return true
		}
	}
	return false
}
