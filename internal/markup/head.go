// Package markup inspects the HTML entry file of a lab submission.
package markup

import (
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

var (
	headPattern  = regexp.MustCompile(`(?i)<head\b[^>]*>([\s\S]*?)</head>`)
	linkSelector = cascadia.MustCompile("link[href]")
)

// Head returns the inner markup of the first <head> element. The second
// result is false when the document has no head or the head is empty.
// Whitespace alone still counts as content.
func Head(document string) (string, bool) {
	match := headPattern.FindStringSubmatch(document)
	if match == nil {
		return "", false
	}
	return match[1], match[1] != ""
}

// LinksStylesheet reports whether head contains a <link rel="stylesheet">
// whose href names the stylesheet, optionally prefixed with "./".
// Attribute order and quoting style do not matter.
func LinksStylesheet(head, name string) bool {
	if strings.TrimSpace(head) == "" || name == "" {
		return false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><head>" + head + "</head></html>"))
	if err != nil {
		return false
	}

	found := false
	doc.FindMatcher(linkSelector).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		rel, _ := link.Attr("rel")
		href, _ := link.Attr("href")
		if strings.EqualFold(strings.TrimSpace(rel), "stylesheet") && hrefNames(href, name) {
			found = true
			return false
		}
		return true
	})

	return found
}

func hrefNames(href, name string) bool {
	href = strings.TrimSpace(href)
	href = strings.TrimPrefix(href, "./")
	if href == "" || strings.Contains(href, "/") {
		return false
	}
	return strings.EqualFold(href, path.Base(name))
}
