package stylesheet

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

var blockCommentPattern = regexp.MustCompile(`/\*[\s\S]*?\*/`)

// StripComments removes every /* ... */ comment from text so commented-out
// examples never count as evidence. All other content is kept in its
// original order. An unterminated "/*" is not a comment and stays in place.
func StripComments(text string) string {
	if text == "" {
		return text
	}

	lexer := css.NewLexer(parse.NewInputString(text))

	var sb strings.Builder
	sb.Grow(len(text))

	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			if lexer.Err() != io.EOF {
				return blockCommentPattern.ReplaceAllString(text, "")
			}
			return sb.String()
		case css.CommentToken:
			if len(data) >= 4 && bytes.HasSuffix(data, []byte("*/")) {
				continue
			}
		}
		sb.Write(data)
	}
}
