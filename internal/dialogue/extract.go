package dialogue

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	asciiAsideRe     = regexp.MustCompile(`\([^)]*[\x{4e00}-\x{9fff}][^)]*\)`)
	fullWidthAsideRe = regexp.MustCompile(`（[^）]*[\x{4e00}-\x{9fff}][^）]*）`)
)

// minSpeakableRunes is the length a speakable segment must exceed before it is voiced.
const minSpeakableRunes = 3

// ExtractSpeakable removes parenthesized Chinese asides, in ASCII or
// full-width brackets, and returns the remaining text trimmed.
//
//	"Hello! (你好！)" -> "Hello!"
//
// Brackets without CJK characters are kept. This is a heuristic and does not
// balance nested brackets.
func ExtractSpeakable(text string) string {
	out := asciiAsideRe.ReplaceAllString(text, "")
	out = fullWidthAsideRe.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

func speakable(segment string) bool {
	return utf8.RuneCountInString(segment) > minSpeakableRunes
}
