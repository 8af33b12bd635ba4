package voice

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	speechURLPattern  = regexp.MustCompile(`https?://\S+`)
	speechLinkPattern = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	speechMarkup      = strings.NewReplacer("*", " ", "_", " ", "#", " ", "`", " ", "~", " ", "|", " ", "<", " ", ">", " ")
)

// speechText prepares a reply for synthesis. Markdown emphasis, links and
// emoji are dropped so the voice reads only words and sentence punctuation.
func speechText(raw string) string {
	raw = speechLinkPattern.ReplaceAllString(raw, "$1")
	raw = speechURLPattern.ReplaceAllString(raw, " ")
	raw = speechMarkup.Replace(raw)

	var b strings.Builder
	b.Grow(len(raw))
	space := true
	for _, r := range raw {
		switch {
		case unicode.IsSpace(r):
			if !space {
				b.WriteByte(' ')
				space = true
			}
		case unicode.IsControl(r), r == '\u200d', r == '\ufe0f':
		case unicode.In(r, unicode.So, unicode.Sk):
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return strings.TrimSpace(b.String())
}
