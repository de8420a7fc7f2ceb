package respond

import (
	"regexp"
	"strings"
)

var (
	headingMarkers = regexp.MustCompile(`(?m)^\s*#{1,6}\s*`)
	boldItalic     = regexp.MustCompile(`(?s)\*{1,2}(.+?)\*{1,2}`)
	inlineCode     = regexp.MustCompile("(?s)`(.+?)`")
	bulletMarkers  = regexp.MustCompile(`(?m)^\s*[-*\x{2022}]\s+`)
	extraNewlines  = regexp.MustCompile(`\n{3,}`)
)

// Sanitize removes markdown artifacts the model tends to emit: heading
// markers, bold/italic and inline-code wrapping, irregular bullet
// characters, and runs of blank lines. Idempotent.
func Sanitize(text string) string {
	if text == "" {
		return text
	}

	text = headingMarkers.ReplaceAllString(text, "")
	text = boldItalic.ReplaceAllString(text, "$1")
	text = inlineCode.ReplaceAllString(text, "$1")
	text = bulletMarkers.ReplaceAllString(text, "- ")
	text = extraNewlines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
