package analysis

import (
	"regexp"
	"strings"
)

var (
	boilerplate = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^.*Downloaded from[^\n]*\n?`),
		regexp.MustCompile(`(?im)^.*Appears in \d+ contracts[^\n]*\n?`),
		regexp.MustCompile(`(?is)(?:Employee Signature Date:.*?Title:[ \t]*\d*)+`),
	}
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
	extraBlank    = regexp.MustCompile(`\n{3,}`)
)

// CleanText strips extraction boilerplate and normalises line breaks. Blank
// lines are kept (collapsed to one) because Segment splits on them.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	for _, re := range boilerplate {
		text = re.ReplaceAllString(text, "")
	}
	text = trailingSpace.ReplaceAllString(text, "\n")
	text = extraBlank.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
