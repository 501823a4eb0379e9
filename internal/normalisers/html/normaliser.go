package html

import (
	"html"
	"regexp"
	"strings"

	"github.com/vittaya051733-boop/tungtong1/internal/normalisers/text"
)

// Pre-compiled regular expressions for HTML parsing performance.
var (
	scriptTag         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag       = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag           = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag            = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements     = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|tbody|thead|section|article)>`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)(\s[^>]*)?>`)
	brTags            = regexp.MustCompile(`(?i)<br\s*/?\s*>`)
	hrTags            = regexp.MustCompile(`(?i)<hr\s*/?\s*>`)
	allTags           = regexp.MustCompile(`<[^>]+>`)
	multiSpaces       = regexp.MustCompile(`[ \t]+`)
)

// Strip reduces an HTML page to plain text. Scripts, styles, the head and
// comments are dropped, block elements become line breaks, any other tag becomes a
// space so adjacent table cells never run together, and entities are decoded.
func Strip(content string) string {
	content = scriptTag.ReplaceAllString(content, " ")
	content = styleTag.ReplaceAllString(content, " ")
	content = noscriptTag.ReplaceAllString(content, " ")
	content = headTag.ReplaceAllString(content, " ")
	content = svgTag.ReplaceAllString(content, " ")
	content = htmlComments.ReplaceAllString(content, " ")

	content = openBlockElements.ReplaceAllString(content, "\n")
	content = blockElements.ReplaceAllString(content, "\n")
	content = brTags.ReplaceAllString(content, "\n")
	content = hrTags.ReplaceAllString(content, "\n")

	content = allTags.ReplaceAllString(content, " ")
	content = html.UnescapeString(content)
	content = strings.ReplaceAll(content, "\u00a0", " ")
	content = multiSpaces.ReplaceAllString(content, " ")

	// Trim each line and remove empty lines
	lines := strings.Split(content, "\n")
	result := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}

// ToText strips markup and canonicalises the result for extraction.
func ToText(content string) string {
	return text.Normalise(Strip(content))
}
