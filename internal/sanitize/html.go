package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// StrictPolicy removes all HTML tags and attributes.
	StrictPolicy = bluemonday.StrictPolicy()

	// UGCPolicy keeps safe inline formatting in markdown bodies.
	UGCPolicy = bluemonday.UGCPolicy()
)

// literals decodes the entities bluemonday emits for plain punctuation.
// &lt; is never decoded, so escaped markup stays inert text.
var literals = strings.NewReplacer("&amp;", "&", "&#39;", "'", "&#34;", `"`, "&gt;", ">")

// Text strips all HTML and trims whitespace. "Tom & Jerry" survives
// unchanged.
// Use for: names, titles, alt text, credits, folders, locations.
func Text(input string) string {
	return strings.TrimSpace(literals.Replace(StrictPolicy.Sanitize(input)))
}

// Markdown removes scripts, iframes and event handlers from a markdown body
// while leaving markdown syntax intact.
func Markdown(input string) string {
	return literals.Replace(UGCPolicy.Sanitize(input))
}

// TextPtr applies Text to an optional field.
func TextPtr(input *string) *string {
	if input == nil {
		return nil
	}
	out := Text(*input)
	return &out
}

// MarkdownPtr applies Markdown to an optional field.
func MarkdownPtr(input *string) *string {
	if input == nil {
		return nil
	}
	out := Markdown(*input)
	return &out
}
