// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"
)

// policy allows the formatting users produce in posts and documents
// (paragraphs, emphasis, lists, links) and strips everything that can
// execute.
var policy = bluemonday.UGCPolicy()

// Sanitize returns s with unsafe HTML removed.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// SanitizeHTML sanitizes and marks the result safe for template
// interpolation. Only use on content that has no other path into a
// template.
func SanitizeHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}
