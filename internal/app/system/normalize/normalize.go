// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Name trims surrounding whitespace and collapses interior runs of
// whitespace to single spaces. Use for titles and display names.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// QueryParam trims a form or query value. Empty-after-trim means the
// field was not meaningfully supplied.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
