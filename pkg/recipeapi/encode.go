package recipeapi

import (
	"net/url"
	"strings"
)

// encodeComponent percent-encodes s for use as a single path segment, escaping
// reserved characters such as '&', '/' and '?' as well.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
