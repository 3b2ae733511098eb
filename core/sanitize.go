package core

import "github.com/microcosm-cc/bluemonday"

// policies are safe for concurrent use
var (
	strictPolicy = bluemonday.StrictPolicy()
	ugcPolicy    = bluemonday.UGCPolicy()
)

// SanitizeText strips all markup from user-provided text.
func SanitizeText(s string) string {
	return CleanString(strictPolicy.Sanitize(s))
}

// SanitizeRichText keeps a safe subset of user-generated HTML formatting
// and strips everything else (scripts, event handlers, iframes...).
func SanitizeRichText(s string) string {
	return CleanString(ugcPolicy.Sanitize(s))
}
