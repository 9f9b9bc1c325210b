// Package htmlsanitize guards free-text input fields. Profile fields
// (name, service, location) are plain text in the UI, so anything that
// looks like markup is stripped before it reaches the database.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Strip removes every HTML tag from s and trims the result, leaving
// only the text content.
func Strip(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
