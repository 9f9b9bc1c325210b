// Package normalize shapes raw user input before it reaches the stores.
package normalize

import "strings"

// Name collapses internal runs of whitespace and trims the ends, so
// display names compare and fold consistently.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
