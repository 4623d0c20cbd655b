package utils

import (
	"errors"
	"net/url"
	"strings"
)

var ErrQueryRequired = errors.New("query is required")

// SanitizeInput removes dangerous characters from user input
func SanitizeInput(input string) string {
	// Trim whitespace
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}

// ValidateQuery checks if a solution query is usable
func ValidateQuery(query string) error {
	if query == "" {
		return ErrQueryRequired
	}
	return nil
}

var uriComponentUnescapes = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent escapes s like the browser's encodeURIComponent: only
// letters, digits and -_.!~*'() survive unescaped.
func EncodeURIComponent(s string) string {
	return uriComponentUnescapes.Replace(url.QueryEscape(s))
}
