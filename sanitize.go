package polyglot

import "strings"

// SanitizeHeader rewrites every literal "[]." sequence to "-". The result is
// the cache key for the header and the input of its preference chain.
func SanitizeHeader(header string) string {
	return strings.ReplaceAll(header, "[].", "-")
}
