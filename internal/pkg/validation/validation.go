package validation

import (
	"regexp"
	"strings"
)

// SS58 account addresses: base58 alphabet (no 0, O, I, l).
var accountKeyRe = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{46,48}$`)

// Uploaded object keys: "<owner>/<property>/<kind>/<file>".
var fileKeyRe = regexp.MustCompile(`^[^/\s]+/[^/\s]+/[A-Za-z_]+/[^/]+$`)

func IsValidAccountKey(key string) bool {
	return accountKeyRe.MatchString(key)
}

// IsValidFileKey reports whether key has the four-segment upload layout and
// no parent-directory segments.
func IsValidFileKey(key string) bool {
	if strings.Contains(key, "..") {
		return false
	}
	return fileKeyRe.MatchString(strings.TrimPrefix(key, "/"))
}
