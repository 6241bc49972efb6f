package marketplace

import (
	"strings"
	"unicode"

	"estate-backend/internal/domain"

	"golang.org/x/text/unicode/norm"
)

// Normalize folds a classification value for comparison: NFKC, lower case,
// single spaces, trimmed. Diacritics are kept ("São" stays "são").
func Normalize(v interface{}) string {
	s := norm.NFKC.String(domain.Stringify(v))
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// TypeKey is Normalize with every non-alphanumeric rune removed, so
// "Single-Family" and "single family" compare equal.
func TypeKey(v interface{}) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, Normalize(v))
}
