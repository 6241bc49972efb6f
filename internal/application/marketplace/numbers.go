package marketplace

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"estate-backend/internal/domain"
)

var (
	looseNumberStrip   = regexp.MustCompile(`[^0-9.\-]`)
	displayNumberStrip = regexp.MustCompile(`[^0-9.,\-]`)
	nonDigits          = regexp.MustCompile(`[^0-9]`)
)

const (
	microUnit         = 1_000_000
	displayPriceLimit = 1e6
	microDigitsMin    = 6
)

// parseNumber parses s as a decimal number. Overflow yields ±Inf like a
// browser would; anything unparseable reports false.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return n, true
		}
		return 0, false
	}
	return n, true
}

func finite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}

// ExtractNumber strips everything except digits, '.' and '-' and parses the
// rest. "€ 300,000" -> 300000. nil, empty or unparseable input -> nil.
func ExtractNumber(v interface{}) *float64 {
	if v == nil {
		return nil
	}
	cleaned := looseNumberStrip.ReplaceAllString(domain.Stringify(v), "")
	n, ok := parseNumber(cleaned)
	if !ok || !finite(n) {
		return nil
	}
	return &n
}

// ParseTokenPriceLikeDisplayed reads a token price that is either a display
// string ("$1,234.50") or an on-chain fixed-point integer in micro units
// ("150000000" -> 150).
func ParseTokenPriceLikeDisplayed(raw interface{}) *float64 {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(domain.Stringify(raw))
	if s == "" {
		return nil
	}

	normalized := strings.ReplaceAll(displayNumberStrip.ReplaceAllString(s, ""), ",", "")
	n, parsed := parseNumber(normalized)
	if parsed && finite(n) && n > 0 && n < displayPriceLimit {
		return &n
	}

	if digits := nonDigits.ReplaceAllString(s, ""); len(digits) >= microDigitsMin {
		if micro, ok := parseNumber(digits); ok && finite(micro) {
			scaled := micro / microUnit
			if finite(scaled) {
				return &scaled
			}
			return nil
		}
	}
	if parsed && finite(n) {
		return &n
	}
	return nil
}

// ParseRange reads a "min-max" query value. Either side may be blank.
func ParseRange(v string) (min, max *float64) {
	if v == "" {
		return nil, nil
	}
	parts := strings.Split(v, "-")
	a, b := parts[0], ""
	if len(parts) > 1 {
		b = parts[1]
	}
	return ExtractNumber(a), ExtractNumber(b)
}
