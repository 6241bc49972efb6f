package marketplace

import (
	"strings"

	"estate-backend/internal/domain"
)

const allValues = "all"

// FilterQuery is the set of user filters. Blank fields are not applied.
type FilterQuery struct {
	Q                string
	PropertyType     string
	Country          string
	City             string
	PropertyPriceMin *float64
	PropertyPriceMax *float64
	TokenPriceMin    *float64
	TokenPriceMax    *float64
}

// ParseFilterQuery reads filters from flat request parameters.
func ParseFilterQuery(params map[string]string) FilterQuery {
	q := FilterQuery{
		Q:            Normalize(params["q"]),
		PropertyType: Normalize(params["propertyType"]),
		Country:      Normalize(params["country"]),
		City:         Normalize(params["city"]),
	}
	q.PropertyPriceMin, q.PropertyPriceMax = ParseRange(params["propertyPrice"])
	q.TokenPriceMin, q.TokenPriceMax = ParseRange(params["tokenPrice"])
	return q
}

func active(v string) bool {
	return v != "" && v != allValues
}

// Matches reports whether a listing passes every filter in q. Missing data
// never excludes a listing on a range filter; a panic while evaluating counts
// as a match.
func Matches(l domain.DecoratedListing, q FilterQuery) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = true
		}
	}()
	return MatchFields(ExtractFields(l, ParseMetadata(l.Metadata)), q)
}

// MatchFields evaluates q against already extracted fields.
func MatchFields(f Fields, q FilterQuery) bool {
	if active(q.PropertyType) && TypeKey(f.PropertyType) != TypeKey(q.PropertyType) {
		return false
	}
	if active(q.Country) && f.Country != "" && !strings.Contains(f.Country, q.Country) {
		return false
	}
	if active(q.City) && !strings.Contains(f.City, q.City) {
		return false
	}
	if !inRange(f.PropertyPrice, q.PropertyPriceMin, q.PropertyPriceMax) {
		return false
	}
	if !inRange(f.TokenPrice, q.TokenPriceMin, q.TokenPriceMax) {
		return false
	}
	if q.Q != "" && !strings.Contains(haystack(f), q.Q) {
		return false
	}
	return true
}

func inRange(v, min, max *float64) bool {
	if v == nil {
		return true
	}
	if min != nil && *v < *min {
		return false
	}
	if max != nil && *v > *max {
		return false
	}
	return true
}

func haystack(f Fields) string {
	return strings.ToLower(strings.Join([]string{f.ListingID, f.PropertyName, f.Address(), f.PropertyType}, " "))
}

// Filter keeps the non-expired listings that match q, preserving order.
func Filter(listings []domain.DecoratedListing, q FilterQuery) []domain.DecoratedListing {
	out := make([]domain.DecoratedListing, 0, len(listings))
	for _, l := range listings {
		if l.IsExpired {
			continue
		}
		if Matches(l, q) {
			out = append(out, l)
		}
	}
	return out
}
