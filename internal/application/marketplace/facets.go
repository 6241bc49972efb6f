package marketplace

import (
	"strings"

	"estate-backend/internal/domain"
)

// CityOption is one entry of the city filter dropdown.
type CityOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Suggestion is one search-as-you-type entry.
type Suggestion struct {
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	ListingID string `json:"listingId"`
}

const subtitleSep = " • "

// CityOptions dedupes cities of non-expired listings by normalized value,
// keeping the label of the first listing seen.
func CityOptions(listings []domain.DecoratedListing) []CityOption {
	seen := make(map[string]struct{})
	out := make([]CityOption, 0)
	for _, l := range listings {
		if l.IsExpired {
			continue
		}
		label := strings.TrimSpace(ParseMetadata(l.Metadata).String("address_town_city"))
		if label == "" {
			continue
		}
		value := Normalize(label)
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, CityOption{Name: label, Value: value})
	}
	return out
}

// Suggestions builds deduped search suggestions for the given listings.
func Suggestions(listings []domain.DecoratedListing) []Suggestion {
	seen := make(map[string]struct{})
	out := make([]Suggestion, 0)
	for _, l := range listings {
		f := ExtractFields(l, ParseMetadata(l.Metadata))
		key := strings.ToLower(f.PropertyName) + "|" + strings.ToLower(f.CityLabel) + "|" + f.ListingID
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		title := f.PropertyName
		if title == "" {
			title = f.ListingID
		}
		var parts []string
		for _, p := range []string{f.CityLabel, f.Postcode} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		out = append(out, Suggestion{
			Title:     title,
			Subtitle:  strings.Join(parts, subtitleSep),
			ListingID: f.ListingID,
		})
	}
	return out
}
