package marketplace

import (
	"strings"

	"estate-backend/internal/domain"
)

// NumberRule extracts one candidate for a numeric field. Rules are tried in
// order and the first non-nil result wins.
type NumberRule struct {
	Name    string
	Extract func(details domain.ListingDetails, meta Metadata) *float64
}

// TextRule extracts one normalized candidate for a classification field. The
// first non-empty result wins.
type TextRule struct {
	Name    string
	Extract func(details domain.ListingDetails, meta Metadata) string
}

// TokenPriceRules is the per-token price priority order.
var TokenPriceRules = []NumberRule{
	{Name: "listingDetails.tokenPrice", Extract: fromDetail("tokenPrice", ParseTokenPriceLikeDisplayed)},
	{Name: "listingDetails.pricePerToken", Extract: fromDetail("pricePerToken", ParseTokenPriceLikeDisplayed)},
	{Name: "metadata.price_per_token", Extract: fromMeta(ParseTokenPriceLikeDisplayed, "price_per_token")},
	{Name: "metadata.token_price", Extract: fromMeta(ParseTokenPriceLikeDisplayed, "token_price")},
	{Name: "metadata.property_price/number_of_tokens", Extract: pricePerTokenFromValuation},
}

// PropertyPriceRules is the whole-property valuation priority order. The
// metadata rule takes the first present key of the three, then parses it.
var PropertyPriceRules = []NumberRule{
	{Name: "metadata.property_price|price|valuation", Extract: fromMeta(ExtractNumber, "property_price", "price", "valuation")},
	{Name: "listingDetails.propertyPrice", Extract: fromDetail("propertyPrice", ExtractNumber)},
}

// PropertyTypeRules is the property type priority order.
var PropertyTypeRules = []TextRule{
	{Name: "metadata.property_type", Extract: normalizedMeta("property_type")},
	{Name: "metadata.type", Extract: normalizedMeta("type")},
	{Name: "listingDetails.propertyType", Extract: func(d domain.ListingDetails, _ Metadata) string {
		return Normalize(d.String("propertyType"))
	}},
}

func fromDetail(key string, parse func(interface{}) *float64) func(domain.ListingDetails, Metadata) *float64 {
	return func(d domain.ListingDetails, _ Metadata) *float64 {
		v, ok := d.Get(key)
		if !ok {
			return nil
		}
		return parse(v)
	}
}

func fromMeta(parse func(interface{}) *float64, keys ...string) func(domain.ListingDetails, Metadata) *float64 {
	return func(_ domain.ListingDetails, m Metadata) *float64 {
		for _, k := range keys {
			if v, ok := m.Get(k); ok {
				return parse(v)
			}
		}
		return nil
	}
}

func normalizedMeta(key string) func(domain.ListingDetails, Metadata) string {
	return func(_ domain.ListingDetails, m Metadata) string {
		return Normalize(m.String(key))
	}
}

func pricePerTokenFromValuation(_ domain.ListingDetails, m Metadata) *float64 {
	pp, _ := m.Get("property_price")
	count, _ := m.Get("number_of_tokens")
	price, tokens := ExtractNumber(pp), ExtractNumber(count)
	if price == nil || tokens == nil || *tokens <= 0 {
		return nil
	}
	v := *price / *tokens
	return &v
}

// FirstNumber applies rules in order.
func FirstNumber(rules []NumberRule, details domain.ListingDetails, meta Metadata) *float64 {
	for _, r := range rules {
		if v := r.Extract(details, meta); v != nil {
			return v
		}
	}
	return nil
}

// FirstText applies rules in order.
func FirstText(rules []TextRule, details domain.ListingDetails, meta Metadata) string {
	for _, r := range rules {
		if v := r.Extract(details, meta); v != "" {
			return v
		}
	}
	return ""
}

// Fields holds everything the filter, facets and cards read from a listing.
type Fields struct {
	ListingID     string
	PropertyName  string
	Street        string
	CityLabel     string // trimmed, as written in metadata
	City          string // normalized
	Postcode      string
	Country       string // normalized
	PropertyType  string // normalized
	PropertyPrice *float64
	TokenPrice    *float64
}

// Address is "street, city" lower-cased, skipping blanks.
func (f Fields) Address() string {
	sep := ""
	if f.Street != "" && f.CityLabel != "" {
		sep = ", "
	}
	return strings.ToLower(f.Street + sep + f.CityLabel)
}

// ExtractFields runs every rule list against one listing and its metadata.
func ExtractFields(l domain.DecoratedListing, meta Metadata) Fields {
	d := l.Listing.ListingDetails
	return Fields{
		ListingID:     l.Listing.ListingID.String(),
		PropertyName:  strings.TrimSpace(meta.String("property_name")),
		Street:        meta.String("address_street"),
		CityLabel:     strings.TrimSpace(meta.String("address_town_city")),
		City:          Normalize(meta.String("address_town_city")),
		Postcode:      strings.TrimSpace(meta.String("address_postcode")),
		Country:       Normalize(meta.String("country")),
		PropertyType:  FirstText(PropertyTypeRules, d, meta),
		PropertyPrice: FirstNumber(PropertyPriceRules, d, meta),
		TokenPrice:    FirstNumber(TokenPriceRules, d, meta),
	}
}
