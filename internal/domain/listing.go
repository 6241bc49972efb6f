package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexString accepts a JSON string, number or null. Indexer payloads are not
// consistent about quoting ids and amounts.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// ListingDetails is the loose on-chain listing details object. Numeric-looking
// values are usually comma-grouped strings ("112,508").
type ListingDetails map[string]interface{}

// UnmarshalJSON keeps only JSON objects; any other shape leaves the details nil
// so the record is skipped instead of failing the whole batch.
func (d *ListingDetails) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]interface{}
	if err := dec.Decode(&m); err != nil {
		*d = nil
		return nil
	}
	*d = m
	return nil
}

// Get returns the raw value for key and whether the key is present.
func (d ListingDetails) Get(key string) (interface{}, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d[key]
	return v, ok
}

// String returns the value for key rendered as text ("" when absent or null).
func (d ListingDetails) String(key string) string {
	v, _ := d.Get(key)
	return Stringify(v)
}

// ListingRecord is a raw ongoing listing as returned by the indexer.
type ListingRecord struct {
	ListingID      FlexString     `json:"listingId"`
	ListingDetails ListingDetails `json:"listingDetails"`
}

// ItemMetadata is the indexer response for a collection item; Data is hex
// ("0x...") or plain JSON text.
type ItemMetadata struct {
	Data string `json:"data"`
}

// DecoratedListing is a listing plus everything derived for it in one request.
type DecoratedListing struct {
	Listing        ListingRecord `json:"listing"`
	TokenRemaining string        `json:"tokenRemaining"`
	Metadata       string        `json:"metadata"` // "" or valid JSON text
	FileURLs       []string      `json:"fileUrls"`
	IsExpired      bool          `json:"isExpired"`
}

// numberText keeps integer and decimal literals as written and expands
// exponent forms ("3e5" -> "300000").
func numberText(n json.Number) string {
	lit := n.String()
	if !strings.ContainsAny(lit, "eE") {
		return lit
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return lit
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Stringify renders a loosely typed JSON value as text. nil becomes "".
func Stringify(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return numberText(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case FlexString:
		return string(x)
	case []interface{}:
		parts := make([]string, len(x))
		for i, p := range x {
			parts[i] = Stringify(p)
		}
		return strings.Join(parts, ",")
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
