package marketplace

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"

	"estate-backend/internal/domain"
)

const hexPrefix = "0x"

// DecodeMetadata turns an indexer metadata payload into text. Hex payloads
// ("0x" + bytes) are decoded as UTF-8; anything else passes through. Bad hex
// yields "".
func DecodeMetadata(payload string) string {
	if !strings.HasPrefix(payload, hexPrefix) {
		return payload
	}
	b, err := hex.DecodeString(payload[len(hexPrefix):])
	if err != nil {
		return ""
	}
	return strings.ToValidUTF8(string(b), "�")
}

// Metadata is a parsed off-chain metadata blob. Numbers keep their literal text.
type Metadata map[string]interface{}

// ParseMetadata parses JSON object text. Empty, invalid or non-object input
// gives an empty Metadata.
func ParseMetadata(text string) Metadata {
	if strings.TrimSpace(text) == "" {
		return Metadata{}
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var m map[string]interface{}
	if err := dec.Decode(&m); err != nil || m == nil {
		return Metadata{}
	}
	return m
}

// Get returns the raw value for key. A JSON null counts as absent.
func (m Metadata) Get(key string) (interface{}, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns the value for key as text, "" when absent.
func (m Metadata) String(key string) string {
	v, _ := m.Get(key)
	return domain.Stringify(v)
}

// Files returns the string entries of the "files" array.
func (m Metadata) Files() []string {
	raw, ok := m.Get("files")
	if !ok {
		return nil
	}
	arr, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, f := range arr {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// validJSONOrEmpty keeps the DecoratedListing.Metadata invariant.
func validJSONOrEmpty(text string) string {
	if text == "" || !json.Valid([]byte(text)) {
		return ""
	}
	return text
}
