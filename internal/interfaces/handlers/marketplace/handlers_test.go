package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	mktsvc "estate-backend/internal/application/marketplace"
	"estate-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChain struct {
	listings []domain.ListingRecord
	metadata map[string]string
	passed   map[uint64]bool
	listErr  error
}

func (f *fakeChain) GetAllOngoingListings(ctx context.Context) ([]domain.ListingRecord, error) {
	return f.listings, f.listErr
}

func (f *fakeChain) GetOngoingListingsByDeveloper(ctx context.Context, address string) ([]domain.ListingRecord, error) {
	return nil, nil
}

func (f *fakeChain) GetItemMetadata(ctx context.Context, collectionID, itemID string) (*domain.ItemMetadata, error) {
	return &domain.ItemMetadata{Data: f.metadata[itemID]}, nil
}

func (f *fakeChain) GetTokenRemaining(ctx context.Context, listingID string) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeChain) CheckBlock(ctx context.Context, blockNumber uint64) (bool, error) {
	return f.passed[blockNumber], nil
}

func listingRecord(id, item, expiry string) domain.ListingRecord {
	return domain.ListingRecord{
		ListingID: domain.FlexString(id),
		ListingDetails: domain.ListingDetails{
			"collectionId":      "0",
			"itemId":            item,
			"listingExpiry":     expiry,
			"listedTokenAmount": "250",
			"tokenPrice":        "1500000",
		},
	}
}

func setupMarketplaceApp(chain *fakeChain) *fiber.App {
	h := &Handlers{Service: &mktsvc.Service{Chain: chain}}
	app := fiber.New()
	app.Get("/listings", h.GetListings)
	app.Get("/listings/:listing_id", h.GetListing)
	return app
}

func defaultChain() *fakeChain {
	return &fakeChain{
		listings: []domain.ListingRecord{
			listingRecord("1", "10", "100"),
			listingRecord("2", "11", "200"),
			listingRecord("3", "12", "300"),
		},
		metadata: map[string]string{
			"10": `{"property_name":"Harbour View","address_town_city":"Bristol","address_postcode":"BS1","country":"United Kingdom","property_type":"Flat","property_price":"250000"}`,
			"11": `{"property_name":"Old Mill","address_town_city":"Leeds","country":"United Kingdom","property_type":"House","property_price":"400000"}`,
			"12": `{"property_name":"Gone","address_town_city":"York"}`,
		},
		passed: map[uint64]bool{300: true},
	}
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	b, err := io.ReadAll(body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestGetListings_AllLive(t *testing.T) {
	app := setupMarketplaceApp(defaultChain())
	resp, err := app.Test(httptest.NewRequest("GET", "/listings", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decode(t, resp.Body)
	assert.Equal(t, "success", out["status"])
	data, _ := out["data"].(map[string]interface{})
	listings, _ := data["listings"].([]interface{})
	assert.Len(t, listings, 2)
	cities, _ := data["cityOptions"].([]interface{})
	assert.Len(t, cities, 2)
	meta, _ := out["metadata"].(map[string]interface{})
	assert.Equal(t, float64(2), meta["total"])

	first, _ := listings[0].(map[string]interface{})
	assert.Equal(t, "1", first["id"])
	assert.Equal(t, 1.5, first["tokenPrice"])
	assert.Equal(t, float64(250000), first["propertyPrice"])
}

func TestGetListings_Filtered(t *testing.T) {
	app := setupMarketplaceApp(defaultChain())
	resp, err := app.Test(httptest.NewRequest("GET", "/listings?city=leeds&propertyType=house", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	data, _ := decode(t, resp.Body)["data"].(map[string]interface{})
	listings, _ := data["listings"].([]interface{})
	require.Len(t, listings, 1)
	card, _ := listings[0].(map[string]interface{})
	assert.Equal(t, "2", card["id"])
	cities, _ := data["cityOptions"].([]interface{})
	assert.Len(t, cities, 2, "city options cover every live listing")
	suggestions, _ := data["suggestions"].([]interface{})
	require.Len(t, suggestions, 1)
	s, _ := suggestions[0].(map[string]interface{})
	assert.Equal(t, "Old Mill", s["title"])
}

func TestGetListings_IndexerDown(t *testing.T) {
	chain := defaultChain()
	chain.listErr = errors.New("connection refused")
	app := setupMarketplaceApp(chain)
	resp, err := app.Test(httptest.NewRequest("GET", "/listings", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	out := decode(t, resp.Body)
	assert.Equal(t, "error", out["status"])
}

func TestGetListing(t *testing.T) {
	app := setupMarketplaceApp(defaultChain())

	resp, err := app.Test(httptest.NewRequest("GET", "/listings/2", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	card, _ := decode(t, resp.Body)["data"].(map[string]interface{})
	assert.Equal(t, "2", card["id"])
	assert.Equal(t, "250", card["tokenRemaining"])

	resp, err = app.Test(httptest.NewRequest("GET", "/listings/99", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
