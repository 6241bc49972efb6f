package chain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIndexer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/listings/ongoing", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("developer") == "5Fdev" {
			w.Write([]byte(`[{"listingId":"9","listingDetails":{"collectionId":"2","itemId":"4"}}]`))
			return
		}
		w.Write([]byte(`[{"listingId":1,"listingDetails":{"collectionId":0,"itemId":"3","listingExpiry":"112,508"}}]`))
	})
	mux.HandleFunc("/collections/0/items/3/metadata", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":"0x7b7d"}`))
	})
	mux.HandleFunc("/listings/1/token-remaining", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tokenRemaining":1200}`))
	})
	mux.HandleFunc("/blocks/112508/passed", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"passed":true}`))
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClient_Endpoints(t *testing.T) {
	srv := newIndexer(t)
	c := NewHTTPClient(srv.URL+"/", 0)
	ctx := context.Background()

	listings, err := c.GetAllOngoingListings(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "1", listings[0].ListingID.String())
	assert.Equal(t, "0", listings[0].ListingDetails.String("collectionId"))

	dev, err := c.GetOngoingListingsByDeveloper(ctx, "5Fdev")
	require.NoError(t, err)
	require.Len(t, dev, 1)
	assert.Equal(t, "9", dev[0].ListingID.String())

	meta, err := c.GetItemMetadata(ctx, "0", "3")
	require.NoError(t, err)
	assert.Equal(t, "0x7b7d", meta.Data)

	remaining, err := c.GetTokenRemaining(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "1200", remaining)

	passed, err := c.CheckBlock(ctx, 112508)
	require.NoError(t, err)
	assert.True(t, passed)
}

func TestHTTPClient_Errors(t *testing.T) {
	srv := newIndexer(t)
	c := NewHTTPClient(srv.URL, 50)
	ctx := context.Background()

	_, err := c.GetItemMetadata(ctx, "9", "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")

	err = c.Ping(ctx)
	require.Error(t, err)

	_, err = NewHTTPClient("", 0).GetAllOngoingListings(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INDEXER_URL")
}
