package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"estate-backend/internal/domain"

	"golang.org/x/time/rate"
)

// HTTPClient talks to the blockchain indexer REST API.
type HTTPClient struct {
	BaseURL string
	Client  *http.Client
	Limiter *rate.Limiter
}

// NewHTTPClient builds an indexer client. rps <= 0 disables request pacing.
func NewHTTPClient(baseURL string, rps float64) *HTTPClient {
	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = int(rps)
		if burst < 1 {
			burst = 1
		}
	}
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 15 * time.Second},
		Limiter: rate.NewLimiter(limit, burst),
	}
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out interface{}) error {
	if c.BaseURL == "" {
		return fmt.Errorf("indexer: INDEXER_URL is not set")
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("indexer rate limit: %w", err)
		}
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("indexer request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("indexer error: %s status %d body: %s", path, resp.StatusCode, string(body))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("indexer response decode %s: %w", path, err)
	}
	return nil
}

// GetAllOngoingListings GET /listings/ongoing
func (c *HTTPClient) GetAllOngoingListings(ctx context.Context) ([]domain.ListingRecord, error) {
	var out []domain.ListingRecord
	if err := c.getJSON(ctx, "/listings/ongoing", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOngoingListingsByDeveloper GET /listings/ongoing?developer=<address>
func (c *HTTPClient) GetOngoingListingsByDeveloper(ctx context.Context, address string) ([]domain.ListingRecord, error) {
	var out []domain.ListingRecord
	if err := c.getJSON(ctx, "/listings/ongoing?developer="+url.QueryEscape(address), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetItemMetadata GET /collections/:collection/items/:item/metadata
func (c *HTTPClient) GetItemMetadata(ctx context.Context, collectionID, itemID string) (*domain.ItemMetadata, error) {
	path := fmt.Sprintf("/collections/%s/items/%s/metadata", url.PathEscape(collectionID), url.PathEscape(itemID))
	var out domain.ItemMetadata
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type tokenRemainingResponse struct {
	TokenRemaining domain.FlexString `json:"tokenRemaining"`
}

// GetTokenRemaining GET /listings/:id/token-remaining
func (c *HTTPClient) GetTokenRemaining(ctx context.Context, listingID string) (string, error) {
	var out tokenRemainingResponse
	if err := c.getJSON(ctx, "/listings/"+url.PathEscape(listingID)+"/token-remaining", &out); err != nil {
		return "", err
	}
	return out.TokenRemaining.String(), nil
}

type blockPassedResponse struct {
	Passed bool `json:"passed"`
}

// CheckBlock GET /blocks/:n/passed; true once the chain is past blockNumber.
func (c *HTTPClient) CheckBlock(ctx context.Context, blockNumber uint64) (bool, error) {
	var out blockPassedResponse
	if err := c.getJSON(ctx, "/blocks/"+strconv.FormatUint(blockNumber, 10)+"/passed", &out); err != nil {
		return false, err
	}
	return out.Passed, nil
}

// Ping GET /health; used by the health endpoint.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.getJSON(ctx, "/health", nil)
}
