package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultExpiresIn = 3600

// HTTPPresigner signs download and upload URLs for objects in the S3-like
// file store.
type HTTPPresigner struct {
	BaseURL   string
	SecretKey string
	Bucket    string
	ExpiresIn int // seconds
	Client    *http.Client
}

// signResponse covers both sign endpoints, which name the URL differently.
type signResponse struct {
	SignedURL      string `json:"signedURL"`
	SignedURLCamel string `json:"signedUrl"`
	SignedURLSnake string `json:"signed_url"`
	URL            string `json:"url"`
}

func (r signResponse) first() string {
	for _, u := range []string{r.SignedURL, r.SignedURLCamel, r.SignedURLSnake, r.URL} {
		if u != "" {
			return u
		}
	}
	return ""
}

func (p *HTTPPresigner) base() string {
	return strings.TrimRight(p.BaseURL, "/")
}

// post sends body to /storage/v1<path> and decodes the JSON reply into out.
func (p *HTTPPresigner) post(ctx context.Context, path string, body, out interface{}) error {
	if p.BaseURL == "" {
		return fmt.Errorf("storage: STORAGE_URL is not set")
	}
	if p.SecretKey == "" {
		return fmt.Errorf("storage: STORAGE_SECRET_KEY is not set")
	}
	if p.Client == nil {
		p.Client = &http.Client{Timeout: 10 * time.Second}
	}
	bodyBytes, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.base()+"/storage/v1"+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("apikey", p.SecretKey)
	req.Header.Set("Authorization", "Bearer "+p.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("storage request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("storage error: status %d body: %s", resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("storage response decode: %w", err)
	}
	return nil
}

// sign posts to a sign endpoint for fileKey and returns an absolute URL.
// Relative replies ("/object/sign/<bucket>/<key>?token=...") are resolved
// against the store base.
func (p *HTTPPresigner) sign(ctx context.Context, endpoint, fileKey string, body interface{}) (string, error) {
	fileKey = strings.TrimLeft(fileKey, "/")
	if fileKey == "" {
		return "", fmt.Errorf("storage: empty file key")
	}
	var data signResponse
	if err := p.post(ctx, fmt.Sprintf("/object/%s/%s/%s", endpoint, p.Bucket, fileKey), body, &data); err != nil {
		return "", err
	}
	u := data.first()
	if u == "" {
		return "", fmt.Errorf("storage returned no signed URL for %s", fileKey)
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u, nil
	}
	if u[0] != '/' {
		u = "/" + u
	}
	if !strings.HasPrefix(u, "/storage/v1") {
		u = "/storage/v1" + u
	}
	return p.base() + u, nil
}

// GeneratePresignedURL returns a time-limited download URL for fileKey.
func (p *HTTPPresigner) GeneratePresignedURL(ctx context.Context, fileKey string) (string, error) {
	expires := p.ExpiresIn
	if expires <= 0 {
		expires = defaultExpiresIn
	}
	return p.sign(ctx, "sign", fileKey, map[string]interface{}{"expiresIn": expires})
}

// CreateSignedUploadURL returns a one-shot upload URL for fileKey. Existing
// objects are never overwritten.
func (p *HTTPPresigner) CreateSignedUploadURL(ctx context.Context, fileKey string) (string, error) {
	return p.sign(ctx, "upload/sign", fileKey, map[string]interface{}{"upsert": false})
}

// Ping checks that the store answers; any HTTP response counts as reachable.
func (p *HTTPPresigner) Ping(ctx context.Context) error {
	if p.BaseURL == "" {
		return fmt.Errorf("storage: STORAGE_URL is not set")
	}
	if p.Client == nil {
		p.Client = &http.Client{Timeout: 10 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.base()+"/storage/v1/version", nil)
	if err != nil {
		return err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
