package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"

	"github.com/nvellis/brandflow/internal/gcp"
	"github.com/nvellis/brandflow/internal/models"
)

// CaptureAdapter produces screenshots and structural data for a URL. The
// pipeline treats it as an opaque, possibly-slow, possibly-failing
// collaborator; any failure here aborts the extraction.
type CaptureAdapter interface {
	Capture(ctx context.Context, url string) (*models.CaptureResponse, error)
}

// defaultViewports are requested from the capture service when the caller
// does not configure its own set.
var defaultViewports = []string{"desktop", "mobile"}

// HTTPCaptureClient calls the headless-browser capture service over HTTP.
type HTTPCaptureClient struct {
	endpoint   string
	viewports  []string
	httpClient *http.Client
}

// NewHTTPCaptureClient creates a capture client for the given endpoint.
// The generous timeout accommodates slow or flaky page loads; the capture
// service applies its own per-page budget below it.
func NewHTTPCaptureClient(endpoint string) (*HTTPCaptureClient, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("capture service endpoint cannot be empty")
	}
	return &HTTPCaptureClient{
		endpoint:   endpoint,
		viewports:  defaultViewports,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// Capture requests screenshots and DOM/style summaries for the URL.
func (c *HTTPCaptureClient) Capture(ctx context.Context, url string) (*models.CaptureResponse, error) {
	body, err := json.Marshal(models.CaptureRequest{URL: url, Viewports: c.viewports})
	if err != nil {
		return nil, fmt.Errorf("failed to encode capture request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build capture request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("capture service call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("capture service returned status %d: %s", resp.StatusCode, snippet)
	}

	var capture models.CaptureResponse
	if err := json.NewDecoder(resp.Body).Decode(&capture); err != nil {
		return nil, fmt.Errorf("failed to decode capture response: %w", err)
	}
	if len(capture.Screenshots) == 0 {
		return nil, fmt.Errorf("capture service returned no screenshots for %s", url)
	}
	return &capture, nil
}

// BundleFile is a pre-captured bundle uploaded to the intake bucket. It
// carries everything a live capture would have produced plus the request
// parameters, so an extraction can start without touching the page again.
type BundleFile struct {
	URL        string                 `json:"url"`
	Adjectives []string               `json:"adjectives,omitempty"`
	Capture    models.CaptureResponse `json:"capture"`
}

// BundleCapture adapts a pre-captured bundle to the CaptureAdapter
// interface, so the orchestrator runs the same pipeline either way.
type BundleCapture struct {
	Bundle *models.CaptureResponse
}

func (b BundleCapture) Capture(_ context.Context, _ string) (*models.CaptureResponse, error) {
	if b.Bundle == nil || len(b.Bundle.Screenshots) == 0 {
		return nil, fmt.Errorf("bundle contains no screenshots")
	}
	return b.Bundle, nil
}

// LoadBundle reads and parses a capture bundle from GCS.
func LoadBundle(ctx context.Context, client *storage.Client, bucket, object string) (*BundleFile, error) {
	data, err := gcp.ReadGCSObject(ctx, client.Bucket(bucket), object)
	if err != nil {
		return nil, err
	}

	var bundle BundleFile
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse bundle %s: %w", object, err)
	}
	if bundle.URL == "" {
		return nil, fmt.Errorf("bundle %s has no source url", object)
	}
	return &bundle, nil
}
