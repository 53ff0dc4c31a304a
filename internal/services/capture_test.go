package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvellis/brandflow/internal/models"
)

func TestHTTPCaptureClientRequiresEndpoint(t *testing.T) {
	_, err := NewHTTPCaptureClient("")
	assert.Error(t, err)
}

func TestHTTPCaptureClientCapture(t *testing.T) {
	var gotRequest models.CaptureRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		json.NewEncoder(w).Encode(models.CaptureResponse{
			Screenshots: []models.CaptureScreenshot{{Label: "desktop", MIMEType: "image/png", Data: []byte{1, 2, 3}}},
			DOMSummary:  "header, main",
		})
	}))
	defer server.Close()

	client, err := NewHTTPCaptureClient(server.URL)
	require.NoError(t, err)

	capture, err := client.Capture(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", gotRequest.URL)
	assert.Equal(t, defaultViewports, gotRequest.Viewports)
	require.Len(t, capture.Screenshots, 1)
	assert.Equal(t, "desktop", capture.Screenshots[0].Label)
}

func TestHTTPCaptureClientRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "render timeout", http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewHTTPCaptureClient(server.URL)
	require.NoError(t, err)

	_, err = client.Capture(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPCaptureClientRejectsEmptyCapture(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(models.CaptureResponse{})
	}))
	defer server.Close()

	client, err := NewHTTPCaptureClient(server.URL)
	require.NoError(t, err)

	_, err = client.Capture(context.Background(), "https://example.com")
	assert.Error(t, err)
}

func TestBundleCapture(t *testing.T) {
	empty := BundleCapture{}
	_, err := empty.Capture(context.Background(), "https://example.com")
	assert.Error(t, err)

	bundle := BundleCapture{Bundle: captureFixture()}
	capture, err := bundle.Capture(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Len(t, capture.Screenshots, 2)
}
