package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/nvellis/brandflow/internal/models"
	"github.com/nvellis/brandflow/internal/services"
	"github.com/nvellis/brandflow/internal/session"
)

var (
	serviceInstance *services.ExtractionService
	once            sync.Once
	initErr         error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the HTTP function with the framework.
	// "BrandExtractor" is the entry point name configured in GCP.
	functions.HTTP("BrandExtractor", handleExtractor)
}

// main is required by the Go Functions Framework.
func main() {}

// handleExtractor routes the extraction surface: start, progress, result.
func handleExtractor(w http.ResponseWriter, r *http.Request) {
	// Use sync.Once for robust, one-time initialization of clients.
	once.Do(func() {
		serviceInstance, initErr = services.NewExtractionServiceFromEnv(context.Background())
		if initErr == nil {
			serviceInstance.StartJanitor(context.Background(), time.Minute)
		}
	})
	if initErr != nil {
		slog.Error("Critical: extraction service initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/extractions":
		handleStart(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/extractions/progress":
		handleProgress(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/extractions/result":
		handleResult(w, r)
	default:
		http.NotFound(w, r)
	}
}

func handleStart(w http.ResponseWriter, r *http.Request) {
	var req models.StartExtractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Could not decode request body", "error", err)
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}

	sessionID, err := serviceInstance.StartExtraction(req.URL, req.Adjectives)
	if err != nil {
		slog.Warn("Rejected extraction request", "url", req.URL, "error", err)
		http.Error(w, "Bad Request: "+err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusAccepted, models.StartExtractionResponse{SessionID: sessionID})
}

func handleProgress(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	cursor, _ := strconv.Atoi(r.URL.Query().Get("cursor"))

	progress, err := serviceInstance.StreamProgress(sessionID, cursor)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, "Not Found: unknown or expired session", http.StatusNotFound)
			return
		}
		slog.Error("Failed to read progress", "sessionId", sessionID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

func handleResult(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")

	result, err := serviceInstance.GetResult(sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, "Not Found: unknown or expired session", http.StatusNotFound)
			return
		}
		slog.Error("Failed to read result", "sessionId", sessionID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
