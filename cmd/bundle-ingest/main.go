package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/nvellis/brandflow/internal/services"
)

var (
	serviceInstance *services.ExtractionService
	storageClient   *storage.Client
	once            sync.Once
	initErr         error
)

// GCSEvent is the payload of a GCS object-finalized event.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the CloudEvent function. The framework will handle routing the event here.
	functions.CloudEvent("HandleBundleUpload", handleBundleUpload)
}

// main is required by the Go Functions Framework.
func main() {}

// handleBundleUpload starts an extraction when a pre-captured bundle lands
// in the intake bucket.
func handleBundleUpload(ctx context.Context, e cloudevents.Event) error {
	// Use sync.Once for robust, one-time initialization of clients.
	once.Do(func() {
		serviceInstance, initErr = services.NewExtractionServiceFromEnv(context.Background())
		if initErr != nil {
			return
		}
		storageClient, initErr = storage.NewClient(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	// Only bundle documents trigger an extraction; anything else in the
	// bucket is ignored without failing the invocation.
	if !strings.HasSuffix(gcsEvent.Name, ".json") || !strings.HasPrefix(gcsEvent.Name, "bundles/") {
		slog.Info("Ignoring non-bundle object.", "object", gcsEvent.Name)
		return nil
	}

	bundle, err := services.LoadBundle(ctx, storageClient, gcsEvent.Bucket, gcsEvent.Name)
	if err != nil {
		slog.Error("Failed to load bundle", "bucket", gcsEvent.Bucket, "object", gcsEvent.Name, "error", err)
		return err
	}

	sessionID, err := serviceInstance.StartFromBundle(bundle)
	if err != nil {
		slog.Error("Failed to start extraction from bundle", "object", gcsEvent.Name, "error", err)
		return err
	}

	slog.Info("Started extraction from bundle.", "object", gcsEvent.Name, "sessionId", sessionID, "url", bundle.URL)
	return nil
}
