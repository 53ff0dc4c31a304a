package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"

	"github.com/nvellis/brandflow/internal/gcp"
	"github.com/nvellis/brandflow/internal/models"
	"github.com/nvellis/brandflow/internal/schema"
	"github.com/nvellis/brandflow/internal/session"
)

// ExtractionService is the produced surface of the core: fire-and-forget
// starts, cursor-based progress polling, and terminal result retrieval.
type ExtractionService struct {
	orchestrator *Orchestrator
	registry     *session.Registry
}

// NewExtractionService wires an orchestrator to a session registry.
func NewExtractionService(orchestrator *Orchestrator, registry *session.Registry) *ExtractionService {
	return &ExtractionService{orchestrator: orchestrator, registry: registry}
}

// NewExtractionServiceFromEnv builds the full production service: Vertex
// models, capture client, schema validator, GCS/Firestore persistence and
// the session registry, all configured from the environment.
func NewExtractionServiceFromEnv(ctx context.Context) (*ExtractionService, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	captureEndpoint := gcp.GetEnv("CAPTURE_SERVICE_URL", "")
	if captureEndpoint == "" {
		return nil, fmt.Errorf("CAPTURE_SERVICE_URL environment variable must be set")
	}
	region := gcp.GetEnv("VERTEX_AI_REGION", "us-central1")
	bucket := gcp.GetEnv("SPEC_ARTIFACTS_BUCKET", "")
	collection := gcp.GetEnv("FIRESTORE_COLLECTION", "extractions")

	retention, err := time.ParseDuration(gcp.GetEnv("SESSION_RETENTION", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_RETENTION: %w", err)
	}
	grace, err := time.ParseDuration(gcp.GetEnv("SESSION_GRACE", "2m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_GRACE: %w", err)
	}

	vertexClient, err := gcp.NewVertexClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex client: %w", err)
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to build schema validator: %w", err)
	}

	captureClient, err := NewHTTPCaptureClient(captureEndpoint)
	if err != nil {
		return nil, err
	}

	var storageClient *storage.Client
	var firestoreClient *firestore.Client
	if bucket != "" {
		if storageClient, err = storage.NewClient(ctx); err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		if firestoreClient, err = gcp.NewFirestoreClient(ctx, projectID); err != nil {
			return nil, err
		}
	}

	orchestrator := NewOrchestrator(
		captureClient,
		NewAnalyzer(vertexClient),
		NewSynthesizer(validator),
		NewEvaluator(vertexClient),
		NewRefinementController(NewRefiner(vertexClient), validator),
		NewResultStore(storageClient, firestoreClient, bucket, collection),
	)

	return NewExtractionService(orchestrator, session.NewRegistry(retention, grace)), nil
}

// StartExtraction validates the request and starts one pipeline goroutine.
// The returned session ID is immediately pollable.
func (s *ExtractionService) StartExtraction(requestURL string, adjectives []string) (string, error) {
	parsed, err := url.Parse(requestURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", fmt.Errorf("invalid extraction url %q", requestURL)
	}

	id := s.registry.Create()
	go s.runSession(id, s.orchestrator.capture, requestURL, adjectives)
	return id, nil
}

// StartFromBundle starts an extraction from a pre-captured bundle,
// bypassing live capture.
func (s *ExtractionService) StartFromBundle(bundle *BundleFile) (string, error) {
	if bundle == nil || bundle.URL == "" {
		return "", fmt.Errorf("bundle has no source url")
	}

	id := s.registry.Create()
	go s.runSession(id, BundleCapture{Bundle: &bundle.Capture}, bundle.URL, bundle.Adjectives)
	return id, nil
}

// runSession is the single writer for its session. It runs detached from
// the caller's context: observer disconnection never cancels a pipeline
// already in flight.
func (s *ExtractionService) runSession(id string, capture CaptureAdapter, requestURL string, adjectives []string) {
	ctx := context.Background()
	sink := func(event models.ProgressEvent) {
		if err := s.registry.Append(id, event); err != nil {
			slog.Error("Failed to append progress event", "sessionId", id, "stage", event.Stage, "error", err)
		}
	}

	spec, eval, trace, err := s.orchestrator.RunWithCapture(ctx, capture, id, requestURL, adjectives, sink)

	result := session.Result{Trace: trace}
	if err != nil {
		result.Err = err.Error()
	} else {
		result.Specification = spec
		result.Evaluation = eval
	}
	if err := s.registry.Finish(id, result); err != nil {
		slog.Error("Failed to record session result", "sessionId", id, "error", err)
	}
}

// StreamProgress returns events at and after the caller's cursor. Unknown
// or expired sessions surface as session.ErrNotFound, which callers treat
// as a benign miss.
func (s *ExtractionService) StreamProgress(id string, cursor int) (*models.ProgressResponse, error) {
	events, next, err := s.registry.Read(id, cursor)
	if err != nil {
		return nil, err
	}
	status, _, err := s.registry.Status(id)
	if err != nil {
		return nil, err
	}
	return &models.ProgressResponse{
		SessionID:  id,
		Status:     string(status),
		Events:     events,
		NextCursor: next,
	}, nil
}

// GetResult returns the terminal outcome. While the session is still
// processing, the response carries only the status.
func (s *ExtractionService) GetResult(id string) (*models.ResultResponse, error) {
	result, status, err := s.registry.Result(id)
	if err != nil {
		return nil, err
	}

	response := &models.ResultResponse{SessionID: id, Status: string(status)}
	if result == nil {
		return response, nil
	}
	if result.Err != "" {
		response.Error = result.Err
		response.Trace = result.Trace
		return response, nil
	}
	response.Specification = result.Specification
	response.Evaluation = result.Evaluation
	response.Trace = result.Trace
	return response, nil
}

// StartJanitor periodically expires sessions until ctx is done.
func (s *ExtractionService) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := s.registry.Expire(); removed > 0 {
					slog.Info("Expired sessions.", "count", removed)
				}
			}
		}
	}()
}
