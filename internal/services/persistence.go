package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"

	"github.com/nvellis/brandflow/internal/gcp"
	"github.com/nvellis/brandflow/internal/models"
)

// ResultStore persists the finalized artifacts: specification and raw-token
// JSON to GCS, and a summary record to Firestore. Persistence is
// best-effort: the in-memory session result is already complete, so
// failures here become stage warnings, never pipeline failures.
type ResultStore struct {
	storageClient   *storage.Client
	firestoreClient *firestore.Client
	bucket          string
	collection      string
}

// NewResultStore creates a store. Either client may be nil, which disables
// the corresponding side (local mode).
func NewResultStore(storageClient *storage.Client, firestoreClient *firestore.Client, bucket, collection string) *ResultStore {
	return &ResultStore{
		storageClient:   storageClient,
		firestoreClient: firestoreClient,
		bucket:          bucket,
		collection:      collection,
	}
}

// Persist writes the run's artifacts and record. It returns the artifacts
// successfully written plus recoverable errors for anything that failed.
func (s *ResultStore) Persist(ctx context.Context, sessionID string, spec *models.BrandSpecification, eval *models.EvaluationResult, trace *models.ExecutionTrace, raw *models.RawBrandTokens) ([]models.Artifact, []models.StageError) {
	var artifacts []models.Artifact
	var stageErrors []models.StageError

	specGCSUri := ""
	if s.storageClient != nil && s.bucket != "" {
		uploaded, uri, errs := s.uploadArtifacts(ctx, sessionID, spec, raw)
		artifacts = append(artifacts, uploaded...)
		stageErrors = append(stageErrors, errs...)
		specGCSUri = uri
	}

	if s.firestoreClient != nil && s.collection != "" {
		record := models.ExtractionRecord{
			SessionID:        sessionID,
			SourceURL:        spec.SourceURL,
			Status:           "completed",
			SpecificationID:  spec.ID,
			SchemaVersion:    spec.SchemaVersion,
			OverallScore:     eval.OverallScore,
			QualityBand:      string(eval.QualityBand),
			TotalTokens:      trace.Summary.TotalTokens,
			EstimatedCostUSD: trace.Summary.EstimatedCostUSD,
			SpecGCSUri:       specGCSUri,
			CreatedAt:        trace.StartedAt,
			CompletedAt:      time.Now().UTC(),
		}
		if _, err := s.firestoreClient.Collection(s.collection).Doc(sessionID).Set(ctx, record); err != nil {
			slog.Error("Failed to write extraction record", "sessionId", sessionID, "error", err)
			stageErrors = append(stageErrors, models.StageError{
				Code:        models.CodePersistFailed,
				Message:     fmt.Sprintf("failed to write extraction record: %v", err),
				Recoverable: true,
			})
		}
	}

	return artifacts, stageErrors
}

// uploadArtifacts writes the specification and raw-token documents
// concurrently.
func (s *ResultStore) uploadArtifacts(ctx context.Context, sessionID string, spec *models.BrandSpecification, raw *models.RawBrandTokens) ([]models.Artifact, string, []models.StageError) {
	type upload struct {
		name    string
		payload any
	}
	uploads := []upload{
		{name: "specification.json", payload: spec},
		{name: "raw-tokens.json", payload: raw},
	}

	bucketHandle := s.storageClient.Bucket(s.bucket)
	results := make([]*models.Artifact, len(uploads))
	failures := make([]error, len(uploads))

	eg, gctx := errgroup.WithContext(ctx)
	for i, u := range uploads {
		i, u := i, u
		eg.Go(func() error {
			data, err := json.MarshalIndent(u.payload, "", "  ")
			if err != nil {
				failures[i] = fmt.Errorf("failed to encode %s: %w", u.name, err)
				return nil
			}
			objectName := fmt.Sprintf("%s/%s", sessionID, u.name)
			if err := gcp.SaveToGCSAtomically(gctx, bucketHandle, objectName, string(data)); err != nil {
				failures[i] = err
				return nil
			}
			results[i] = &models.Artifact{
				Name:        objectName,
				ContentType: "application/json",
				SizeBytes:   int64(len(data)),
			}
			return nil
		})
	}
	_ = eg.Wait() // individual failures are collected, not propagated

	var artifacts []models.Artifact
	var stageErrors []models.StageError
	specGCSUri := ""
	for i := range uploads {
		if failures[i] != nil {
			stageErrors = append(stageErrors, models.StageError{
				Code:        models.CodePersistFailed,
				Message:     failures[i].Error(),
				Recoverable: true,
			})
			continue
		}
		if results[i] != nil {
			artifacts = append(artifacts, *results[i])
			if uploads[i].name == "specification.json" {
				specGCSUri = fmt.Sprintf("gs://%s/%s", s.bucket, results[i].Name)
			}
		}
	}
	return artifacts, specGCSUri, stageErrors
}
