package models

import "time"

// ExtractionRecord is the durable summary of one completed extraction,
// written to Firestore by the finalize stage. It indexes the specification
// artifact stored in GCS; the full session result itself stays in memory.
type ExtractionRecord struct {
	SessionID        string    `firestore:"sessionId,omitempty"`
	SourceURL        string    `firestore:"sourceUrl,omitempty"`
	Status           string    `firestore:"status,omitempty"`
	ErrorDetails     string    `firestore:"errorDetails,omitempty"`
	SpecificationID  string    `firestore:"specificationId,omitempty"`
	SchemaVersion    string    `firestore:"schemaVersion,omitempty"`
	OverallScore     float64   `firestore:"overallScore,omitempty"`
	QualityBand      string    `firestore:"qualityBand,omitempty"`
	TotalTokens      int       `firestore:"totalTokens,omitempty"`
	EstimatedCostUSD float64   `firestore:"estimatedCostUsd,omitempty"`
	SpecGCSUri       string    `firestore:"specGcsUri,omitempty"`
	CreatedAt        time.Time `firestore:"createdAt,omitempty"`
	CompletedAt      time.Time `firestore:"completedAt,omitempty"`
}
