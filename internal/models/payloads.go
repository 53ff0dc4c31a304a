package models

// These structs define the JSON payloads for the HTTP surface exposed by
// the extractor service and for the capture service it consumes.

// StartExtractionRequest starts one extraction run.
type StartExtractionRequest struct {
	URL        string   `json:"url"`
	Adjectives []string `json:"adjectives,omitempty"`
}

// StartExtractionResponse acknowledges a fire-and-forget start.
type StartExtractionResponse struct {
	SessionID string `json:"sessionId"`
}

// ProgressResponse returns the events at and after the caller's cursor.
// Each observer tracks its own cursor and polls.
type ProgressResponse struct {
	SessionID  string          `json:"sessionId"`
	Status     string          `json:"status"`
	Events     []ProgressEvent `json:"events"`
	NextCursor int             `json:"nextCursor"`
}

// ResultResponse is the terminal outcome of a session. Specification,
// Evaluation and Trace are present only for completed sessions; Error only
// for failed ones. A terminal error never carries partial specification data.
type ResultResponse struct {
	SessionID     string              `json:"sessionId"`
	Status        string              `json:"status"`
	Specification *BrandSpecification `json:"specification,omitempty"`
	Evaluation    *EvaluationResult   `json:"evaluation,omitempty"`
	Trace         *ExecutionTrace     `json:"trace,omitempty"`
	Error         string              `json:"error,omitempty"`
}

// CaptureRequest is the payload sent to the capture service.
type CaptureRequest struct {
	URL       string   `json:"url"`
	Viewports []string `json:"viewports,omitempty"`
}

// CaptureScreenshot is one raster screenshot returned by the capture
// service. Data is base64 in transit (encoding/json handles []byte).
type CaptureScreenshot struct {
	Label    string `json:"label"`
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// CaptureResponse is the capture service's reply: screenshots plus
// structural and computed-style summaries of the page.
type CaptureResponse struct {
	Screenshots  []CaptureScreenshot `json:"screenshots"`
	DOMSummary   string              `json:"domSummary"`
	StyleSummary string              `json:"styleSummary"`
}
