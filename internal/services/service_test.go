package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvellis/brandflow/internal/models"
	"github.com/nvellis/brandflow/internal/session"
)

func newTestService(t *testing.T, capture CaptureAdapter, evaluator EvaluationAdapter) *ExtractionService {
	t.Helper()
	orch := newTestOrchestrator(t,
		capture,
		stubAnalyzer{raw: fullRawTokens(), metrics: modelCall(10000, 1800)},
		evaluator,
		&stubRefinementAdapter{},
	)
	return NewExtractionService(orch, session.NewRegistry(time.Hour, time.Minute))
}

// waitForTerminal polls the progress stream the way an HTTP observer would,
// cursor and all, until the terminal event arrives.
func waitForTerminal(t *testing.T, s *ExtractionService, id string) []models.ProgressEvent {
	t.Helper()
	var all []models.ProgressEvent
	cursor := 0
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		progress, err := s.StreamProgress(id, cursor)
		require.NoError(t, err)
		all = append(all, progress.Events...)
		cursor = progress.NextCursor
		if len(all) > 0 && all[len(all)-1].IsTerminal() {
			return all
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session %s did not reach a terminal event", id)
	return nil
}

func TestStartExtractionRejectsInvalidURLs(t *testing.T) {
	s := newTestService(t,
		stubCapture{resp: captureFixture()},
		stubEvaluator{eval: evaluationWithScore(4.7), metrics: modelCall(2500, 600)},
	)

	for _, bad := range []string{"", "example.com", "ftp://example.com/file", "https://", "::not-a-url"} {
		_, err := s.StartExtraction(bad, nil)
		assert.Error(t, err, "url %q should be rejected", bad)
	}
}

func TestStartExtractionCompletesSession(t *testing.T) {
	s := newTestService(t,
		stubCapture{resp: captureFixture()},
		stubEvaluator{eval: evaluationWithScore(4.7), metrics: modelCall(2500, 600)},
	)

	id, err := s.StartExtraction("https://example.com", []string{"bold"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	events := waitForTerminal(t, s, id)
	assert.Equal(t, models.StageComplete, events[len(events)-1].Stage)

	result, err := s.GetResult(id)
	require.NoError(t, err)
	assert.Equal(t, string(session.StatusCompleted), result.Status)
	require.NotNil(t, result.Specification)
	require.NotNil(t, result.Evaluation)
	require.NotNil(t, result.Trace)
	assert.Empty(t, result.Error)
}

func TestFailedSessionCarriesErrorNotPartialSpec(t *testing.T) {
	s := newTestService(t,
		stubCapture{resp: captureFixture()},
		stubEvaluator{err: assert.AnError},
	)

	id, err := s.StartExtraction("https://example.com", nil)
	require.NoError(t, err)

	events := waitForTerminal(t, s, id)
	assert.Equal(t, models.StageErrorEvent, events[len(events)-1].Stage)

	result, err := s.GetResult(id)
	require.NoError(t, err)
	assert.Equal(t, string(session.StatusFailed), result.Status)
	assert.NotEmpty(t, result.Error)
	assert.Nil(t, result.Specification)
	assert.Nil(t, result.Evaluation)
	// The trace of the failed run is still available for diagnosis.
	assert.NotNil(t, result.Trace)
}

func TestStartFromBundleSkipsLiveCapture(t *testing.T) {
	// The live capture adapter would fail; the bundle path must not touch it.
	s := newTestService(t,
		stubCapture{err: assert.AnError},
		stubEvaluator{eval: evaluationWithScore(4.7), metrics: modelCall(2500, 600)},
	)

	bundle := &BundleFile{URL: "https://example.com", Capture: *captureFixture()}
	id, err := s.StartFromBundle(bundle)
	require.NoError(t, err)

	events := waitForTerminal(t, s, id)
	assert.Equal(t, models.StageComplete, events[len(events)-1].Stage)
}

func TestStartFromBundleRejectsEmptyBundle(t *testing.T) {
	s := newTestService(t,
		stubCapture{resp: captureFixture()},
		stubEvaluator{eval: evaluationWithScore(4.7), metrics: modelCall(2500, 600)},
	)

	_, err := s.StartFromBundle(nil)
	assert.Error(t, err)
	_, err = s.StartFromBundle(&BundleFile{})
	assert.Error(t, err)
}

func TestProgressForUnknownSession(t *testing.T) {
	s := newTestService(t,
		stubCapture{resp: captureFixture()},
		stubEvaluator{eval: evaluationWithScore(4.7), metrics: modelCall(2500, 600)},
	)

	_, err := s.StreamProgress("missing", 0)
	assert.ErrorIs(t, err, session.ErrNotFound)
	_, err = s.GetResult("missing")
	assert.ErrorIs(t, err, session.ErrNotFound)
}
