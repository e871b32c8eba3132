package batch_test

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corruption-watch/internal/pipeline/model"
	"corruption-watch/internal/usecase/batch"
)

func TestWriteSummaryReport(t *testing.T) {
	dir := t.TempDir()
	stats := batch.NewStatistics(10)
	stats.Apply(batch.Delta{Extracted: true, Classified: true, Relevant: true, Stored: true})
	stats.Apply(batch.Delta{ErrorCategory: "extraction"})

	path, err := batch.WriteSummaryReport(dir, "20260101_120000", stats.Snapshot(), batch.ReportMetadata{
		InputFile: "leads.jsonl", Concurrency: 4, MinConfidence: 0.7, SkipExisting: true,
	})

	require.NoError(t, err)
	assert.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	metadata := parsed["metadata"].(map[string]any)
	assert.Equal(t, "leads.jsonl", metadata["input_file"])
	summary := parsed["summary"].(map[string]any)
	assert.Equal(t, float64(2), summary["processed"])
	assert.Equal(t, float64(1), summary["stored"])
}

func TestWriteErrorReport_NoFailuresWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path, err := batch.WriteErrorReport(dir, "20260101_120000", []model.OrchestrationResult{
		{URL: "https://example.com/a", Stored: true, Extracted: true, Classified: true, Relevant: true},
	})

	require.NoError(t, err)
	assert.Empty(t, path, "no failures means no error report should be written")
}

func TestWriteErrorReport_WritesOneLinePerFailure(t *testing.T) {
	dir := t.TempDir()
	results := []model.OrchestrationResult{
		{URL: "https://example.com/ok", Stored: true, Extracted: true, Classified: true, Relevant: true},
		{URL: "https://example.com/bad", Extracted: false, Error: "Failed to extract article: timeout", ErrorStage: "extraction"},
	}

	path, err := batch.WriteErrorReport(dir, "20260101_120000", results)

	require.NoError(t, err)
	assert.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var record map[string]any
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal(t, "https://example.com/bad", record["url"])
	assert.Equal(t, "extraction", record["error_category"])
}
