package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"corruption-watch/internal/pipeline/apperr"
	"corruption-watch/internal/pipeline/model"
)

// ReportMetadata captures the run's configuration, echoed into the
// summary report's "metadata" section.
type ReportMetadata struct {
	InputFile     string
	Concurrency   int
	MinConfidence float64
	SkipExisting  bool
	DryRun        bool
}

type summaryReport struct {
	Metadata struct {
		Timestamp     string  `json:"timestamp"`
		InputFile     string  `json:"input_file"`
		DryRun        bool    `json:"dry_run"`
		Concurrency   int     `json:"concurrency"`
		MinConfidence float64 `json:"min_confidence"`
		SkipExisting  bool    `json:"skip_existing"`
	} `json:"metadata"`
	Summary struct {
		TotalArticles   int `json:"total_articles"`
		Processed       int `json:"processed"`
		Extracted       int `json:"extracted"`
		Classified      int `json:"classified"`
		Relevant        int `json:"relevant"`
		Stored          int `json:"stored"`
		Duplicates      int `json:"duplicates"`
		SkippedExisting int `json:"skipped_existing"`
		TotalErrors     int `json:"total_errors"`
	} `json:"summary"`
	ErrorsByCategory struct {
		Extraction     int `json:"extraction"`
		Classification int `json:"classification"`
		Storage        int `json:"storage"`
		Other          int `json:"other"`
	} `json:"errors_by_category"`
	Performance struct {
		ElapsedSeconds    float64 `json:"elapsed_seconds"`
		ArticlesPerSecond float64 `json:"articles_per_second"`
	} `json:"performance"`
	Outcomes struct {
		SuccessRate   string `json:"success_rate"`
		RelevanceRate string `json:"relevance_rate"`
		StorageRate   string `json:"storage_rate"`
	} `json:"outcomes"`
}

// WriteSummaryReport builds and writes batch_<timestamp>.json under
// outputDir/batch_results, per spec §4.9 step 6 and §6's field list.
func WriteSummaryReport(outputDir, timestamp string, snap Snapshot, meta ReportMetadata) (string, error) {
	totalErrors := snap.ExtractionErrors + snap.ClassificationErrors + snap.StorageErrors + snap.OtherErrors

	var report summaryReport
	report.Metadata.Timestamp = time.Now().UTC().Format(time.RFC3339)
	report.Metadata.InputFile = meta.InputFile
	report.Metadata.DryRun = meta.DryRun
	report.Metadata.Concurrency = meta.Concurrency
	report.Metadata.MinConfidence = meta.MinConfidence
	report.Metadata.SkipExisting = meta.SkipExisting

	report.Summary.TotalArticles = snap.Total
	report.Summary.Processed = snap.Processed
	report.Summary.Extracted = snap.Extracted
	report.Summary.Classified = snap.Classified
	report.Summary.Relevant = snap.Relevant
	report.Summary.Stored = snap.Stored
	report.Summary.Duplicates = snap.Duplicates
	report.Summary.SkippedExisting = snap.SkippedExisting
	report.Summary.TotalErrors = totalErrors

	report.ErrorsByCategory.Extraction = snap.ExtractionErrors
	report.ErrorsByCategory.Classification = snap.ClassificationErrors
	report.ErrorsByCategory.Storage = snap.StorageErrors
	report.ErrorsByCategory.Other = snap.OtherErrors

	report.Performance.ElapsedSeconds = round2(snap.ElapsedSeconds)
	report.Performance.ArticlesPerSecond = round2(snap.ArticlesPerSecond)

	report.Outcomes.SuccessRate = rate(snap.Processed-totalErrors, snap.Processed)
	report.Outcomes.RelevanceRate = rate(snap.Relevant, snap.Processed)
	report.Outcomes.StorageRate = rate(snap.Stored, snap.Processed)

	resultsDir := filepath.Join(outputDir, "batch_results")
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}

	path := filepath.Join(resultsDir, fmt.Sprintf("batch_%s.json", timestamp))
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal summary report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write summary report: %w", err)
	}
	return path, nil
}

type errorRecord struct {
	URL           string `json:"url"`
	Section       string `json:"section"`
	ErrorCategory string `json:"error_category"`
	ErrorMessage  string `json:"error_message"`
	Extracted     bool   `json:"extracted"`
	Classified    bool   `json:"classified"`
	Relevant      bool   `json:"relevant"`
	Stored        bool   `json:"stored"`
	Timestamp     string `json:"timestamp"`
}

// WriteErrorReport writes batch_<timestamp>_errors.jsonl, one line
// per failed result, per spec §4.9 step 6. Returns "" with no error
// if there were no failures to report.
func WriteErrorReport(outputDir, timestamp string, results []model.OrchestrationResult) (string, error) {
	var failed []model.OrchestrationResult
	for _, r := range results {
		if r.Error != "" {
			failed = append(failed, r)
		}
	}
	if len(failed) == 0 {
		return "", nil
	}

	resultsDir := filepath.Join(outputDir, "batch_results")
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}

	path := filepath.Join(resultsDir, fmt.Sprintf("batch_%s_errors.jsonl", timestamp))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create error report: %w", err)
	}
	defer func() { _ = f.Close() }()

	now := time.Now().UTC().Format(time.RFC3339)
	encoder := json.NewEncoder(f)
	for _, r := range failed {
		record := errorRecord{
			URL:     r.URL,
			Section: r.Section,
			ErrorCategory: apperr.Categorize(apperr.Result{
				Extracted: r.Extracted, Classified: r.Classified, Relevant: r.Relevant, Stored: r.Stored, Error: r.Error,
			}),
			ErrorMessage: r.Error,
			Extracted:    r.Extracted,
			Classified:   r.Classified,
			Relevant:     r.Relevant,
			Stored:       r.Stored,
			Timestamp:    now,
		}
		if err := encoder.Encode(record); err != nil {
			return "", fmt.Errorf("write error record: %w", err)
		}
	}
	return path, nil
}

func rate(numerator, denominator int) string {
	if denominator <= 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(numerator)/float64(denominator)*100)
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
