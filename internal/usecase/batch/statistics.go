// Package batch implements the batch driver of spec §4.9: load a
// JSONL file of discovered articles, run each through the
// orchestration pipeline with bounded concurrency, and write a
// summary report plus a per-error JSONL.
package batch

import (
	"sync"
	"time"
)

// Statistics is the shared counter set updated by every worker under
// a single mutex, per spec §5's "one mutex guards all counters"
// requirement.
type Statistics struct {
	mu sync.Mutex

	Total           int
	Processed       int
	Extracted       int
	Classified      int
	Relevant        int
	Stored          int
	Duplicates      int
	SkippedExisting int

	ExtractionErrors     int
	ClassificationErrors int
	StorageErrors        int
	OtherErrors          int

	StartTime time.Time
}

// NewStatistics builds a Statistics with StartTime set to now.
func NewStatistics(total int) *Statistics {
	return &Statistics{Total: total, StartTime: time.Now()}
}

// Delta is the per-task increment applied after one article finishes
// processing.
type Delta struct {
	Extracted     bool
	Classified    bool
	Relevant      bool
	Stored        bool
	Duplicate     bool
	ErrorCategory string // "", "extraction", "classification", "storage", "other"
}

// Apply adds delta to the running totals under the lock.
func (s *Statistics) Apply(delta Delta) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Processed++
	if delta.Extracted {
		s.Extracted++
	}
	if delta.Classified {
		s.Classified++
	}
	if delta.Relevant {
		s.Relevant++
	}
	if delta.Stored {
		s.Stored++
	}
	if delta.Duplicate {
		s.Duplicates++
	}
	switch delta.ErrorCategory {
	case "extraction":
		s.ExtractionErrors++
	case "classification":
		s.ClassificationErrors++
	case "storage":
		s.StorageErrors++
	case "other":
		s.OtherErrors++
	}
}

// SetSkippedExisting records the skip-existing pre-filter count. Only
// ever called once, before any worker starts, so it does not need the
// lock, but takes it anyway for consistency with every other mutator.
func (s *Statistics) SetSkippedExisting(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SkippedExisting = n
}

// Snapshot is a point-in-time copy of every counter plus derived
// performance figures.
type Snapshot struct {
	Total                int
	Processed            int
	Extracted            int
	Classified           int
	Relevant             int
	Stored               int
	Duplicates           int
	SkippedExisting      int
	ExtractionErrors     int
	ClassificationErrors int
	StorageErrors        int
	OtherErrors          int
	ElapsedSeconds       float64
	ArticlesPerSecond    float64
}

// Snapshot copies every counter under the lock and computes elapsed
// time and throughput.
func (s *Statistics) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := time.Since(s.StartTime).Seconds()
	var perSecond float64
	if elapsed > 0 {
		perSecond = float64(s.Processed) / elapsed
	}

	return Snapshot{
		Total:                s.Total,
		Processed:            s.Processed,
		Extracted:            s.Extracted,
		Classified:           s.Classified,
		Relevant:             s.Relevant,
		Stored:               s.Stored,
		Duplicates:           s.Duplicates,
		SkippedExisting:      s.SkippedExisting,
		ExtractionErrors:     s.ExtractionErrors,
		ClassificationErrors: s.ClassificationErrors,
		StorageErrors:        s.StorageErrors,
		OtherErrors:          s.OtherErrors,
		ElapsedSeconds:       elapsed,
		ArticlesPerSecond:    perSecond,
	}
}
