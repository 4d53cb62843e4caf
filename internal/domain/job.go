package domain

import (
	"fmt"
	"time"
)

// BatchJobState represents the lifecycle state of a batch summarization job.
type BatchJobState string

const (
	BatchJobStatePending             BatchJobState = "pending"
	BatchJobStateProcessing          BatchJobState = "processing"
	BatchJobStateCompleted           BatchJobState = "completed"
	BatchJobStateCompletedWithErrors BatchJobState = "completed_with_errors"
	BatchJobStateFailed              BatchJobState = "failed"
	BatchJobStateCancelled           BatchJobState = "cancelled"
)

// ItemStatus represents the outcome of a single item within a batch job.
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusCompleted ItemStatus = "completed"
	ItemStatusFailed    ItemStatus = "failed"
	// ItemStatusSkipped marks items not processed: the referenced document
	// no longer exists, or the job was cancelled or aborted by a fatal
	// failure before reaching them.
	ItemStatusSkipped ItemStatus = "skipped"
)

// ItemResult records the per-document outcome of a batch job item.
type ItemResult struct {
	DocumentID string     `json:"document_id"`
	Status     ItemStatus `json:"status"`
	Summary    *Summary   `json:"summary,omitempty"`
	Error      string     `json:"error,omitempty"`
	Attempts   int        `json:"attempts"`
}

// BatchJob is an asynchronous summarization job over a set of documents.
type BatchJob struct {
	ID         string        `json:"id"`
	State      BatchJobState `json:"state"`
	Length     SummaryLength `json:"length"`
	Items      []ItemResult  `json:"items"`
	CreatedAt  time.Time     `json:"created_at"`
	StartedAt  *time.Time    `json:"started_at,omitempty"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}

// NewBatchJob creates a pending job with one pending item per document ID.
func NewBatchJob(id string, documentIDs []string, length SummaryLength, now time.Time) *BatchJob {
	items := make([]ItemResult, len(documentIDs))
	for i, docID := range documentIDs {
		items[i] = ItemResult{DocumentID: docID, Status: ItemStatusPending}
	}
	return &BatchJob{
		ID:        id,
		State:     BatchJobStatePending,
		Length:    length,
		Items:     items,
		CreatedAt: now,
	}
}

// Snapshot returns a deep copy of the job. Callers may mutate the copy
// without affecting the stored job.
func (j *BatchJob) Snapshot() *BatchJob {
	cp := *j
	cp.Items = make([]ItemResult, len(j.Items))
	copy(cp.Items, j.Items)
	for i := range cp.Items {
		if cp.Items[i].Summary != nil {
			s := *cp.Items[i].Summary
			cp.Items[i].Summary = &s
		}
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		cp.StartedAt = &t
	}
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		cp.FinishedAt = &t
	}
	return &cp
}

// Counts returns the number of items in each terminal state.
func (j *BatchJob) Counts() (completed, failed, skipped int) {
	for _, item := range j.Items {
		switch item.Status {
		case ItemStatusCompleted:
			completed++
		case ItemStatusFailed:
			failed++
		case ItemStatusSkipped:
			skipped++
		}
	}
	return completed, failed, skipped
}

// IsTerminal reports whether the job has reached a final state.
func (j *BatchJob) IsTerminal() bool {
	switch j.State {
	case BatchJobStateCompleted, BatchJobStateCompletedWithErrors, BatchJobStateFailed, BatchJobStateCancelled:
		return true
	}
	return false
}

// FinalState derives the terminal job state from its item outcomes.
// All completed yields completed; failed and skipped items count as
// errors, so a mix yields completed_with_errors and a job with no
// completed items yields failed. An empty job is completed.
func (j *BatchJob) FinalState() BatchJobState {
	completed, failed, skipped := j.Counts()
	switch {
	case failed == 0 && skipped == 0:
		return BatchJobStateCompleted
	case completed == 0:
		return BatchJobStateFailed
	default:
		return BatchJobStateCompletedWithErrors
	}
}

// ValidateBatchJob validates a BatchJob instance
func ValidateBatchJob(j *BatchJob) error {
	if j == nil {
		return fmt.Errorf("batch job cannot be nil")
	}
	if j.ID == "" {
		return fmt.Errorf("batch job ID is required")
	}
	if !isValidBatchJobState(j.State) {
		return fmt.Errorf("batch job State is invalid: %s", j.State)
	}
	if err := ValidateSummaryLength(j.Length); err != nil {
		return err
	}
	for _, item := range j.Items {
		if item.DocumentID == "" {
			return fmt.Errorf("batch job item DocumentID is required")
		}
	}
	return nil
}

func isValidBatchJobState(s BatchJobState) bool {
	switch s {
	case BatchJobStatePending, BatchJobStateProcessing, BatchJobStateCompleted,
		BatchJobStateCompletedWithErrors, BatchJobStateFailed, BatchJobStateCancelled:
		return true
	}
	return false
}
