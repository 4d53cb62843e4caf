package jobs

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/docsense-ai/docsense/internal/domain"
	"github.com/docsense-ai/docsense/internal/retry"
)

// run processes one job to completion with a pool of workers. Store writes
// use a detached context so progress survives job cancellation.
func (o *Orchestrator) run(ctx context.Context, job *domain.BatchJob) {
	defer o.release(job.ID)

	storeCtx := context.Background()

	now := time.Now().UTC()
	job.State = domain.BatchJobStateProcessing
	job.StartedAt = &now
	if err := o.store.Update(storeCtx, job); err != nil {
		log.Printf("jobs: failed to persist job %s start: %v", job.ID, err)
	}

	log.Printf("jobs: job %s started (%d items, %d workers)", job.ID, len(job.Items), o.cfg.Workers)

	var (
		jobMu      sync.Mutex
		authFailed atomic.Bool
	)

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < o.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				item := o.processItem(ctx, job.Items[i], job.Length, &authFailed)

				jobMu.Lock()
				job.Items[i] = item
				snapshot := job.Snapshot()
				jobMu.Unlock()

				if err := o.store.Update(storeCtx, snapshot); err != nil {
					log.Printf("jobs: failed to persist job %s progress: %v", job.ID, err)
				}
			}
		}()
	}
	for i := range job.Items {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	finished := time.Now().UTC()
	job.FinishedAt = &finished
	switch {
	case ctx.Err() != nil:
		job.State = domain.BatchJobStateCancelled
	case authFailed.Load():
		job.State = domain.BatchJobStateFailed
	default:
		job.State = job.FinalState()
	}

	if err := o.store.Update(storeCtx, job); err != nil {
		log.Printf("jobs: failed to persist job %s result: %v", job.ID, err)
	}

	completed, failed, skipped := job.Counts()
	log.Printf("jobs: job %s finished state=%s completed=%d failed=%d skipped=%d", job.ID, job.State, completed, failed, skipped)
}

// processItem summarizes one document with rate limiting and retries.
// Cancellation and a prior fatal failure skip the item untouched.
func (o *Orchestrator) processItem(ctx context.Context, item domain.ItemResult, length domain.SummaryLength, authFailed *atomic.Bool) domain.ItemResult {
	if ctx.Err() != nil {
		item.Status = domain.ItemStatusSkipped
		item.Error = "job cancelled"
		return item
	}
	if authFailed.Load() {
		item.Status = domain.ItemStatusSkipped
		item.Error = "aborted: authentication failed"
		return item
	}

	if err := o.limiter.Wait(ctx); err != nil {
		item.Status = domain.ItemStatusSkipped
		item.Error = "job cancelled"
		return item
	}

	attempts := 0
	summary, err := retry.DoWithResult(ctx, o.cfg.Retry, func(ctx context.Context) (*domain.Summary, error) {
		attempts++
		return o.summarizer.SummarizeDocument(ctx, item.DocumentID, length)
	})
	item.Attempts = attempts

	switch {
	case err == nil:
		item.Status = domain.ItemStatusCompleted
		item.Summary = summary
	case errors.Is(err, domain.ErrDocumentNotFound):
		item.Status = domain.ItemStatusSkipped
		item.Error = err.Error()
	case domain.IsAuth(err):
		// Auth failures affect every remaining item identically; stop the
		// whole job instead of burning through the batch.
		authFailed.Store(true)
		item.Status = domain.ItemStatusFailed
		item.Error = err.Error()
	case ctx.Err() != nil:
		item.Status = domain.ItemStatusSkipped
		item.Error = "job cancelled"
	default:
		item.Status = domain.ItemStatusFailed
		item.Error = err.Error()
	}

	return item
}
