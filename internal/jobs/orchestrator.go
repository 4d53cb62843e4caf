package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/docsense-ai/docsense/internal/domain"
	"github.com/docsense-ai/docsense/internal/retry"
)

// Summarizer produces a summary for a single document.
type Summarizer interface {
	SummarizeDocument(ctx context.Context, documentID string, length domain.SummaryLength) (*domain.Summary, error)
}

// Config controls batch job execution.
type Config struct {
	// Workers is the number of concurrent items processed per job.
	Workers int
	// RatePerMinute caps summarization calls across all running jobs.
	RatePerMinute int
	// Retry governs per-item retries on rate-limited and transient errors.
	Retry retry.Config
}

// DefaultConfig provides sane defaults for batch processing.
func DefaultConfig() Config {
	return Config{
		Workers:       4,
		RatePerMinute: 60,
		Retry:         retry.DefaultConfig(),
	}
}

// Orchestrator runs asynchronous batch summarization jobs. Each submitted
// job is processed by a worker pool sharing a global rate limiter, so
// concurrent jobs cannot exceed the provider budget together.
type Orchestrator struct {
	store      Store
	summarizer Summarizer
	cfg        Config
	limiter    *rate.Limiter
	newID      func() string

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	closed  bool
	wg      sync.WaitGroup
}

// NewOrchestrator creates a new Orchestrator instance
func NewOrchestrator(store Store, summarizer Summarizer, cfg Config) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.RatePerMinute <= 0 {
		cfg.RatePerMinute = 60
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = retry.DefaultConfig()
	}
	return &Orchestrator{
		store:      store,
		summarizer: summarizer,
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), cfg.Workers),
		newID:      uuid.NewString,
		cancels:    make(map[string]context.CancelFunc),
	}
}

// Submit creates a job and starts processing it in the background. The
// returned job reflects the state at submission time.
func (o *Orchestrator) Submit(ctx context.Context, documentIDs []string, length domain.SummaryLength) (*domain.BatchJob, error) {
	job := domain.NewBatchJob(o.newID(), documentIDs, length, time.Now().UTC())
	if err := domain.ValidateBatchJob(job); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid batch job", err)
	}

	o.mu.Lock()
	closed := o.closed
	o.mu.Unlock()
	if closed {
		return nil, domain.NewDomainError(domain.ErrCodeInvalidOperation, "job orchestrator is shut down")
	}

	if err := o.store.Create(ctx, job); err != nil {
		return nil, err
	}

	o.mu.Lock()
	// Shutdown may have won the race since the check above; registering a
	// runner now would never be cancelled and would race wg.Wait.
	if o.closed {
		o.mu.Unlock()
		return nil, domain.NewDomainError(domain.ErrCodeInvalidOperation, "job orchestrator is shut down")
	}
	runCtx, cancel := context.WithCancel(context.Background())
	o.cancels[job.ID] = cancel
	o.wg.Add(1)
	o.mu.Unlock()

	go o.run(runCtx, job.Snapshot())

	return job.Snapshot(), nil
}

// Get returns the current state of a job.
func (o *Orchestrator) Get(ctx context.Context, id string) (*domain.BatchJob, error) {
	return o.store.Get(ctx, id)
}

// Cancel stops a running job. Items already processed keep their results;
// the job finishes at the next item boundary. Finished jobs cannot be
// cancelled.
func (o *Orchestrator) Cancel(ctx context.Context, id string) error {
	job, err := o.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if job.IsTerminal() {
		return domain.ErrJobNotCancellable
	}

	o.mu.Lock()
	cancel, ok := o.cancels[id]
	o.mu.Unlock()
	if ok {
		cancel()
		return nil
	}

	// No runner registered (e.g. the process restarted with the job still
	// pending in the store); finalize it directly.
	now := time.Now().UTC()
	job.State = domain.BatchJobStateCancelled
	job.FinishedAt = &now
	return o.store.Update(ctx, job)
}

// Shutdown cancels all running jobs and waits for their runners to exit
// or the context to expire.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	o.closed = true
	for _, cancel := range o.cancels {
		cancel()
	}
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) release(jobID string) {
	o.mu.Lock()
	if cancel, ok := o.cancels[jobID]; ok {
		cancel()
		delete(o.cancels, jobID)
	}
	o.mu.Unlock()
	o.wg.Done()
}
