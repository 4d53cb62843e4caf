package jobs

import (
	"context"
	"sync"

	"github.com/docsense-ai/docsense/internal/domain"
)

// Store persists batch jobs. Implementations must return copies; callers
// may mutate what they receive.
type Store interface {
	Create(ctx context.Context, job *domain.BatchJob) error
	Get(ctx context.Context, id string) (*domain.BatchJob, error)
	Update(ctx context.Context, job *domain.BatchJob) error
}

// MemoryStore keeps jobs in memory. Used when no database is configured
// and in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*domain.BatchJob
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*domain.BatchJob)}
}

func (s *MemoryStore) Create(ctx context.Context, job *domain.BatchJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job.Snapshot()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.BatchJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return job.Snapshot(), nil
}

func (s *MemoryStore) Update(ctx context.Context, job *domain.BatchJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return domain.ErrJobNotFound
	}
	s.jobs[job.ID] = job.Snapshot()
	return nil
}
