package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/mlingest/internal/config"
	"github.com/akolanti/mlingest/internal/domain/jobModel"
	"github.com/akolanti/mlingest/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem RunStore")

type storedRun struct {
	run       jobModel.Job
	expiresAt time.Time
}

// InMemoryJobStore is the fallback run store. Records expire after the same
// TTL the redis store uses so both backends forget runs at the same age.
type InMemoryJobStore struct {
	mu   sync.Mutex
	runs map[string]storedRun
	ttl  time.Duration
	now  func() time.Time
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return NewInMemoryJobStore(config.RedisRunStoreTTL, time.Now)
}

func NewInMemoryJobStore(ttl time.Duration, now func() time.Time) *InMemoryJobStore {
	return &InMemoryJobStore{
		runs: make(map[string]storedRun),
		ttl:  ttl,
		now:  now,
	}
}

// SaveJob replaces the record and restarts its TTL.
func (s *InMemoryJobStore) SaveJob(ctx context.Context, run jobModel.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.Id] = storedRun{run: run, expiresAt: s.now().Add(s.ttl)}
	inMemLogger.Debug("Saved run", "jobId", run.Id, "status", run.Status)
	return nil
}

func (s *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, found := s.runs[jobId]
	if found && !s.now().Before(stored.expiresAt) {
		delete(s.runs, jobId)
		found = false
	}
	inMemLogger.Debug("Run lookup", "jobId", jobId, "found", found)
	return stored.run, found
}

func (s *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, jobID)
}
