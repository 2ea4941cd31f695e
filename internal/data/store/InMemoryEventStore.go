package store

import (
	"context"
	"sync"

	"github.com/akolanti/mlingest/internal/domain/jobModel"
)

type InMemoryEventStore struct {
	eventLock *sync.RWMutex
	eventMap  map[string][]jobModel.StepEvent
}

func InitInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		eventLock: new(sync.RWMutex),
		eventMap:  make(map[string][]jobModel.StepEvent),
	}
}

func (store *InMemoryEventStore) AppendEvent(ctx context.Context, jobId string, event jobModel.StepEvent) error {
	store.eventLock.Lock()
	defer store.eventLock.Unlock()
	store.eventMap[jobId] = append(store.eventMap[jobId], event)
	return nil
}

// GetEvents returns a copy so callers never share the backing array.
func (store *InMemoryEventStore) GetEvents(ctx context.Context, jobId string) ([]jobModel.StepEvent, error) {
	store.eventLock.RLock()
	defer store.eventLock.RUnlock()
	return append([]jobModel.StepEvent(nil), store.eventMap[jobId]...), nil
}
