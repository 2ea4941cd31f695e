package store

import (
	"context"
	"encoding/json"

	"github.com/akolanti/mlingest/internal/config"
	"github.com/akolanti/mlingest/internal/data/redisStore"
	"github.com/akolanti/mlingest/internal/domain/jobModel"
	"github.com/akolanti/mlingest/pkg/logger_i"
)

// RedisEventStore keeps one list of step events per run.
type RedisEventStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisEventStore(ctx context.Context) *RedisEventStore {
	internal := redisStore.GetRedisStore(ctx, config.RedisRunEventStore)
	if internal == nil {
		return nil
	}
	return NewRedisEventStore(internal)
}

func NewRedisEventStore(store *redisStore.Store) *RedisEventStore {
	return &RedisEventStore{
		store:  store,
		logger: logger_i.NewLogger("EventStore"),
	}
}

func (s *RedisEventStore) AppendEvent(ctx context.Context, jobId string, event jobModel.StepEvent) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "job Id", jobId)
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := s.store.ListPushWithTTL(ctx, jobId, data, config.RedisRunEventStoreTTL); err != nil {
		log.Error("error saving step event", "error", err)
		return err
	}
	log.Debug("Saved step event", "step", event.Step)
	return nil
}

func (s *RedisEventStore) GetEvents(ctx context.Context, jobId string) ([]jobModel.StepEvent, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "job Id", jobId)
	log.Debug("Getting step history")

	raw, err := s.store.ListGetAll(ctx, jobId)
	if err != nil {
		log.Error("Error getting history", "error", err)
		return nil, err
	}
	events := make([]jobModel.StepEvent, 0, len(raw))
	for _, item := range raw {
		var event jobModel.StepEvent
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			log.Error("Skipping unreadable step event", "error", err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}
