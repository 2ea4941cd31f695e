package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/mlingest/internal/config"
	"github.com/akolanti/mlingest/internal/data/redisStore"
	"github.com/akolanti/mlingest/internal/data/store"
	"github.com/akolanti/mlingest/internal/domain/artifactModel"
	"github.com/akolanti/mlingest/internal/domain/jobModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
)

func newMiniRedisStore(t *testing.T) (*miniredis.Miniredis, *redisStore.Store) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redisStore.NewTestStore(client)
}

func TestRedisJobStore_Lifecycle(t *testing.T) {
	mr, internalStore := newMiniRedisStore(t)
	jobStore := store.NewRedisJobStore(internalStore)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	jobID := "job_abc_123"

	testJob := jobModel.Job{
		Id:     jobID,
		Status: jobModel.JobStatusComplete,
		JobPayload: jobModel.JobPayload{
			CollectionName: "Proj1-Data",
			SplitRatio:     0.25,
		},
		Artifact: &artifactModel.DataIngestionArtifact{
			TrainedFilePath: "artifact/ts/data_ingestion/ingested/train.csv",
			TestFilePath:    "artifact/ts/data_ingestion/ingested/test.csv",
		},
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		if err := jobStore.SaveJob(ctx, testJob); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		retrievedJob, found := jobStore.GetJob(ctx, jobID)
		if !found {
			t.Fatal("Job was saved but not found in Redis")
		}
		if diff := cmp.Diff(testJob, retrievedJob); diff != "" {
			t.Errorf("job mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("TTL is applied", func(t *testing.T) {
		if ttl := mr.TTL(jobID); ttl != config.RedisRunStoreTTL {
			t.Errorf("ttl = %v; want %v", ttl, config.RedisRunStoreTTL)
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		_, found := jobStore.GetJob(ctx, "ghost-id")
		if found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Delete Job", func(t *testing.T) {
		jobStore.DeleteJob(ctx, jobID)

		if mr.Exists(jobID) {
			t.Error("Job still exists in Redis after DeleteJob call")
		}
	})
}

func TestRedisJobStore_Concurrent(t *testing.T) {
	_, internalStore := newMiniRedisStore(t)
	jobStore := store.NewRedisJobStore(internalStore)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "race-trace")
	job := jobModel.Job{Id: "race-job"}

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = jobStore.SaveJob(ctx, job)
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
	wg.Wait()

	if _, found := jobStore.GetJob(ctx, "race-job"); !found {
		t.Error("job missing after concurrent saves")
	}
}

func TestRedisEventStore_KeepsOrder(t *testing.T) {
	mr, internalStore := newMiniRedisStore(t)
	events := store.NewRedisEventStore(internalStore)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "trace")

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	want := []jobModel.StepEvent{
		{Step: jobModel.IngestStart, At: at},
		{Step: jobModel.IngestFetched, At: at.Add(time.Second)},
		{Step: jobModel.Error, At: at.Add(2 * time.Second)},
	}
	for _, e := range want {
		if err := events.AppendEvent(ctx, "run-1", e); err != nil {
			t.Fatalf("AppendEvent failed: %v", err)
		}
	}

	got, err := events.GetEvents(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if ttl := mr.TTL("run-1"); ttl != config.RedisRunEventStoreTTL {
		t.Errorf("ttl = %v; want %v", ttl, config.RedisRunEventStoreTTL)
	}

	empty, err := events.GetEvents(ctx, "unknown")
	if err != nil || len(empty) != 0 {
		t.Errorf("unknown run: events=%v err=%v", empty, err)
	}
}

func TestInMemoryStores(t *testing.T) {
	ctx := context.Background()
	jobs := store.InitInMemoryJobStore()
	events := store.InitInMemoryEventStore()

	if err := jobs.SaveJob(ctx, jobModel.Job{Id: "a", Status: jobModel.JobStatusQueued}); err != nil {
		t.Fatal(err)
	}
	got, found := jobs.GetJob(ctx, "a")
	if !found || got.Status != jobModel.JobStatusQueued {
		t.Errorf("GetJob = %+v, %v", got, found)
	}
	jobs.DeleteJob(ctx, "a")
	if _, found := jobs.GetJob(ctx, "a"); found {
		t.Error("job still present after delete")
	}

	_ = events.AppendEvent(ctx, "a", jobModel.StepEvent{Step: jobModel.IngestStart})
	_ = events.AppendEvent(ctx, "a", jobModel.StepEvent{Step: jobModel.Complete})
	history, _ := events.GetEvents(ctx, "a")
	if len(history) != 2 || history[1].Step != jobModel.Complete {
		t.Errorf("history = %+v", history)
	}
}

func TestInMemoryJobStore_ExpiresLikeRedis(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	jobs := store.NewInMemoryJobStore(time.Hour, func() time.Time { return clock })

	_ = jobs.SaveJob(ctx, jobModel.Job{Id: "a", Status: jobModel.JobStatusRunning})
	clock = clock.Add(59 * time.Minute)
	if _, found := jobs.GetJob(ctx, "a"); !found {
		t.Fatal("run expired before its TTL")
	}

	_ = jobs.SaveJob(ctx, jobModel.Job{Id: "a", Status: jobModel.JobStatusComplete})
	clock = clock.Add(59 * time.Minute)
	got, found := jobs.GetJob(ctx, "a")
	if !found || got.Status != jobModel.JobStatusComplete {
		t.Fatalf("saving again must restart the TTL, got %+v found=%v", got, found)
	}

	clock = clock.Add(time.Minute)
	if _, found := jobs.GetJob(ctx, "a"); found {
		t.Error("run still present after its TTL")
	}
}
