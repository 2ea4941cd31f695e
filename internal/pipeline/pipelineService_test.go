package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/mlingest/internal/domain/artifactModel"
	"github.com/akolanti/mlingest/internal/domain/dataset"
	"github.com/akolanti/mlingest/internal/domain/jobModel"
	"github.com/akolanti/mlingest/internal/domain/pipelineError"
	"github.com/akolanti/mlingest/internal/pipeline"
	"github.com/google/go-cmp/cmp"
)

// --- Mocks ---

type mockExporter struct {
	frame *dataset.Frame
	err   error
	calls int
}

func (m *mockExporter) ExportAsTable(ctx context.Context, collectionName string, databaseName string) (*dataset.Frame, error) {
	m.calls++
	return m.frame, m.err
}

type mockMirror struct {
	OnMirror func(ctx context.Context, runId string, artifact artifactModel.DataIngestionArtifact) ([]string, error)
}

func (m *mockMirror) MirrorArtifact(ctx context.Context, runId string, artifact artifactModel.DataIngestionArtifact) ([]string, error) {
	return m.OnMirror(ctx, runId, artifact)
}

type mockEvents struct {
	mu     sync.Mutex
	events map[string][]jobModel.StepEvent
}

func (m *mockEvents) AppendEvent(ctx context.Context, jobId string, event jobModel.StepEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.events == nil {
		m.events = make(map[string][]jobModel.StepEvent)
	}
	m.events[jobId] = append(m.events[jobId], event)
	return nil
}

func (m *mockEvents) GetEvents(ctx context.Context, jobId string) ([]jobModel.StepEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[jobId], nil
}

func (m *mockEvents) steps(jobId string) []jobModel.InternalStatus {
	events, _ := m.GetEvents(context.Background(), jobId)
	steps := make([]jobModel.InternalStatus, 0, len(events))
	for _, e := range events {
		steps = append(steps, e.Step)
	}
	return steps
}

// --- Helpers ---

var fixedNow = time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)

func clearEnv(t *testing.T) {
	for _, key := range []string{"ARTIFACT_DIR", "INGEST_COLLECTION", "INGEST_DATABASE", "INGEST_SPLIT_RATIO", "INGEST_SPLIT_SEED"} {
		t.Setenv(key, "")
	}
}

func frameOf(n int) *dataset.Frame {
	frame := dataset.NewFrame()
	for i := 0; i < n; i++ {
		frame.AppendRecord([]string{"id"}, []dataset.Value{int64(i)})
	}
	return frame
}

func newJob(t *testing.T) jobModel.Job {
	return jobModel.Job{
		Id:      "run-1",
		TraceId: "trace-1",
		JobType: jobModel.JobTypeIngest,
		JobPayload: jobModel.JobPayload{
			ArtifactDir: t.TempDir(),
		},
	}
}

// --- Tests ---

func TestRunPipeline_Success(t *testing.T) {
	clearEnv(t)
	events := &mockEvents{}
	mirror := &mockMirror{OnMirror: func(ctx context.Context, runId string, artifact artifactModel.DataIngestionArtifact) ([]string, error) {
		return []string{runId + "/train.csv", runId + "/test.csv"}, nil
	}}
	service := pipeline.NewService(&mockExporter{frame: frameOf(8)},
		pipeline.WithEventStore(events),
		pipeline.WithMirror(mirror),
		pipeline.WithClock(func() time.Time { return fixedNow }))
	job := newJob(t)

	result := service.RunPipeline(context.Background(), job)

	if result.Status != jobModel.JobStatusComplete || result.CurrentStep != jobModel.Complete {
		t.Fatalf("status=%s step=%s error=%+v", result.Status, result.CurrentStep, result.Error)
	}
	wantTrain := filepath.Join(job.JobPayload.ArtifactDir, "03_09_2024_14_05_06", "data_ingestion", "ingested", "train.csv")
	if result.Artifact == nil || result.Artifact.TrainedFilePath != wantTrain {
		t.Fatalf("artifact = %+v; want train at %s", result.Artifact, wantTrain)
	}
	if _, err := os.Stat(wantTrain); err != nil {
		t.Errorf("train partition not written: %v", err)
	}
	if len(result.ObjectKeys) != 2 {
		t.Errorf("object keys = %v", result.ObjectKeys)
	}

	want := []jobModel.InternalStatus{
		jobModel.IngestStart, jobModel.IngestFetched, jobModel.IngestValidated,
		jobModel.IngestSplit, jobModel.IngestPersisted, jobModel.Complete, jobModel.IngestMirrored,
	}
	if diff := cmp.Diff(want, events.steps("run-1")); diff != "" {
		t.Errorf("recorded steps mismatch (-want +got):\n%s", diff)
	}
}

func TestRunPipeline_EmptyCollection(t *testing.T) {
	clearEnv(t)
	service := pipeline.NewService(&mockExporter{frame: dataset.NewFrame()})

	result := service.RunPipeline(context.Background(), newJob(t))

	if result.Status != jobModel.JobStatusError || result.CurrentStep != jobModel.Error {
		t.Fatalf("status=%s step=%s", result.Status, result.CurrentStep)
	}
	if result.Error.Kind != string(pipelineError.EmptyDatasetError) {
		t.Errorf("error kind = %q", result.Error.Kind)
	}
	if result.Error.Origin == "" {
		t.Error("error origin must be reported")
	}
	if result.Artifact != nil {
		t.Error("no artifact may be reported for a failed run")
	}
}

func TestRunPipeline_InvalidRatioSkipsExport(t *testing.T) {
	clearEnv(t)
	exporter := &mockExporter{frame: frameOf(8)}
	service := pipeline.NewService(exporter)
	job := newJob(t)
	job.JobPayload.SplitRatio = 1.5

	result := service.RunPipeline(context.Background(), job)

	if result.Error.Kind != string(pipelineError.ConfigurationError) {
		t.Errorf("error kind = %q", result.Error.Kind)
	}
	if exporter.calls != 0 {
		t.Errorf("exporter called %d times", exporter.calls)
	}
}

func TestRunPipeline_MirrorFailure(t *testing.T) {
	clearEnv(t)
	mirror := &mockMirror{OnMirror: func(ctx context.Context, runId string, artifact artifactModel.DataIngestionArtifact) ([]string, error) {
		return nil, pipelineError.New(pipelineError.PersistenceError, "bucket unreachable")
	}}
	service := pipeline.NewService(&mockExporter{frame: frameOf(8)}, pipeline.WithMirror(mirror))

	result := service.RunPipeline(context.Background(), newJob(t))

	if result.Status != jobModel.JobStatusError {
		t.Fatalf("status = %s", result.Status)
	}
	if result.Error.Kind != string(pipelineError.PersistenceError) || result.Error.Message != "bucket unreachable" {
		t.Errorf("error = %+v", result.Error)
	}
}

func TestToJobError_PlainError(t *testing.T) {
	got := pipeline.ToJobError(context.DeadlineExceeded)
	if got.Kind != "" || got.Message != context.DeadlineExceeded.Error() {
		t.Errorf("ToJobError = %+v", got)
	}
}
