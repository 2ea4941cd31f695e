package objectStore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/akolanti/mlingest/internal/config"
	"github.com/akolanti/mlingest/internal/domain/artifactModel"
	"github.com/akolanti/mlingest/internal/domain/pipelineError"
	"github.com/google/go-cmp/cmp"
)

// fakeS3 accepts every request and records method and path.
type fakeS3 struct {
	mu           sync.Mutex
	requests     []string
	bucketExists bool
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	exists := f.bucketExists
	f.mu.Unlock()

	if r.Method == http.MethodHead && !exists {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
	w.WriteHeader(http.StatusOK)
}

func (f *fakeS3) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func writeArtifact(t *testing.T) artifactModel.DataIngestionArtifact {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "ingested")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	artifact := artifactModel.DataIngestionArtifact{
		TrainedFilePath: filepath.Join(dir, "train.csv"),
		TestFilePath:    filepath.Join(dir, "test.csv"),
	}
	for _, p := range []string{artifact.TrainedFilePath, artifact.TestFilePath} {
		if err := os.WriteFile(p, []byte("a,b\n1,2\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return artifact
}

func TestMirrorArtifact_UploadsBothPartitions(t *testing.T) {
	fake := &fakeS3{bucketExists: true}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	mirror, err := NewMirror(config.MinioSettings{
		Endpoint:  server.URL,
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "artifacts",
		Region:    "us-east-1",
	})
	if err != nil {
		t.Fatalf("NewMirror failed: %v", err)
	}

	keys, err := mirror.MirrorArtifact(context.Background(), "run-1", writeArtifact(t))
	if err != nil {
		t.Fatalf("MirrorArtifact failed: %v", err)
	}

	if diff := cmp.Diff([]string{"run-1/train.csv", "run-1/test.csv"}, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	puts := 0
	for _, req := range fake.seen() {
		if req == "PUT /artifacts/run-1/train.csv" || req == "PUT /artifacts/run-1/test.csv" {
			puts++
		}
	}
	if puts != 2 {
		t.Errorf("expected two object uploads, saw %v", fake.seen())
	}
}

func TestNewMirror_Validation(t *testing.T) {
	tests := []struct {
		name     string
		settings config.MinioSettings
		missing  []string
	}{
		{"no endpoint", config.MinioSettings{AccessKey: "a", SecretKey: "b"}, nil},
		{"no keys", config.MinioSettings{Endpoint: "localhost:9000"}, []string{"MINIO_ACCESS_KEY", "MINIO_SECRET_KEY"}},
		{"no secret", config.MinioSettings{Endpoint: "localhost:9000", AccessKey: "a"}, []string{"MINIO_SECRET_KEY"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMirror(tt.settings)
			if !pipelineError.IsKind(err, pipelineError.ConfigurationError) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if tt.missing != nil {
				var pe *pipelineError.Error
				if !errors.As(err, &pe) {
					t.Fatal("expected a pipeline error")
				}
				if diff := cmp.Diff(tt.missing, pe.Missing); diff != "" {
					t.Errorf("missing mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestObjectKey(t *testing.T) {
	got := ObjectKey("abc", filepath.Join("artifact", "ts", "data_ingestion", "ingested", "train.csv"))
	if got != "abc/train.csv" {
		t.Errorf("ObjectKey = %s", got)
	}
}
