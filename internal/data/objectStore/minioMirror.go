package objectStore

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"time"

	"github.com/akolanti/mlingest/internal/config"
	"github.com/akolanti/mlingest/internal/customHttpClient"
	"github.com/akolanti/mlingest/internal/domain/artifactModel"
	"github.com/akolanti/mlingest/internal/domain/pipelineError"
	"github.com/akolanti/mlingest/internal/metrics"
	"github.com/akolanti/mlingest/pkg/logger_i"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Mirror copies the partitions of a finished run into an S3 compatible bucket.
type Mirror struct {
	client *minio.Client
	bucket string
	region string
	logger *logger_i.Logger
}

func NewMirror(settings config.MinioSettings) (*Mirror, error) {
	if settings.Endpoint == "" {
		return nil, pipelineError.New(pipelineError.ConfigurationError, "MINIO_ENDPOINT is required for the artifact mirror")
	}
	if settings.AccessKey == "" || settings.SecretKey == "" {
		return nil, pipelineError.MissingVariables(missingKeys(settings))
	}
	if settings.Bucket == "" {
		settings.Bucket = config.MinioDefaultBucket
	}

	// accept both "host:port" and "http(s)://host:port"
	endpoint := settings.Endpoint
	useSSL := settings.UseSSL
	if u, err := url.Parse(settings.Endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			useSSL = true
		}
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(settings.AccessKey, settings.SecretKey, ""),
		Secure:    useSSL,
		Region:    settings.Region,
		Transport: customHttpClient.Transport(),
	})
	if err != nil {
		return nil, pipelineError.Wrap(pipelineError.ConfigurationError, err, "create minio client")
	}

	return &Mirror{
		client: client,
		bucket: settings.Bucket,
		region: settings.Region,
		logger: logger_i.NewLogger("Artifact Mirror").With("bucket", settings.Bucket),
	}, nil
}

func missingKeys(settings config.MinioSettings) []string {
	var missing []string
	if settings.AccessKey == "" {
		missing = append(missing, "MINIO_ACCESS_KEY")
	}
	if settings.SecretKey == "" {
		missing = append(missing, "MINIO_SECRET_KEY")
	}
	return missing
}

func (m *Mirror) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return pipelineError.Wrap(pipelineError.PersistenceError, err, "check bucket "+m.bucket)
	}
	if exists {
		return nil
	}
	m.logger.Info("Creating bucket")
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.region}); err != nil {
		return pipelineError.Wrap(pipelineError.PersistenceError, err, "create bucket "+m.bucket)
	}
	return nil
}

// ObjectKey places a local artifact file under its run id.
func ObjectKey(runId string, localPath string) string {
	return path.Join(runId, filepath.Base(localPath))
}

// MirrorArtifact uploads both partitions and returns the object keys written.
func (m *Mirror) MirrorArtifact(ctx context.Context, runId string, artifact artifactModel.DataIngestionArtifact) ([]string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("minio_upload", time.Since(start)) }()

	if err := m.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	keys := make([]string, 0, 2)
	for _, localPath := range []string{artifact.TrainedFilePath, artifact.TestFilePath} {
		key := ObjectKey(runId, localPath)
		info, err := m.client.FPutObject(ctx, m.bucket, key, localPath, minio.PutObjectOptions{ContentType: "text/csv"})
		if err != nil {
			m.logger.Error("Upload failed", "key", key, "error", err)
			return keys, pipelineError.Wrap(pipelineError.PersistenceError, err, fmt.Sprintf("upload %s to %s", localPath, key))
		}
		m.logger.Debug("Uploaded artifact", "key", key, "size", info.Size)
		keys = append(keys, key)
	}
	return keys, nil
}
