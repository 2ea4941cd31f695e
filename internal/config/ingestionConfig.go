package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/akolanti/mlingest/internal/domain/pipelineError"
)

// TrainingPipelineConfig roots every artifact of one pipeline run under a timestamped directory.
type TrainingPipelineConfig struct {
	PipelineName string
	ArtifactDir  string
	Timestamp    string
}

// IngestionConfig is built once per run and never mutated afterwards.
type IngestionConfig struct {
	CollectionName       string
	DatabaseName         string
	TrainTestSplitRatio  float64
	DataIngestionDir     string
	FeatureStoreFilePath string
	TrainingFilePath     string
	TestingFilePath      string
	// Seed makes the train/test partition reproducible; nil means a fresh random split per run.
	Seed *uint64
}

// IngestionOverrides are optional per-run values, e.g. from a CLI flag or an API request.
type IngestionOverrides struct {
	CollectionName string
	DatabaseName   string
	SplitRatio     float64
	Seed           *uint64
}

func NewTrainingPipelineConfig(now time.Time, artifactRoot string) TrainingPipelineConfig {
	if artifactRoot == "" {
		artifactRoot = envOrDefault("ARTIFACT_DIR", ArtifactDir)
	}
	timestamp := now.Format(TimestampLayout)
	return TrainingPipelineConfig{
		PipelineName: PipelineName,
		ArtifactDir:  filepath.Join(artifactRoot, timestamp),
		Timestamp:    timestamp,
	}
}

// NewIngestionConfig resolves defaults, then environment, then overrides, and validates the result.
func NewIngestionConfig(pipeline TrainingPipelineConfig, overrides IngestionOverrides) (IngestionConfig, error) {
	ingestionDir := filepath.Join(pipeline.ArtifactDir, DataIngestionDirName)
	cfg := IngestionConfig{
		CollectionName:       envOrDefault("INGEST_COLLECTION", CollectionName),
		DatabaseName:         envOrDefault("INGEST_DATABASE", DatabaseName),
		TrainTestSplitRatio:  DefaultTrainTestSplitRate,
		DataIngestionDir:     ingestionDir,
		FeatureStoreFilePath: filepath.Join(ingestionDir, DataIngestionFeatureStoreDir, FeatureStoreFileName),
		TrainingFilePath:     filepath.Join(ingestionDir, DataIngestionIngestedDir, TrainFileName),
		TestingFilePath:      filepath.Join(ingestionDir, DataIngestionIngestedDir, TestFileName),
	}

	if raw, ok := os.LookupEnv("INGEST_SPLIT_RATIO"); ok && raw != "" {
		ratio, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return IngestionConfig{}, pipelineError.Newf(pipelineError.ConfigurationError, "INGEST_SPLIT_RATIO %q is not a number", raw)
		}
		cfg.TrainTestSplitRatio = ratio
	}
	if raw, ok := os.LookupEnv("INGEST_SPLIT_SEED"); ok && raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return IngestionConfig{}, pipelineError.Newf(pipelineError.ConfigurationError, "INGEST_SPLIT_SEED %q is not an unsigned integer", raw)
		}
		cfg.Seed = &seed
	}

	if overrides.CollectionName != "" {
		cfg.CollectionName = overrides.CollectionName
	}
	if overrides.DatabaseName != "" {
		cfg.DatabaseName = overrides.DatabaseName
	}
	if overrides.SplitRatio != 0 {
		cfg.TrainTestSplitRatio = overrides.SplitRatio
	}
	if overrides.Seed != nil {
		seed := *overrides.Seed
		cfg.Seed = &seed
	}

	if err := cfg.Validate(); err != nil {
		return IngestionConfig{}, err
	}
	return cfg, nil
}

func (c IngestionConfig) Validate() error {
	if c.CollectionName == "" {
		return pipelineError.New(pipelineError.ConfigurationError, "collection name is required")
	}
	if !(c.TrainTestSplitRatio > 0 && c.TrainTestSplitRatio < 1) {
		return pipelineError.Newf(pipelineError.ConfigurationError, "train/test split ratio must be in (0,1), got %v", c.TrainTestSplitRatio)
	}
	if c.TrainingFilePath == "" || c.TestingFilePath == "" {
		return pipelineError.New(pipelineError.ConfigurationError, "training and testing file paths are required")
	}
	if c.TrainingFilePath == c.TestingFilePath {
		return pipelineError.New(pipelineError.ConfigurationError, "training and testing file paths must differ")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
