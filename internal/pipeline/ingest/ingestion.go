package ingest

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/akolanti/mlingest/internal/config"
	"github.com/akolanti/mlingest/internal/data/collectionExport"
	"github.com/akolanti/mlingest/internal/domain/artifactModel"
	"github.com/akolanti/mlingest/internal/domain/dataset"
	"github.com/akolanti/mlingest/internal/domain/pipelineError"
	"github.com/akolanti/mlingest/internal/metrics"
	"github.com/akolanti/mlingest/pkg/logger_i"
)

type State string

const (
	StateStart     State = "START"
	StateFetched   State = "FETCHED"
	StateValidated State = "VALIDATED"
	StateSplit     State = "SPLIT"
	StatePersisted State = "PERSISTED"
	StateDone      State = "DONE"
	StateFailed    State = "FAILED"
)

// DataIngestion runs one fetch -> validate -> split -> persist pass. It is not
// meant to be reused across runs.
type DataIngestion struct {
	cfg          config.IngestionConfig
	exporter     collectionExport.Exporter
	rng          *rand.Rand
	onTransition func(State)
	logger       *logger_i.Logger

	state     State
	stateTime time.Time
}

type Option func(*DataIngestion)

// WithTransitionHook is called synchronously on every state change.
func WithTransitionHook(hook func(State)) Option {
	return func(d *DataIngestion) {
		d.onTransition = hook
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(d *DataIngestion) {
		d.rng = rng
	}
}

func WithLogger(log *logger_i.Logger) Option {
	return func(d *DataIngestion) {
		if log != nil {
			d.logger = log
		}
	}
}

func New(cfg config.IngestionConfig, exporter collectionExport.Exporter, opts ...Option) *DataIngestion {
	d := &DataIngestion{
		cfg:      cfg,
		exporter: exporter,
		logger:   logger_i.NewLogger("Data Ingestion"),
		state:    StateStart,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.rng == nil {
		d.rng = NewRand(cfg.Seed)
	}
	d.logger = d.logger.With("collection", cfg.CollectionName)
	return d
}

func (d *DataIngestion) State() State {
	return d.state
}

func (d *DataIngestion) transition(next State) {
	now := time.Now()
	if !d.stateTime.IsZero() {
		metrics.CaptureStage(string(d.state), now.Sub(d.stateTime))
	}
	d.logger.Debug("Ingestion state change", "from", d.state, "to", next)
	d.state = next
	d.stateTime = now
	if d.onTransition != nil {
		d.onTransition(next)
	}
}

func (d *DataIngestion) fail(err error) error {
	d.logger.Error("Data ingestion failed", "state", d.state, "error", err)
	d.transition(StateFailed)
	return err
}

// ExportDataIntoFeatureStore fetches the collection, rejects a result too small
// to split and writes the feature store snapshot when a path for it is configured.
func (d *DataIngestion) ExportDataIntoFeatureStore(ctx context.Context) (*dataset.Frame, error) {
	d.logger.Info("Exporting data from MongoDB")
	frame, err := d.exporter.ExportAsTable(ctx, d.cfg.CollectionName, d.cfg.DatabaseName)
	if err != nil {
		return nil, pipelineError.WrapAs(pipelineError.ExportError, err, "export collection "+d.cfg.CollectionName)
	}
	if frame == nil {
		return nil, pipelineError.New(pipelineError.ExportError, "exporter returned no table for "+d.cfg.CollectionName)
	}
	d.transition(StateFetched)

	if frame.IsEmpty() {
		return nil, pipelineError.Newf(pipelineError.EmptyDatasetError,
			"collection %s has no documents, nothing to split", d.cfg.CollectionName)
	}
	d.transition(StateValidated)

	// a table too small to split must not leave a snapshot behind
	if _, _, err := partitionSizes(frame.Len(), d.cfg.TrainTestSplitRatio); err != nil {
		return nil, err
	}
	if d.cfg.FeatureStoreFilePath != "" {
		if err := WriteFrameFile(frame, d.cfg.FeatureStoreFilePath); err != nil {
			return nil, err
		}
		d.logger.Info("Feature store snapshot written", "path", d.cfg.FeatureStoreFilePath, "rows", frame.Len())
	}
	return frame, nil
}

// SplitDataAsTrainTest splits the frame and writes both partitions.
func (d *DataIngestion) SplitDataAsTrainTest(frame *dataset.Frame) error {
	train, test, err := TrainTestSplit(frame, d.cfg.TrainTestSplitRatio, d.rng)
	if err != nil {
		return err
	}
	d.logger.Info("Performed train test split", "trainRows", train.Len(), "testRows", test.Len())
	d.transition(StateSplit)

	if err := PersistPartitions(train, test, d.cfg.TrainingFilePath, d.cfg.TestingFilePath); err != nil {
		return err
	}
	metrics.CaptureRows("train", train.Len())
	metrics.CaptureRows("test", test.Len())
	d.logger.Info("Exported train and test file path.", "train", d.cfg.TrainingFilePath, "test", d.cfg.TestingFilePath)
	d.transition(StatePersisted)
	return nil
}

func (d *DataIngestion) InitiateDataIngestion(ctx context.Context) (artifactModel.DataIngestionArtifact, error) {
	d.transition(StateStart)

	frame, err := d.ExportDataIntoFeatureStore(ctx)
	if err != nil {
		return artifactModel.DataIngestionArtifact{}, d.fail(err)
	}
	if err := d.SplitDataAsTrainTest(frame); err != nil {
		return artifactModel.DataIngestionArtifact{}, d.fail(err)
	}

	artifact := artifactModel.DataIngestionArtifact{
		TrainedFilePath: d.cfg.TrainingFilePath,
		TestFilePath:    d.cfg.TestingFilePath,
	}
	d.transition(StateDone)
	d.logger.Info("Data ingestion completed", "artifact", artifact.String())
	return artifact, nil
}
