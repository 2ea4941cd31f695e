package collectionExport

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/akolanti/mlingest/internal/config"
	"github.com/akolanti/mlingest/internal/data/mongoStore"
	"github.com/akolanti/mlingest/internal/domain/dataset"
	"github.com/akolanti/mlingest/internal/domain/pipelineError"
	"github.com/akolanti/mlingest/internal/metrics"
	"github.com/akolanti/mlingest/pkg/logger_i"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exporter materialises a whole collection as a table.
type Exporter interface {
	ExportAsTable(ctx context.Context, collectionName string, databaseName string) (*dataset.Frame, error)
}

// HandleProvider is satisfied by *mongoStore.Manager.
type HandleProvider interface {
	Obtain(ctx context.Context, databaseName string) (*mongoStore.Handle, error)
}

type MongoExporter struct {
	handles         HandleProvider
	defaultDatabase string
	logger          *logger_i.Logger
}

func NewMongoExporter(handles HandleProvider, defaultDatabase string) *MongoExporter {
	if defaultDatabase == "" {
		defaultDatabase = config.DatabaseName
	}
	return &MongoExporter{
		handles:         handles,
		defaultDatabase: defaultDatabase,
		logger:          logger_i.NewLogger("MongoDB->DataFrame Loader"),
	}
}

// ExportAsTable loads every document of the collection into memory at once.
// An empty collection yields an empty frame, not an error.
func (e *MongoExporter) ExportAsTable(ctx context.Context, collectionName string, databaseName string) (*dataset.Frame, error) {
	handle, err := e.handles.Obtain(ctx, e.defaultDatabase)
	if err != nil {
		return nil, err
	}
	return ExportFromHandle(ctx, handle, collectionName, databaseName, e.logger)
}

func ExportFromHandle(ctx context.Context, handle *mongoStore.Handle, collectionName string, databaseName string, log *logger_i.Logger) (*dataset.Frame, error) {
	if log == nil {
		log = logger_i.NewLogger("MongoDB->DataFrame Loader")
	}
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("mongo_export", time.Since(start)) }()

	collection := handle.Database(databaseName).Collection(collectionName)
	log = log.With("database", collection.Database().Name(), "collection", collectionName)
	log.Info("Fetching data from MongoDB collection")

	cursor, err := collection.Find(ctx, bson.D{})
	if err != nil {
		log.Error("Find failed", "error", err)
		return nil, pipelineError.Wrap(pipelineError.ExportError, err, "find documents in "+collectionName)
	}
	var documents []bson.D
	if err := cursor.All(ctx, &documents); err != nil {
		log.Error("Reading cursor failed", "error", err)
		return nil, pipelineError.Wrap(pipelineError.ExportError, err, "read documents of "+collectionName)
	}

	if len(documents) == 0 {
		log.Warn("No documents found in collection. Returning empty table.")
		return dataset.NewFrame(), nil
	}

	frame, err := ToFrame(documents)
	if err != nil {
		log.Error("Converting documents failed", "error", err)
		return nil, pipelineError.Wrap(pipelineError.ExportError, err, "convert documents of "+collectionName)
	}
	log.Info("Data fetched successfully", "rowCount", frame.Len())

	frame.DropColumn(config.MongoIdentityField)
	replaced := frame.ReplaceSentinel(config.MissingValueSentinel)
	log.Debug("Cleaned table", "columns", len(frame.Columns), "sentinelsReplaced", replaced)
	return frame, nil
}

// ToFrame converts documents into rows keeping the field order of each document.
func ToFrame(documents []bson.D) (*dataset.Frame, error) {
	frame := dataset.NewFrame()
	for i, doc := range documents {
		keys := make([]string, 0, len(doc))
		values := make([]dataset.Value, 0, len(doc))
		for _, element := range doc {
			v, err := toValue(element.Value)
			if err != nil {
				return nil, fmt.Errorf("document %d field %q: %w", i, element.Key, err)
			}
			keys = append(keys, element.Key)
			values = append(values, v)
		}
		frame.AppendRecord(keys, values)
	}
	return frame, nil
}

func toValue(raw interface{}) (dataset.Value, error) {
	switch v := raw.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return nil, nil
	case string, bool, int32, int64, float64:
		return v, nil
	case primitive.ObjectID:
		return v.Hex(), nil
	case primitive.DateTime:
		return v.Time().UTC().Format(time.RFC3339Nano), nil
	case primitive.Timestamp:
		return time.Unix(int64(v.T), 0).UTC().Format(time.RFC3339), nil
	case primitive.Decimal128:
		return v.String(), nil
	case primitive.Binary:
		return fmt.Sprintf("%x", v.Data), nil
	case primitive.Symbol:
		return string(v), nil
	case primitive.Regex:
		return v.String(), nil
	case bson.D, bson.A, bson.M:
		out, err := bson.MarshalExtJSON(bson.D{{Key: "v", Value: v}}, false, false)
		if err != nil {
			return nil, err
		}
		// ExtJSON only marshals documents, strip the {"v": ...} wrapper
		out = bytes.TrimSpace(out)
		if !bytes.HasPrefix(out, []byte(`{"v":`)) {
			return string(out), nil
		}
		return string(bytes.TrimSuffix(bytes.TrimPrefix(out, []byte(`{"v":`)), []byte("}"))), nil
	default:
		return fmt.Sprint(v), nil
	}
}
