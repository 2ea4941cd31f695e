package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/akolanti/mlingest/internal/adapter/utils"
	"github.com/akolanti/mlingest/internal/config"
	"github.com/akolanti/mlingest/internal/data/collectionExport"
	"github.com/akolanti/mlingest/internal/data/mongoStore"
	"github.com/akolanti/mlingest/internal/data/objectStore"
	"github.com/akolanti/mlingest/internal/domain/jobModel"
	"github.com/akolanti/mlingest/internal/pipeline"
	"github.com/akolanti/mlingest/pkg/logger_i"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		collection  = flag.String("collection", "", "collection to export (default "+config.CollectionName+")")
		database    = flag.String("database", "", "database to read from (default "+config.DatabaseName+")")
		ratio       = flag.Float64("ratio", 0, "test partition ratio in (0,1) (default 0.25)")
		seed        = flag.String("seed", "", "optional unsigned seed for a reproducible split")
		artifactDir = flag.String("artifact-dir", "", "artifact root directory (default "+config.ArtifactDir+")")
	)
	flag.Parse()

	if _, err := config.AutoLoadEnvs(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger_i.Init()
	logger := logger_i.NewLogger("ingest cli")

	payload := jobModel.JobPayload{
		CollectionName: *collection,
		DatabaseName:   *database,
		SplitRatio:     *ratio,
		ArtifactDir:    *artifactDir,
	}
	if *seed != "" {
		parsed, err := strconv.ParseUint(*seed, 10, 64)
		if err != nil {
			logger.Error("Invalid -seed", "value", *seed, "error", err)
			return 1
		}
		payload.Seed = &parsed
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := mongoStore.NewManager(mongoStore.CreateMongoURIFromEnv)
	defer func() {
		if err := manager.Close(context.Background()); err != nil {
			logger.Error("Failed to disconnect MongoDB", "error", err)
		}
	}()

	var options []pipeline.Option
	if settings, ok := config.Minio(); ok {
		mirror, err := objectStore.NewMirror(settings)
		if err != nil {
			logger.Error("Artifact mirror misconfigured", "error", err)
			return 1
		}
		options = append(options, pipeline.WithMirror(mirror))
	}
	service := pipeline.NewService(collectionExport.NewMongoExporter(manager, config.DatabaseName), options...)

	result := service.RunPipeline(ctx, jobModel.Job{
		Id:         utils.NewRunId(),
		TraceId:    utils.NewTraceId(),
		JobType:    jobModel.JobTypeIngest,
		JobPayload: payload,
	})
	if result.Status == jobModel.JobStatusError {
		logger.Error("Ingestion failed", "kind", result.Error.Kind, "message", result.Error.Message, "origin", result.Error.Origin)
		return 1
	}

	fmt.Println(result.Artifact.String())
	for _, key := range result.ObjectKeys {
		fmt.Println("mirrored:", key)
	}
	return 0
}
