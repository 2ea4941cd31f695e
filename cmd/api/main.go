package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/mlingest/internal/config"
	"github.com/akolanti/mlingest/internal/data/collectionExport"
	"github.com/akolanti/mlingest/internal/data/mongoStore"
	"github.com/akolanti/mlingest/internal/data/objectStore"
	"github.com/akolanti/mlingest/internal/data/store"
	"github.com/akolanti/mlingest/internal/handlers"
	"github.com/akolanti/mlingest/internal/job"
	"github.com/akolanti/mlingest/internal/pipeline"
	"github.com/akolanti/mlingest/internal/server"
	"github.com/akolanti/mlingest/internal/worker"
	"github.com/akolanti/mlingest/pkg/logger_i"
)

var (
	listenAddr        string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	loaded, envErr := config.AutoLoadEnvs()
	logger_i.Init()
	var logger = logger_i.NewLogger("main")
	if envErr != nil {
		logger.Error("Could not load env files", "error", envErr)
		os.Exit(1)
	}
	if len(loaded) > 0 {
		logger.Info("Loaded env files", "files", loaded)
	}

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and run stores
	serviceConfig := job.ServiceConfig{
		QueueSize:        config.BufferLimit,
		RunsPerNewWorker: config.RequestsPerNewWorkerCount,
	}
	logger.Info("Starting job service")

	jobStore, eventStore := store.GetRedisJobStore(serviceContext), store.GetRedisEventStore(serviceContext)
	if jobStore == nil || eventStore == nil {
		if !config.FALLBACK_REDIS_TO_INTERNALSTORE {
			logger.Error("Redis stores are offline and fallback is disabled")
			return
		}
		logger.Warn("Redis stores are offline, using in-memory stores")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.EventStore = store.InitInMemoryEventStore()
	} else {
		serviceConfig.JobStore = jobStore
		serviceConfig.EventStore = eventStore
	}
	service := job.InitJobService(serviceConfig)

	//one mongo client for the whole process
	mongoManager := mongoStore.NewManager(mongoStore.CreateMongoURIFromEnv)
	exporter := collectionExport.NewMongoExporter(mongoManager, config.DatabaseName)

	pipelineOptions := []pipeline.Option{pipeline.WithEventStore(serviceConfig.EventStore)}
	if settings, ok := config.Minio(); ok {
		mirror, err := objectStore.NewMirror(settings)
		if err != nil {
			logger.Error("Artifact mirror misconfigured", "error", err)
			return
		}
		pipelineOptions = append(pipelineOptions, pipeline.WithMirror(mirror))
		logger.Info("Artifact mirror enabled", "bucket", settings.Bucket)
	}
	pipelineService := pipeline.NewService(exporter, pipelineOptions...)

	handlers.InitJobHandler(service)

	//init worker pool
	worker.InitServices(service, pipelineService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
		OnClosed: func(ctx context.Context) {
			if err := mongoManager.Close(ctx); err != nil {
				logger.Error("Failed to disconnect MongoDB", "error", err)
			}
		},
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
