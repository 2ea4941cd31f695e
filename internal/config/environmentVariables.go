package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD                         = false
	LOG_LEVEL_PROD                  = slog.LevelInfo
	FALLBACK_REDIS_TO_INTERNALSTORE = true //if redis init fails, it falls back to an internal in-memory store
	TRACE_ID_KEY                    = "traceId"
	RATE_LIMIT_PER_SECOND           = 2
	BURST_RATE_LIMIT_PER_SECOND     = 5
	RateLimiterIdleTimeout          = 10 * time.Minute

	//logs
	LogDirName     = "logs"
	MaxLogSizeMB   = 5
	LogBackupCount = 3

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 4
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	RunTimeout                      = 30 * time.Minute
	JobStateSaveTimeout             = 5 * time.Second

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//mongo
	DatabaseName              = "Proj1"
	CollectionName            = "Proj1-Data"
	MongoConnectTimeout       = 30 * time.Second
	MongoServerSelectTimeout  = 30 * time.Second
	MongoDisconnectTimeout    = 5 * time.Second
	MissingValueSentinel      = "na"
	MongoIdentityField        = "_id"
	EnvMongoUser              = "MONGO_USER"
	EnvMongoPassword          = "MONGO_PASSWORD"
	EnvMongoHost              = "MONGO_HOST"
	EnvMongoCluster           = "CLUSTER"
	DefaultTrainTestSplitRate = 0.25

	//artifacts
	PipelineName                 = "mlingest"
	ArtifactDir                  = "artifact"
	TimestampLayout              = "01_02_2006_15_04_05"
	DataIngestionDirName         = "data_ingestion"
	DataIngestionFeatureStoreDir = "feature_store"
	DataIngestionIngestedDir     = "ingested"
	FeatureStoreFileName         = "data.csv"
	TrainFileName                = "train.csv"
	TestFileName                 = "test.csv"

	//env files
	EnvDirName = ".env"

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisRunStore      = 0
	RedisRunEventStore = 1

	//redis timeouts
	RedisRunStoreTTL      = 24 * time.Hour
	RedisRunEventStoreTTL = 24 * time.Hour

	//object store mirror
	MinioDefaultBucket = "mlingest-artifacts"

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second
)
