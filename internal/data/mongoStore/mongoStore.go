package mongoStore

import (
	"context"
	"sync"

	"github.com/akolanti/mlingest/internal/config"
	"github.com/akolanti/mlingest/internal/domain/pipelineError"
	"github.com/akolanti/mlingest/internal/metrics"
	"github.com/akolanti/mlingest/pkg/logger_i"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// URIResolver produces the connection string or fails.
type URIResolver func() (string, error)

// ConnectFunc opens a client for the given connection string.
type ConnectFunc func(ctx context.Context, uri string) (*mongo.Client, error)

// Manager owns the single Mongo client of the process. Create one at start-up
// and pass it to whatever needs a database; the first Obtain connects, every
// later Obtain reuses that client without a health check.
type Manager struct {
	mu      sync.RWMutex
	client  *mongo.Client
	resolve URIResolver
	connect ConnectFunc
	logger  *logger_i.Logger
}

type Option func(*Manager)

func WithConnectFunc(connect ConnectFunc) Option {
	return func(m *Manager) {
		m.connect = connect
	}
}

func NewManager(resolve URIResolver, opts ...Option) *Manager {
	if resolve == nil {
		resolve = CreateMongoURIFromEnv
	}
	m := &Manager{
		resolve: resolve,
		connect: defaultConnect,
		logger:  logger_i.NewLogger("MongoDB Connection"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func defaultConnect(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(config.MongoConnectTimeout).
		SetServerSelectionTimeout(config.MongoTimeout())
	return mongo.Connect(ctx, clientOptions)
}

// Obtain returns a handle on databaseName backed by the shared client.
func (m *Manager) Obtain(ctx context.Context, databaseName string) (*Handle, error) {
	if databaseName == "" {
		databaseName = config.DatabaseName
	}
	client, err := m.getClient(ctx)
	if err != nil {
		return nil, err
	}
	m.logger.Info("Connected to database", "database", databaseName)
	return NewHandle(client, databaseName), nil
}

func (m *Manager) getClient(ctx context.Context) (*mongo.Client, error) {
	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()

	if client != nil {
		m.logger.Info("Reusing existing MongoDB client")
		return client, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		m.logger.Info("Reusing existing MongoDB client")
		return m.client, nil
	}
	return m.createClient(ctx)
}

// createClient must be called with mu held.
func (m *Manager) createClient(ctx context.Context) (*mongo.Client, error) {
	uri, err := m.resolve()
	if err != nil {
		m.logger.Error("MongoDB URI creation failed", "error", err)
		return nil, pipelineError.WrapAs(pipelineError.ConnectionError, err, "resolve connection string")
	}
	if uri == "" {
		m.logger.Error("MongoDB URI creation failed", "error", "empty connection string")
		return nil, pipelineError.New(pipelineError.ConnectionError, "MongoDB URI creation failed: empty connection string")
	}

	m.logger.Info("Creating a new MongoDB client")
	client, err := m.connect(ctx, uri)
	if err != nil {
		m.logger.Error("MongoDB connect failed", "error", err)
		return nil, pipelineError.WrapAs(pipelineError.ConnectionError, err, "connect to MongoDB")
	}
	if client == nil {
		return nil, pipelineError.New(pipelineError.ConnectionError, "connect to MongoDB returned no client")
	}

	m.client = client
	metrics.IncrementMongoClientsCreated()
	m.logger.Info("MongoDB client created successfully")
	return client, nil
}

// Close disconnects the shared client. A later Obtain connects again.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil
	}
	closeCtx, cancel := context.WithTimeout(ctx, config.MongoDisconnectTimeout)
	defer cancel()
	err := m.client.Disconnect(closeCtx)
	m.client = nil
	if err != nil {
		m.logger.Error("Error closing MongoDB client", "error", err)
		return err
	}
	m.logger.Info("MongoDB client closed successfully")
	return nil
}

// Handle selects a logical database on the shared client.
type Handle struct {
	client   *mongo.Client
	database *mongo.Database
}

func NewHandle(client *mongo.Client, databaseName string) *Handle {
	return &Handle{
		client:   client,
		database: client.Database(databaseName),
	}
}

func (h *Handle) Client() *mongo.Client {
	return h.client
}

func (h *Handle) Name() string {
	return h.database.Name()
}

// Database returns the handle's database, or override on the same client when it is set.
func (h *Handle) Database(override string) *mongo.Database {
	if override == "" || override == h.database.Name() {
		return h.database
	}
	return h.client.Database(override)
}
