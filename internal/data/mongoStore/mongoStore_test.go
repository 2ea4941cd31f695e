package mongoStore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/akolanti/mlingest/internal/domain/pipelineError"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// A mongodb:// client connects lazily, so no server is needed for these tests.
const localURI = "mongodb://127.0.0.1:27017"

type countingConnector struct {
	calls atomic.Int32
	t     *testing.T
}

func (c *countingConnector) connect(ctx context.Context, uri string) (*mongo.Client, error) {
	c.calls.Add(1)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	c.t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client, nil
}

func staticURI(uri string) URIResolver {
	return func() (string, error) { return uri, nil }
}

func TestManager_ReusesClient(t *testing.T) {
	conn := &countingConnector{t: t}
	manager := NewManager(staticURI(localURI), WithConnectFunc(conn.connect))
	ctx := context.Background()

	first, err := manager.Obtain(ctx, "Proj1")
	if err != nil {
		t.Fatalf("first Obtain failed: %v", err)
	}
	second, err := manager.Obtain(ctx, "Proj1")
	if err != nil {
		t.Fatalf("second Obtain failed: %v", err)
	}

	if conn.calls.Load() != 1 {
		t.Errorf("connect called %d times; want 1", conn.calls.Load())
	}
	if first.Client() != second.Client() {
		t.Error("expected the identical client on both handles")
	}
	if first.Name() != "Proj1" {
		t.Errorf("database = %s", first.Name())
	}
}

func TestManager_OtherDatabaseSameClient(t *testing.T) {
	conn := &countingConnector{t: t}
	manager := NewManager(staticURI(localURI), WithConnectFunc(conn.connect))

	a, _ := manager.Obtain(context.Background(), "one")
	b, _ := manager.Obtain(context.Background(), "two")

	if conn.calls.Load() != 1 || a.Client() != b.Client() {
		t.Errorf("selecting another database must not create a client (calls=%d)", conn.calls.Load())
	}
	if b.Name() != "two" {
		t.Errorf("database = %s", b.Name())
	}
}

func TestManager_ConcurrentFirstUse(t *testing.T) {
	conn := &countingConnector{t: t}
	manager := NewManager(staticURI(localURI), WithConnectFunc(conn.connect))

	const workers = 20
	var wg sync.WaitGroup
	clients := make([]*mongo.Client, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := manager.Obtain(context.Background(), "Proj1")
			if err == nil {
				clients[i] = h.Client()
			}
		}(i)
	}
	wg.Wait()

	if conn.calls.Load() != 1 {
		t.Errorf("connect called %d times; want 1", conn.calls.Load())
	}
	for i, c := range clients {
		if c != clients[0] {
			t.Errorf("worker %d got a different client", i)
		}
	}
}

func TestManager_ResolveFailureSkipsConnect(t *testing.T) {
	conn := &countingConnector{t: t}
	resolve := func() (string, error) {
		return CreateMongoURI(func(string) (string, bool) { return "", false })
	}
	manager := NewManager(resolve, WithConnectFunc(conn.connect))

	_, err := manager.Obtain(context.Background(), "Proj1")

	if !pipelineError.IsKind(err, pipelineError.ConnectionError) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
	if !errors.Is(err, &pipelineError.Error{Kind: pipelineError.ConfigurationError}) {
		t.Errorf("expected the ConfigurationError cause to be kept: %v", err)
	}
	if conn.calls.Load() != 0 {
		t.Errorf("connect must not be attempted, called %d times", conn.calls.Load())
	}
}

func TestManager_EmptyURI(t *testing.T) {
	conn := &countingConnector{t: t}
	manager := NewManager(staticURI(""), WithConnectFunc(conn.connect))

	_, err := manager.Obtain(context.Background(), "Proj1")

	if !pipelineError.IsKind(err, pipelineError.ConnectionError) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
	if conn.calls.Load() != 0 {
		t.Error("connect must not be attempted for an empty URI")
	}
}

func TestManager_ConnectFailure(t *testing.T) {
	manager := NewManager(staticURI("not-a-mongo-uri"))

	_, err := manager.Obtain(context.Background(), "Proj1")

	if !pipelineError.IsKind(err, pipelineError.ConnectionError) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
}

func TestManager_CloseThenReconnect(t *testing.T) {
	conn := &countingConnector{t: t}
	manager := NewManager(staticURI(localURI), WithConnectFunc(conn.connect))
	ctx := context.Background()

	if err := manager.Close(ctx); err != nil {
		t.Fatalf("closing an unused manager: %v", err)
	}
	if _, err := manager.Obtain(ctx, "Proj1"); err != nil {
		t.Fatal(err)
	}
	if err := manager.Close(ctx); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if _, err := manager.Obtain(ctx, "Proj1"); err != nil {
		t.Fatal(err)
	}
	if conn.calls.Load() != 2 {
		t.Errorf("connect called %d times; want 2", conn.calls.Load())
	}
}

func TestHandle_DatabaseOverride(t *testing.T) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(localURI))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	h := NewHandle(client, "Proj1")

	if h.Database("").Name() != "Proj1" {
		t.Error("empty override should keep the handle database")
	}
	if h.Database("Other").Name() != "Other" {
		t.Error("override not applied")
	}
	if h.Database("Other").Client() != client {
		t.Error("override must use the same client")
	}
}
