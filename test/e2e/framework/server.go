// Package framework starts a complete DittoCMIS server for end-to-end
// tests and talks to its browser binding over HTTP.
package framework

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/marmos91/dittocmis/internal/logger"
	"github.com/marmos91/dittocmis/pkg/config"
	"github.com/marmos91/dittocmis/pkg/registry"
	"github.com/marmos91/dittocmis/pkg/server"
	"golang.org/x/crypto/bcrypt"
)

// StoreType selects the content store of the test server.
type StoreType string

const (
	StoreTypeMemory     StoreType = "memory"
	StoreTypeFilesystem StoreType = "filesystem"
	StoreTypeS3         StoreType = "s3"
)

// TestServerConfig holds configuration for the test server. It is
// distinct from config.Config, which it is turned into.
type TestServerConfig struct {
	Port         int
	ContentStore StoreType

	// S3Endpoint and S3Bucket are only used with StoreTypeS3.
	S3Endpoint string
	S3Bucket   string

	LogLevel       string
	StartupTimeout time.Duration
}

// TestServer runs the server on a free port until Stop.
type TestServer struct {
	t        testing.TB
	config   TestServerConfig
	cfg      *config.Config
	registry *registry.Registry
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
	client   *http.Client
}

// NewTestServer prepares a server over the seeded demo tree. Users are
// "admin" (password "admin") and "alice" (password "secret", member of
// "marketing").
func NewTestServer(t testing.TB, config TestServerConfig) *TestServer {
	t.Helper()

	if config.Port == 0 {
		config.Port = findFreePort(t)
	}
	if config.ContentStore == "" {
		config.ContentStore = StoreTypeMemory
	}
	if config.LogLevel == "" {
		config.LogLevel = "ERROR"
	}
	if config.StartupTimeout == 0 {
		config.StartupTimeout = 10 * time.Second
	}

	return &TestServer{
		t:      t,
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (ts *TestServer) buildConfig() *config.Config {
	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = ts.config.LogLevel
	cfg.Server.HTTP.Port = ts.config.Port
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Metrics.Enabled = false
	cfg.Auth.AllowAnonymous = false
	cfg.Store.Memory["bcrypt_cost"] = bcrypt.MinCost
	cfg.Users = append(cfg.Users, config.UserConfig{
		Name: "alice", Password: "secret", Groups: []string{"marketing"},
	})

	cfg.Content.Type = string(ts.config.ContentStore)
	switch ts.config.ContentStore {
	case StoreTypeFilesystem:
		cfg.Content.Filesystem = map[string]any{"path": ts.t.TempDir()}
	case StoreTypeS3:
		cfg.Content.S3 = map[string]any{
			"endpoint":          ts.config.S3Endpoint,
			"region":            "us-east-1",
			"bucket":            ts.config.S3Bucket,
			"access_key_id":     "test",
			"secret_access_key": "test",
			"key_prefix":        "content/",
			"max_retries":       2,
		}
	}
	return cfg
}

// Start builds the stores, seeds the demo tree and waits until the
// binding answers.
func (ts *TestServer) Start() error {
	ts.t.Helper()

	if err := logger.Init(ts.config.LogLevel, "text", "stderr"); err != nil {
		return err
	}

	cfg := ts.buildConfig()
	if err := config.Validate(cfg); err != nil {
		return err
	}
	ts.cfg = cfg

	ctx, cancel := context.WithCancel(context.Background())
	ts.cancel = cancel

	reg, err := config.InitializeRegistry(ctx, cfg, nil)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to initialize registry: %w", err)
	}
	ts.registry = reg

	adapters, err := config.CreateAdapters(cfg, nil)
	if err != nil {
		cancel()
		_ = reg.Close()
		return err
	}

	srv := server.New(reg)
	for _, a := range adapters {
		if err := srv.AddAdapter(a); err != nil {
			cancel()
			_ = reg.Close()
			return err
		}
	}

	ts.done = make(chan struct{})
	go func() {
		defer close(ts.done)
		if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
			ts.t.Logf("Server error: %v", err)
		}
	}()

	if err := ts.waitForServer(); err != nil {
		ts.Stop()
		return err
	}
	ts.t.Logf("Server started on port %d with %s content store", ts.config.Port, ts.config.ContentStore)
	return nil
}

// Stop cancels the server, waits for it and closes the stores.
func (ts *TestServer) Stop() {
	ts.stopOnce.Do(func() {
		if ts.cancel == nil {
			return
		}
		ts.cancel()
		select {
		case <-ts.done:
		case <-time.After(5 * time.Second):
			ts.t.Logf("Server stop timeout")
		}
		if ts.registry != nil {
			_ = ts.registry.Close()
		}
	})
}

// RepositoryID is the id of the single configured repository.
func (ts *TestServer) RepositoryID() string {
	return ts.cfg.Repository.ID
}

// Registry returns the registry the server runs on.
func (ts *TestServer) Registry() *registry.Registry {
	return ts.registry
}

// URL returns the absolute URL of path on the binding.
func (ts *TestServer) URL(path string) string {
	return fmt.Sprintf("http://localhost:%d%s", ts.config.Port, path)
}

// Get issues a GET with basic credentials unless user is empty.
func (ts *TestServer) Get(path, user, password string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, ts.URL(path), nil)
	if err != nil {
		return nil, err
	}
	if user != "" {
		req.SetBasicAuth(user, password)
	}
	return ts.client.Do(req)
}

// GetJSON issues an authenticated GET and decodes a 200 response into out.
func (ts *TestServer) GetJSON(path, user, password string, out any) error {
	resp, err := ts.Get(path, user, password)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (ts *TestServer) waitForServer() error {
	deadline := time.Now().Add(ts.config.StartupTimeout)
	for time.Now().Before(deadline) {
		resp, err := ts.client.Get(ts.URL("/"))
		if err == nil {
			_ = resp.Body.Close()
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("timeout waiting for server on port %d", ts.config.Port)
}

func findFreePort(t testing.TB) int {
	t.Helper()
	listener, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("Failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	_ = listener.Close()
	return port
}
