// internal/store/manager.go
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradeforge/aatm/internal/config"
	"github.com/tradeforge/aatm/internal/core"
	"github.com/tradeforge/aatm/internal/metrics"
)

// probeCollection is the dedicated sentinel location for connectivity
// verification. It never holds business data.
const probeCollection = "aatm_connectivity"

// defaultProbeTimeout bounds the connectivity probe when the config does not
// set one.
const defaultProbeTimeout = 10 * time.Second

// State is the lifecycle state of the connection manager.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// ClientFactory constructs a DocumentStore from store settings. Injected in
// tests; defaults to Firestore.
type ClientFactory func(ctx context.Context, cfg config.StoreConfig) (DocumentStore, error)

// Manager owns the single process-wide handle to the document store. It
// initializes the connection exactly once, verifies it with a bounded
// connectivity probe, and publishes the handle to consumers. A failed
// initialization is terminal for the process; retry policy belongs to the
// bootstrap layer.
type Manager struct {
	cfg     config.StoreConfig
	log     *zap.Logger
	factory ClientFactory
	reg     *metrics.Registry

	mu     sync.Mutex
	state  State
	client DocumentStore
	err    error
}

// Option configures a Manager.
type Option func(*Manager)

// WithClientFactory overrides the default Firestore client factory.
func WithClientFactory(f ClientFactory) Option {
	return func(m *Manager) { m.factory = f }
}

// WithMetrics attaches a metrics registry.
func WithMetrics(reg *metrics.Registry) Option {
	return func(m *Manager) { m.reg = reg }
}

// NewManager creates an uninitialized connection manager.
func NewManager(cfg config.StoreConfig, log *zap.Logger, opts ...Option) *Manager {
	if log == nil {
		log = zap.NewNop()
	}

	m := &Manager{
		cfg: cfg,
		log: log,
		factory: func(ctx context.Context, cfg config.StoreConfig) (DocumentStore, error) {
			return NewFirestore(ctx, cfg.ProjectID, cfg.CredentialsFile)
		},
	}

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Client returns the live handle, or ErrNotInitialized when the manager has
// not reached ready.
func (m *Manager) Client() (DocumentStore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateReady {
		return nil, core.WrapError(core.ErrNotInitialized,
			fmt.Errorf("manager state is %s", m.state))
	}
	return m.client, nil
}

// Initialize establishes and verifies the store connection. It is
// idempotent: once ready it returns the cached handle without reconnecting,
// and once failed it returns the original error. The sequence is strict:
// settings check, credential load, client construction, connectivity probe —
// no step starts before the previous one succeeds.
func (m *Manager) Initialize(ctx context.Context) (DocumentStore, error) {
	m.mu.Lock()
	switch m.state {
	case StateReady:
		client := m.client
		m.mu.Unlock()
		return client, nil
	case StateFailed:
		err := m.err
		m.mu.Unlock()
		return nil, err
	case StateInitializing:
		m.mu.Unlock()
		return nil, core.WrapError(core.ErrNotInitialized,
			fmt.Errorf("initialization already in progress"))
	}
	m.state = StateInitializing
	m.mu.Unlock()

	if m.cfg.ProjectID == "" {
		return nil, m.fail("invalid_config", core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("store project id is empty")))
	}
	if m.cfg.CredentialsFile == "" {
		return nil, m.fail("invalid_config", core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("store credentials file is empty")))
	}

	if _, err := os.Stat(m.cfg.CredentialsFile); err != nil {
		return nil, m.fail("credentials_not_found",
			core.WrapError(core.ErrCredentialsNotFound, err))
	}

	client, err := m.factory(ctx, m.cfg)
	if err != nil {
		return nil, m.fail("client_construction",
			core.WrapError(core.ErrConnectionTestFailed, err))
	}

	if err := m.probe(ctx, client); err != nil {
		client.Close()
		outcome := "probe_failed"
		if errors.Is(err, core.ErrConnectionTimeout) {
			outcome = "probe_timeout"
		}
		return nil, m.fail(outcome, err)
	}

	m.mu.Lock()
	m.state = StateReady
	m.client = client
	m.mu.Unlock()

	if m.reg != nil {
		m.reg.RecordInitAttempt("ready")
	}
	m.log.Info("document store ready",
		zap.String("project_id", m.cfg.ProjectID))

	return client, nil
}

// probe performs a minimal write-then-delete round trip against a sentinel
// document. The round trip runs on its own goroutine so a hard wall-clock
// deadline can be enforced on the calling path; a worker that outlives the
// deadline is abandoned and its result discarded.
func (m *Manager) probe(ctx context.Context, client DocumentStore) error {
	timeout := time.Duration(m.cfg.ProbeTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	done := make(chan error, 1)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("probe panic: %v", r)
			}
		}()

		id := uuid.NewString()
		fields := map[string]any{"ts": time.Now().UTC().Format(time.RFC3339Nano)}

		if err := client.Set(ctx, probeCollection, id, fields, true); err != nil {
			done <- err
			return
		}
		done <- client.Delete(ctx, probeCollection, id)
	}()

	select {
	case err := <-done:
		if m.reg != nil {
			m.reg.ObserveProbe(time.Since(start).Seconds())
		}
		if err != nil {
			return core.WrapError(core.ErrConnectionTestFailed, err)
		}
		return nil
	case <-ctx.Done():
		return core.WrapError(core.ErrConnectionTestFailed, ctx.Err())
	case <-time.After(timeout):
		return core.ErrConnectionTimeout
	}
}

// fail records a terminal initialization failure and returns the error.
func (m *Manager) fail(outcome string, err error) error {
	m.mu.Lock()
	m.state = StateFailed
	m.err = err
	m.mu.Unlock()

	if m.reg != nil {
		m.reg.RecordInitAttempt(outcome)
	}
	m.log.Error("store initialization failed",
		zap.String("outcome", outcome),
		zap.Error(err))
	return err
}

// Close releases the client handle if one was established.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}
