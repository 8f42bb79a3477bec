package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tradeforge/aatm/internal/config"
	"github.com/tradeforge/aatm/internal/core"
)

// fakeStore wraps Memory with hooks to stall or fail the probe operations.
type fakeStore struct {
	*Memory
	setDelay time.Duration
	setErr   error
	sets     atomic.Int32
	deletes  atomic.Int32
}

func newFakeStore() *fakeStore {
	return &fakeStore{Memory: NewMemory()}
}

func (f *fakeStore) Set(ctx context.Context, collection, id string, fields map[string]any, merge bool) error {
	f.sets.Add(1)
	if f.setDelay > 0 {
		time.Sleep(f.setDelay)
	}
	if f.setErr != nil {
		return f.setErr
	}
	return f.Memory.Set(ctx, collection, id, fields, merge)
}

func (f *fakeStore) Delete(ctx context.Context, collection, id string) error {
	f.deletes.Add(1)
	return f.Memory.Delete(ctx, collection, id)
}

func testStoreConfig(t *testing.T) config.StoreConfig {
	t.Helper()

	credsPath := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, os.WriteFile(credsPath, []byte(`{"type":"service_account"}`), 0600))

	return config.StoreConfig{
		ProjectID:       "aatm-test",
		CredentialsFile: credsPath,
		ProbeTimeoutSec: 5,
	}
}

func TestManager_Initialize_Success(t *testing.T) {
	fake := newFakeStore()
	constructions := 0

	m := NewManager(testStoreConfig(t), zap.NewNop(),
		WithClientFactory(func(ctx context.Context, cfg config.StoreConfig) (DocumentStore, error) {
			constructions++
			return fake, nil
		}))

	client, err := m.Initialize(context.Background())
	require.NoError(t, err)
	require.NotNil(t, client)

	assert.Equal(t, StateReady, m.State())
	assert.Equal(t, 1, constructions)
	assert.Equal(t, int32(1), fake.sets.Load())
	assert.Equal(t, int32(1), fake.deletes.Load())

	// The sentinel document must not linger.
	assert.Equal(t, 0, fake.Len(probeCollection))

	// The returned handle is usable without re-authenticating.
	require.NoError(t, client.Set(context.Background(), "aatm_strategies", "s1",
		map[string]any{"name": "seed"}, false))
}

func TestManager_Initialize_Idempotent(t *testing.T) {
	fake := newFakeStore()
	constructions := 0

	m := NewManager(testStoreConfig(t), zap.NewNop(),
		WithClientFactory(func(ctx context.Context, cfg config.StoreConfig) (DocumentStore, error) {
			constructions++
			return fake, nil
		}))

	first, err := m.Initialize(context.Background())
	require.NoError(t, err)

	second, err := m.Initialize(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, constructions, "exactly one client construction")
	assert.Equal(t, int32(1), fake.sets.Load(), "exactly one probe")
}

func TestManager_Initialize_EmptyProjectID(t *testing.T) {
	cfg := testStoreConfig(t)
	cfg.ProjectID = ""

	m := NewManager(cfg, zap.NewNop(),
		WithClientFactory(func(ctx context.Context, cfg config.StoreConfig) (DocumentStore, error) {
			t.Fatal("client must not be constructed with incomplete settings")
			return nil, nil
		}))

	_, err := m.Initialize(context.Background())
	require.ErrorIs(t, err, core.ErrConfigMissing)
	assert.Equal(t, StateFailed, m.State())
}

func TestManager_Initialize_CredentialsNotFound(t *testing.T) {
	cfg := testStoreConfig(t)
	cfg.CredentialsFile = filepath.Join(t.TempDir(), "missing.json")

	m := NewManager(cfg, zap.NewNop(),
		WithClientFactory(func(ctx context.Context, cfg config.StoreConfig) (DocumentStore, error) {
			t.Fatal("client must not be constructed without credentials")
			return nil, nil
		}))

	_, err := m.Initialize(context.Background())
	require.ErrorIs(t, err, core.ErrCredentialsNotFound)
	assert.Equal(t, StateFailed, m.State())
}

func TestManager_Initialize_ProbeFailure(t *testing.T) {
	fake := newFakeStore()
	cause := fmt.Errorf("permission denied")
	fake.setErr = cause

	m := NewManager(testStoreConfig(t), zap.NewNop(),
		WithClientFactory(func(ctx context.Context, cfg config.StoreConfig) (DocumentStore, error) {
			return fake, nil
		}))

	_, err := m.Initialize(context.Background())
	require.ErrorIs(t, err, core.ErrConnectionTestFailed)
	require.ErrorIs(t, err, cause, "underlying cause preserved")
	assert.Equal(t, StateFailed, m.State())
}

func TestManager_Initialize_ProbeTimeout(t *testing.T) {
	fake := newFakeStore()
	fake.setDelay = 3 * time.Second

	cfg := testStoreConfig(t)
	cfg.ProbeTimeoutSec = 1

	m := NewManager(cfg, zap.NewNop(),
		WithClientFactory(func(ctx context.Context, cfg config.StoreConfig) (DocumentStore, error) {
			return fake, nil
		}))

	start := time.Now()
	_, err := m.Initialize(context.Background())
	elapsed := time.Since(start)

	require.ErrorIs(t, err, core.ErrConnectionTimeout)
	assert.Equal(t, StateFailed, m.State())
	assert.Less(t, elapsed, 2*time.Second,
		"caller must be unblocked at the deadline, not when the stalled worker finishes")
}

func TestManager_FailedIsTerminal(t *testing.T) {
	fake := newFakeStore()
	fake.setErr = fmt.Errorf("unavailable")
	constructions := 0

	m := NewManager(testStoreConfig(t), zap.NewNop(),
		WithClientFactory(func(ctx context.Context, cfg config.StoreConfig) (DocumentStore, error) {
			constructions++
			return fake, nil
		}))

	_, first := m.Initialize(context.Background())
	require.Error(t, first)

	_, second := m.Initialize(context.Background())
	require.Error(t, second)

	assert.Equal(t, first, second, "failed manager returns the original error")
	assert.Equal(t, 1, constructions, "no automatic retry")
}

func TestManager_Client_BeforeInitialize(t *testing.T) {
	m := NewManager(testStoreConfig(t), zap.NewNop())

	_, err := m.Client()
	require.ErrorIs(t, err, core.ErrNotInitialized)
}
