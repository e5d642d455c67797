package fs_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/locknote/pkg/adapters/fs"
	"github.com/aretw0/locknote/pkg/core"
	"github.com/aretw0/locknote/pkg/git"
)

// setupGateway creates a gateway and a store path inside a fresh directory.
func setupGateway(t *testing.T, opts ...func(*fs.Config)) (*fs.Gateway, string) {
	t.Helper()
	cfg := fs.Config{LockTimeout: 200 * time.Millisecond}
	for _, opt := range opts {
		opt(&cfg)
	}
	return fs.NewGateway(cfg), filepath.Join(t.TempDir(), "locknote.json")
}

func sampleStore(n int) *core.Store {
	s := core.NewStore([]byte("0123456789abcdef"))
	for i := 0; i < n; i++ {
		s.Add(core.NoteRecord{
			ID:         fmt.Sprintf("note-%d", i),
			Nonce:      []byte("123456789012"),
			Ciphertext: []byte(fmt.Sprintf("ciphertext-%d-with-tag", i)),
		})
	}
	return s
}

func TestGatewayRoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, n := range []int{0, 1, 10} {
		t.Run(fmt.Sprintf("%d notes", n), func(t *testing.T) {
			gw, path := setupGateway(t)
			want := sampleStore(n)

			require.NoError(t, gw.Save(ctx, path, want))
			got, err := gw.Load(ctx, path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestGatewayExists(t *testing.T) {
	ctx := context.Background()
	gw, path := setupGateway(t)

	ok, err := gw.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, gw.Save(ctx, path, sampleStore(0)))
	ok, err = gw.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = gw.Exists(ctx, filepath.Dir(path))
	assert.True(t, core.IsConfigurationError(err))
}

func TestGatewayLoadFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing Store", func(t *testing.T) {
		gw, path := setupGateway(t)
		_, err := gw.Load(ctx, path)
		assert.True(t, core.IsConfigurationError(err))
		assert.ErrorIs(t, err, core.ErrStoreNotFound)
		assert.False(t, core.IsSerializationError(err))
	})

	t.Run("Corrupt Store", func(t *testing.T) {
		gw, path := setupGateway(t)
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

		_, err := gw.Load(ctx, path)
		var se *core.SerializationError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, path, se.Path)
		assert.NotErrorIs(t, err, core.ErrStoreNotFound)
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		gw, path := setupGateway(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := gw.Load(cctx, path)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestGatewaySaveFailureKeepsOldStore(t *testing.T) {
	ctx := context.Background()
	gw, path := setupGateway(t)
	require.NoError(t, gw.Save(ctx, path, sampleStore(2)))

	err := gw.Save(ctx, filepath.Join(filepath.Dir(path), "missing", "locknote.json"), sampleStore(3))
	assert.True(t, core.IsIOError(err))

	got, err := gw.Load(ctx, path)
	require.NoError(t, err)
	assert.Len(t, got.Notes, 2)
}

func TestGatewayLock(t *testing.T) {
	ctx := context.Background()
	gw, path := setupGateway(t)

	unlock, err := gw.Lock(ctx, path)
	require.NoError(t, err)

	lockPath := path + fs.LockSuffix
	_, err = os.Stat(lockPath)
	require.NoError(t, err, "lock file not created")

	t.Run("Contention Times Out", func(t *testing.T) {
		other := fs.NewGateway(fs.Config{LockTimeout: 50 * time.Millisecond})
		start := time.Now()
		_, err := other.Lock(ctx, path)
		assert.ErrorIs(t, err, core.ErrLocked)
		assert.True(t, core.IsIOError(err))
		assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("State Reports Held Lock", func(t *testing.T) {
		state := gw.State().(fs.GatewayState)
		assert.Equal(t, []string{lockPath}, state.LocksHeld)
	})

	unlock()
	_, err = os.Stat(lockPath)
	assert.True(t, os.IsNotExist(err), "lock file not removed after unlock")

	t.Run("Reacquire After Release", func(t *testing.T) {
		unlock, err := gw.Lock(ctx, path)
		require.NoError(t, err)
		unlock()
	})

	t.Run("Waits For Release", func(t *testing.T) {
		unlock, err := gw.Lock(ctx, path)
		require.NoError(t, err)
		go func() {
			time.Sleep(30 * time.Millisecond)
			unlock()
		}()
		again, err := gw.Lock(ctx, path)
		require.NoError(t, err)
		again()
	})
}

func TestGatewayState(t *testing.T) {
	ctx := context.Background()
	gw, path := setupGateway(t)
	require.NoError(t, gw.Save(ctx, path, sampleStore(1)))
	_, err := gw.Load(ctx, path)
	require.NoError(t, err)

	state, ok := gw.State().(fs.GatewayState)
	require.True(t, ok)
	assert.Equal(t, 1, state.Saves)
	assert.Equal(t, 1, state.Loads)
	assert.NotNil(t, state.LastSave)
	assert.False(t, state.WatcherActive)
	assert.Equal(t, "fs-gateway", gw.ComponentType())
}

func TestGatewayVersioning(t *testing.T) {
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}
	ctx := context.Background()
	var reported []error
	gw, path := setupGateway(t, func(c *fs.Config) {
		c.Versioning = true
		c.ErrorHandler = func(err error) { reported = append(reported, err) }
	})

	require.NoError(t, gw.Save(context.WithValue(ctx, core.ChangeReasonKey, "initialize store"), path, sampleStore(0)))
	require.NoError(t, gw.Save(context.WithValue(ctx, core.ChangeReasonKey, "add note note-0"), path, sampleStore(1)))
	require.Empty(t, reported)

	log, err := git.NewClient(filepath.Dir(path), nil).Log(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"feat(store): add note note-0",
		"chore(store): initialize store",
	}, log)
}
