package db

import (
	"fmt"
	"testing"

	"soulp/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mgr, err := NewManager(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(mgr.Close)
	return mgr
}

func TestGetMissingKeyReturnsNil(t *testing.T) {
	mgr := newTestManager(t)

	v, err := mgr.Get("v1_nothing")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestEnqueuedWritesInvisibleUntilFlush(t *testing.T) {
	mgr := newTestManager(t)

	mgr.EnqueueSet("v1_a", "1")
	mgr.EnqueueSet("v1_b", "2")

	v, err := mgr.Get("v1_a")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, mgr.ForceFlush())

	v, err = mgr.Get("v1_a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)
}

func TestDeleteAndScan(t *testing.T) {
	mgr := newTestManager(t)

	for i := 0; i < 5; i++ {
		mgr.EnqueueSet(fmt.Sprintf("v1_balance_addr_%d", i), fmt.Sprintf("%d", i))
	}
	mgr.EnqueueSet("v1_other", "x")
	require.NoError(t, mgr.ForceFlush())

	mgr.EnqueueDel("v1_balance_addr_3")
	require.NoError(t, mgr.ForceFlush())

	got, err := mgr.Scan("v1_balance_addr_")
	require.NoError(t, err)
	assert.Len(t, got, 4)
	assert.NotContains(t, got, "v1_balance_addr_3")
	assert.Equal(t, []byte("4"), got["v1_balance_addr_4"])
}

func TestCloseFlushesPending(t *testing.T) {
	dir := t.TempDir()

	mgr, err := NewManager(dir)
	require.NoError(t, err)
	mgr.EnqueueSet("v1_k", "v")
	mgr.Close()

	reopened, err := NewManager(dir)
	require.NoError(t, err)
	defer reopened.Close()

	v, err := reopened.Get("v1_k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestInMemoryManager(t *testing.T) {
	cfg := config.DefaultConfig().Database
	cfg.InMemory = true
	mgr, err := NewManagerWithConfig(&cfg)
	require.NoError(t, err)
	defer mgr.Close()

	mgr.EnqueueSet("v1_mem", "ok")
	require.NoError(t, mgr.ForceFlush())

	v, err := mgr.Get("v1_mem")
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), v)

	st := mgr.Stats()
	assert.Equal(t, uint64(1), st.EnqueueSet)
	assert.Equal(t, uint64(1), st.FlushedTasks)
	assert.GreaterOrEqual(t, st.ForceFlushes, uint64(1))
}

func TestOperationsAfterClose(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	require.NoError(t, err)
	mgr.Close()

	_, err = mgr.Get("v1_x")
	assert.ErrorIs(t, err, ErrClosed)
	assert.Error(t, mgr.ForceFlush())
}
