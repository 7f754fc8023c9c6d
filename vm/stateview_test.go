package vm

import (
	"testing"

	"soulp/keys"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateViewReadThroughAndOverlay(t *testing.T) {
	db := mapDB{"v1_a": []byte("base")}
	sv := NewStateView(db.read, db.scan)

	v, ok, err := sv.Get("v1_a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("base"), v)

	sv.Set("v1_a", []byte("over"))
	v, _, _ = sv.Get("v1_a")
	assert.Equal(t, []byte("over"), v)
	// 底层不变
	assert.Equal(t, []byte("base"), db["v1_a"])

	sv.Del("v1_a")
	_, ok, err = sv.Get("v1_a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStateViewSnapshotRevert(t *testing.T) {
	sv := NewStateView(nil, nil)
	sv.Set("k1", []byte("1"))
	snap := sv.Snapshot()
	sv.Set("k1", []byte("2"))
	sv.Set("k2", []byte("x"))
	sv.Del("k1")

	require.NoError(t, sv.Revert(snap))
	v, ok, _ := sv.Get("k1")
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)
	_, ok, _ = sv.Get("k2")
	assert.False(t, ok)

	require.NoError(t, sv.Revert(0))
	assert.Empty(t, sv.Diff())

	assert.ErrorIs(t, sv.Revert(5), ErrInvalidSnapshot)
	assert.ErrorIs(t, sv.Revert(-1), ErrInvalidSnapshot)
}

func TestStateViewDiffCategories(t *testing.T) {
	sv := NewStateView(nil, nil)
	sv.Set(keys.KeyCustodyState(), []byte("{}"))
	sv.Set(keys.KeyBalance("osmo1a", "uosmo"), []byte("1"))
	sv.Del(keys.KeyReceipt("r1"))

	got := make(map[string]WriteOp)
	for _, w := range sv.Diff() {
		got[w.Key] = w
	}
	require.Len(t, got, 3)
	assert.Equal(t, "contract", got[keys.KeyCustodyState()].Category)
	assert.Equal(t, "ledger", got[keys.KeyBalance("osmo1a", "uosmo")].Category)
	assert.True(t, got[keys.KeyReceipt("r1")].Del)
}

func TestStateViewScanMergesOverlay(t *testing.T) {
	db := mapDB{
		"v1_balance_a_x": []byte("1"),
		"v1_balance_a_y": []byte("2"),
		"v1_balance_b_x": []byte("3"),
	}
	sv := NewStateView(db.read, db.scan)
	sv.Del("v1_balance_a_x")
	sv.Set("v1_balance_a_z", []byte("9"))
	sv.Set("v1_balance_a_y", []byte("5"))

	got, err := sv.Scan("v1_balance_a_")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{
		"v1_balance_a_y": []byte("5"),
		"v1_balance_a_z": []byte("9"),
	}, got)
}

func TestStateViewGetReturnsCopy(t *testing.T) {
	sv := NewStateView(nil, nil)
	sv.Set("k", []byte("abc"))
	v, _, _ := sv.Get("k")
	v[0] = 'z'
	again, _, _ := sv.Get("k")
	assert.Equal(t, []byte("abc"), again)
}
