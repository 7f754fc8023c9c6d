package vm

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runEvacuate(t *testing.T, env *testEnv, asset EvacuateAsset) (*Response, error) {
	t.Helper()
	msg := NewEvacuateMsg(asset)
	return (&EvacuateHandler{}).Execute(env.ctx("osmo1anyone"), &msg)
}

func TestEvacuateNativeSkipsPool(t *testing.T) {
	env := newTestEnv()
	env.saveState(t, nativeState("1"))
	env.querier.native[testContract] = []Coin{
		coin(100, "uatom"),
		coin(50, "uosmo"),
		coin(100, testPoolLP),
	}

	resp, err := runEvacuate(t, env, EvacuateNative{})
	require.NoError(t, err)

	require.Len(t, resp.Messages, 2)
	assert.Equal(t, BankSendMsg{ToAddress: testEvacuate, Amount: []Coin{coin(100, "uatom")}}, resp.Messages[0])
	assert.Equal(t, BankSendMsg{ToAddress: testEvacuate, Amount: []Coin{coin(50, "uosmo")}}, resp.Messages[1])
	assert.Equal(t, []Attribute{{Key: "action", Value: "evacuate"}}, resp.Attributes)
}

func TestEvacuateNativeExactDenomCompare(t *testing.T) {
	env := newTestEnv()
	env.saveState(t, nativeState("1"))
	env.querier.native[testContract] = []Coin{
		coin(1, "GAMM/POOL/1"),
		coin(2, testPoolLP),
	}

	resp, err := runEvacuate(t, env, EvacuateNative{})
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "GAMM/POOL/1", resp.Messages[0].(BankSendMsg).Amount[0].Denom)
}

func TestEvacuateNativeNothingToSend(t *testing.T) {
	cases := []struct {
		name     string
		holdings []Coin
	}{
		{name: "empty"},
		{name: "pool only", holdings: []Coin{coin(100, testPoolLP)}},
	}
	for _, tc := range cases {
		holdings := tc.holdings
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv()
			env.saveState(t, nativeState("1"))
			env.querier.native[testContract] = holdings

			resp, err := runEvacuate(t, env, EvacuateNative{})
			require.NoError(t, err)
			assert.Empty(t, resp.Messages)
			assert.Equal(t, []Attribute{{Key: "action", Value: "evacuate"}}, resp.Attributes)
		})
	}
}

func TestEvacuateNativeQueryErrorAborts(t *testing.T) {
	env := newTestEnv()
	env.saveState(t, nativeState("1"))
	boom := errors.New("querier down")
	env.querier.err = boom

	_, err := runEvacuate(t, env, EvacuateNative{})
	assert.ErrorIs(t, err, boom)
}

func TestEvacuateCw20FullBalance(t *testing.T) {
	env := newTestEnv()
	env.saveState(t, nativeState("1"))
	env.querier.cw20["osmo1reward|"+testContract] = big.NewInt(1234)

	resp, err := runEvacuate(t, env, EvacuateCw20{Contract: "osmo1reward"})
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)

	wm := resp.Messages[0].(WasmExecuteMsg)
	assert.Equal(t, "osmo1reward", wm.ContractAddr)
	assert.Empty(t, wm.Funds)
	assert.JSONEq(t, `{"transfer":{"recipient":"osmo1evacuate","amount":"1234"}}`, string(wm.Msg))
	assert.Len(t, resp.Attributes, 1)
}

func TestEvacuateCw20ZeroBalanceStillEmits(t *testing.T) {
	env := newTestEnv()
	env.saveState(t, nativeState("1"))

	resp, err := runEvacuate(t, env, EvacuateCw20{Contract: "osmo1empty"})
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	assert.JSONEq(t, `{"transfer":{"recipient":"osmo1evacuate","amount":"0"}}`,
		string(resp.Messages[0].(WasmExecuteMsg).Msg))
}

func TestEvacuateCw20InvalidContract(t *testing.T) {
	env := newTestEnv()
	env.saveState(t, nativeState("1"))

	_, err := runEvacuate(t, env, EvacuateCw20{Contract: "NOT-AN-ADDRESS"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "NOT-AN-ADDRESS", verr.Input)
	assert.ErrorIs(t, err, errBadAddress)
}

func TestEvacuateCw20PoolTokenRejected(t *testing.T) {
	env := newTestEnv()
	st := nativeState("1")
	st.Pool = Cw20Asset("osmo1lptoken")
	env.saveState(t, st)

	_, err := runEvacuate(t, env, EvacuateCw20{Contract: "osmo1lptoken"})
	reason, ok := IsInvalidFunds(err)
	require.True(t, ok)
	assert.Equal(t, ReasonEvacuatePool, reason)
}

func TestEvacuateCw721InOrderWithDuplicates(t *testing.T) {
	env := newTestEnv()
	env.saveState(t, nativeState("1"))

	ids := []string{"a", "b", "c", "a"}
	resp, err := runEvacuate(t, env, EvacuateCw721{Contract: "osmo1nft", TokenIDs: ids})
	require.NoError(t, err)
	require.Len(t, resp.Messages, len(ids))

	for i, m := range resp.Messages {
		wm := m.(WasmExecuteMsg)
		assert.Equal(t, "osmo1nft", wm.ContractAddr)
		var payload Cw721ExecuteMsg
		require.NoError(t, json.Unmarshal(wm.Msg, &payload))
		require.NotNil(t, payload.TransferNft)
		assert.Equal(t, ids[i], payload.TransferNft.TokenID)
		assert.Equal(t, testEvacuate, payload.TransferNft.Recipient)
	}
	assert.Equal(t, []Attribute{{Key: "action", Value: "evacuate"}}, resp.Attributes)
}

func TestEvacuateCw721EmptyList(t *testing.T) {
	env := newTestEnv()
	env.saveState(t, nativeState("1"))

	resp, err := runEvacuate(t, env, EvacuateCw721{Contract: "osmo1nft"})
	require.NoError(t, err)
	assert.Empty(t, resp.Messages)
	assert.Len(t, resp.Attributes, 1)
}

func TestEvacuateRevalidatesStoredAddress(t *testing.T) {
	env := newTestEnv()
	st := nativeState("1")
	st.EvacuateAddress = "Not Valid"
	env.saveState(t, st)

	_, err := runEvacuate(t, env, EvacuateNative{})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestEvacuateNotInstantiated(t *testing.T) {
	_, err := runEvacuate(t, newTestEnv(), EvacuateNative{})
	assert.ErrorIs(t, err, ErrNotInstantiated)
	var serr *StorageError
	assert.ErrorAs(t, err, &serr)
}

func TestEvacuateUnknownAsset(t *testing.T) {
	_, err := Evacuate(newTestEnv().ctx("x"), NativeAsset(testPoolLP), nil, testEvacuate)
	assert.ErrorIs(t, err, ErrUnknownMessage)
}

func TestEvacuateAssetRequestJSON(t *testing.T) {
	cases := []struct {
		raw  string
		want EvacuateAsset
	}{
		{raw: `{"native":{}}`, want: EvacuateNative{}},
		{raw: `{"cw20":{"contract":"osmo1x"}}`, want: EvacuateCw20{Contract: "osmo1x"}},
		{raw: `{"cw721":{"contract":"osmo1y","token_ids":["1","2"]}}`, want: EvacuateCw721{Contract: "osmo1y", TokenIDs: []string{"1", "2"}}},
	}
	for _, tc := range cases {
		raw, want := tc.raw, tc.want
		var req AssetRequest
		require.NoError(t, json.Unmarshal([]byte(raw), &req))
		got, err := req.Asset()
		require.NoError(t, err)
		assert.Equal(t, want, got)

		out, err := json.Marshal(NewAssetRequest(want))
		require.NoError(t, err)
		assert.JSONEq(t, raw, string(out))
	}

	var req AssetRequest
	require.NoError(t, json.Unmarshal([]byte(`{"native":{},"cw20":{"contract":"x"}}`), &req))
	_, err := req.Asset()
	assert.ErrorIs(t, err, ErrUnknownMessage)
}
