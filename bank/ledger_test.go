package bank

import (
	"encoding/json"
	"math/big"
	"testing"

	"soulp/tokenfactory"
	"soulp/vm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contractAddr = "osmo1contract"
	alice        = "osmo1alice"
	bob          = "osmo1bob"
)

func newView() vm.StateView {
	return vm.NewStateView(nil, nil)
}

func wasmMsg(t *testing.T, contract string, payload interface{}) vm.WasmExecuteMsg {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return vm.WasmExecuteMsg{ContractAddr: contract, Msg: raw, Funds: []vm.Coin{}}
}

func stargate(cmd tokenfactory.Command) vm.StargateMsg {
	return vm.StargateMsg{TypeURL: cmd.TypeURL, Value: cmd.Value}
}

func TestCreditAndTransfer(t *testing.T) {
	sv := newView()
	l := NewLedger()

	require.NoError(t, l.Credit(sv, alice, []vm.Coin{
		vm.NewCoin(big.NewInt(100), "uosmo"),
		vm.NewCoin(big.NewInt(5), "uatom"),
	}))
	require.NoError(t, l.Transfer(sv, alice, bob, vm.NewCoins(40, "uosmo")))

	got, err := l.Querier(sv).AllBalances(alice)
	require.NoError(t, err)
	assert.Equal(t, []vm.Coin{
		vm.NewCoin(big.NewInt(5), "uatom"),
		vm.NewCoin(big.NewInt(60), "uosmo"),
	}, got)

	got, err = l.Querier(sv).AllBalances(bob)
	require.NoError(t, err)
	assert.Equal(t, vm.NewCoins(40, "uosmo"), got)
}

func TestTransferInsufficientFunds(t *testing.T) {
	sv := newView()
	l := NewLedger()
	require.NoError(t, l.Credit(sv, alice, vm.NewCoins(10, "uosmo")))

	err := l.Transfer(sv, alice, bob, vm.NewCoins(11, "uosmo"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	bal, err := GetBalance(sv, alice, "uosmo")
	require.NoError(t, err)
	assert.Equal(t, "10", bal.String())
}

func TestZeroBalanceRemovesRecord(t *testing.T) {
	sv := newView()
	l := NewLedger()
	require.NoError(t, l.Credit(sv, alice, vm.NewCoins(10, "uosmo")))
	require.NoError(t, l.Transfer(sv, alice, bob, vm.NewCoins(10, "uosmo")))

	got, err := l.Querier(sv).AllBalances(alice)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBalancesDoNotLeakAcrossAddressPrefixes(t *testing.T) {
	sv := newView()
	l := NewLedger()
	require.NoError(t, l.Credit(sv, "osmo1a", vm.NewCoins(1, "uosmo")))
	require.NoError(t, l.Credit(sv, "osmo1ab", vm.NewCoins(2, "uosmo")))

	got, err := l.Querier(sv).AllBalances("osmo1a")
	require.NoError(t, err)
	assert.Equal(t, vm.NewCoins(1, "uosmo"), got)
}

func TestDispatchBankSend(t *testing.T) {
	sv := newView()
	l := NewLedger()
	require.NoError(t, l.Credit(sv, contractAddr, vm.NewCoins(100, "uatom")))

	err := l.Dispatch(sv, contractAddr, []vm.CosmosMsg{
		vm.BankSendMsg{ToAddress: alice, Amount: vm.NewCoins(100, "uatom")},
	})
	require.NoError(t, err)

	bal, err := GetBalance(sv, alice, "uatom")
	require.NoError(t, err)
	assert.Equal(t, "100", bal.String())
}

func TestDispatchCw20Transfer(t *testing.T) {
	sv := newView()
	l := NewLedger()
	require.NoError(t, l.CreditCw20(sv, "osmo1token", contractAddr, big.NewInt(30)))

	transfer := vm.Cw20ExecuteMsg{Transfer: &vm.Cw20Transfer{Recipient: alice, Amount: "30"}}
	require.NoError(t, l.Dispatch(sv, contractAddr, []vm.CosmosMsg{wasmMsg(t, "osmo1token", transfer)}))

	got, err := l.Querier(sv).Cw20Balance("osmo1token", alice)
	require.NoError(t, err)
	assert.Equal(t, "30", got.String())

	// 余额为 0 的转账也能执行
	zero := vm.Cw20ExecuteMsg{Transfer: &vm.Cw20Transfer{Recipient: alice, Amount: "0"}}
	assert.NoError(t, l.Dispatch(sv, contractAddr, []vm.CosmosMsg{wasmMsg(t, "osmo1token", zero)}))

	over := vm.Cw20ExecuteMsg{Transfer: &vm.Cw20Transfer{Recipient: alice, Amount: "1"}}
	err = l.Dispatch(sv, contractAddr, []vm.CosmosMsg{wasmMsg(t, "osmo1token", over)})
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestDispatchTransferNft(t *testing.T) {
	sv := newView()
	l := NewLedger()
	require.NoError(t, l.CreditNft(sv, "osmo1nft", "1", contractAddr))

	move := vm.Cw721ExecuteMsg{TransferNft: &vm.Cw721TransferNft{Recipient: alice, TokenID: "1"}}
	require.NoError(t, l.Dispatch(sv, contractAddr, []vm.CosmosMsg{wasmMsg(t, "osmo1nft", move)}))

	owner, ok, err := NftOwner(sv, "osmo1nft", "1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, alice, owner)

	// 同一个 token 再转一次，合约已经不是所有者
	err = l.Dispatch(sv, contractAddr, []vm.CosmosMsg{wasmMsg(t, "osmo1nft", move)})
	assert.ErrorIs(t, err, ErrNotTokenOwner)
}

func TestDispatchTransferNftWithoutRecord(t *testing.T) {
	sv := newView()
	l := NewLedger()

	move := vm.Cw721ExecuteMsg{TransferNft: &vm.Cw721TransferNft{Recipient: alice, TokenID: "made-up"}}
	err := l.Dispatch(sv, contractAddr, []vm.CosmosMsg{wasmMsg(t, "osmo1nft", move)})
	assert.ErrorIs(t, err, ErrNotTokenOwner)

	_, ok, err := NftOwner(sv, "osmo1nft", "made-up")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDispatchTokenFactory(t *testing.T) {
	sv := newView()
	l := NewLedger()
	token := tokenfactory.NewOsmosisToken(contractAddr, "SouLP")

	// 未注册的 denom 不能增发
	err := l.Dispatch(sv, contractAddr, []vm.CosmosMsg{stargate(token.Mint(big.NewInt(1), alice)[0])})
	assert.ErrorIs(t, err, ErrUnknownDenom)

	require.NoError(t, l.Dispatch(sv, contractAddr, []vm.CosmosMsg{stargate(token.Create()[0])}))
	admin, ok, err := DenomAdmin(sv, token.Denom())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, contractAddr, admin)

	err = l.Dispatch(sv, contractAddr, []vm.CosmosMsg{stargate(token.Create()[0])})
	assert.ErrorIs(t, err, ErrDenomExists)

	require.NoError(t, l.Dispatch(sv, contractAddr, []vm.CosmosMsg{stargate(token.Mint(big.NewInt(42), alice)[0])}))
	bal, err := GetBalance(sv, alice, token.Denom())
	require.NoError(t, err)
	assert.Equal(t, "42", bal.String())
}

func TestDispatchMintByNonAdmin(t *testing.T) {
	sv := newView()
	l := NewLedger()
	token := tokenfactory.NewOsmosisToken(contractAddr, "SouLP")
	require.NoError(t, l.Dispatch(sv, contractAddr, []vm.CosmosMsg{stargate(token.Create()[0])}))

	// bob 冒充合约增发
	err := l.Dispatch(sv, bob, []vm.CosmosMsg{stargate(token.Mint(big.NewInt(1), bob)[0])})
	assert.ErrorIs(t, err, ErrNotDenomAdmin)

	// 以别人的名义创建 denom
	other := tokenfactory.NewOsmosisToken(alice, "SouLP")
	err = l.Dispatch(sv, bob, []vm.CosmosMsg{stargate(other.Create()[0])})
	assert.ErrorIs(t, err, ErrNotDenomAdmin)
}

func TestDispatchUnsupported(t *testing.T) {
	sv := newView()
	l := NewLedger()

	err := l.Dispatch(sv, contractAddr, []vm.CosmosMsg{vm.StargateMsg{TypeURL: "/cosmos.gov.v1.MsgVote"}})
	assert.ErrorIs(t, err, ErrUnsupportedMsg)

	err = l.Dispatch(sv, contractAddr, []vm.CosmosMsg{wasmMsg(t, "osmo1x", map[string]interface{}{"burn": map[string]string{}})})
	assert.ErrorIs(t, err, ErrUnsupportedMsg)
}
