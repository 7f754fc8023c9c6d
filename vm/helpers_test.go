package vm

import (
	"errors"
	"math/big"
	"sort"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// ========== 测试用的外部依赖 ==========

const (
	testContract = "osmo1contract"
	testCreator  = "osmo1creator"
	testEvacuate = "osmo1evacuate"
	testPoolLP   = "gamm/pool/1"
)

var errBadAddress = errors.New("bad address")

// mockAPI 只接受 osmo1 开头的小写地址
type mockAPI struct{}

func (mockAPI) Validate(addr string) (string, error) {
	if !strings.HasPrefix(addr, "osmo1") || strings.ToLower(addr) != addr {
		return "", errBadAddress
	}
	return addr, nil
}

// mockQuerier 内存余额
type mockQuerier struct {
	native map[string][]Coin
	cw20   map[string]*big.Int // contract|addr
	err    error
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{
		native: make(map[string][]Coin),
		cw20:   make(map[string]*big.Int),
	}
}

func (q *mockQuerier) AllBalances(addr string) ([]Coin, error) {
	if q.err != nil {
		return nil, q.err
	}
	coins := append([]Coin(nil), q.native[addr]...)
	sort.Slice(coins, func(i, j int) bool { return coins[i].Denom < coins[j].Denom })
	return coins, nil
}

func (q *mockQuerier) Cw20Balance(contract, addr string) (*big.Int, error) {
	if q.err != nil {
		return nil, q.err
	}
	if v, ok := q.cw20[contract+"|"+addr]; ok {
		return new(big.Int).Set(v), nil
	}
	return big.NewInt(0), nil
}

// mapDB 内存 DB，供 StateView 读穿
type mapDB map[string][]byte

func (m mapDB) read(key string) ([]byte, error) {
	return m[key], nil
}

func (m mapDB) scan(prefix string) (map[string][]byte, error) {
	out := make(map[string][]byte)
	for k, v := range m {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out, nil
}

// apply 把 Diff 写回
func (m mapDB) apply(ops []WriteOp) {
	for _, op := range ops {
		if op.Del {
			delete(m, op.Key)
		} else {
			m[op.Key] = op.Value
		}
	}
}

type testEnv struct {
	db      mapDB
	sv      StateView
	querier *mockQuerier
}

func newTestEnv() *testEnv {
	db := mapDB{}
	return &testEnv{
		db:      db,
		sv:      NewStateView(db.read, db.scan),
		querier: newMockQuerier(),
	}
}

func (e *testEnv) ctx(sender string, funds ...Coin) *ExecContext {
	return &ExecContext{
		Deps: Deps{Storage: e.sv, Querier: e.querier, API: mockAPI{}},
		Env:  Env{ContractAddress: testContract, BlockTime: 1_700_000_000},
		Info: MessageInfo{Sender: sender, Funds: funds},
	}
}

// saveState 直接写入托管状态并提交
func (e *testEnv) saveState(t *testing.T, st *CustodyState) {
	t.Helper()
	require.NoError(t, NewStateStore(e.sv).Save(st))
	e.db.apply(e.sv.Diff())
	e.sv = NewStateView(e.db.read, e.db.scan)
}

func nativeState(ratio string) *CustodyState {
	return &CustodyState{
		Pool:            NativeAsset(testPoolLP),
		EvacuateAddress: testEvacuate,
		MintRatio:       decimal.RequireFromString(ratio),
		RatioVersion:    RatioConfigurable,
	}
}

func coin(amount int64, denom string) Coin {
	return NewCoin(big.NewInt(amount), denom)
}
