package bank

import (
	"fmt"
	"math/big"
	"sort"

	"soulp/keys"
	"soulp/vm"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ============================================
// 余额读写辅助函数
// 每个 (地址, denom) 一条记录：v1_balance_{len}_{address}_{denom}
// 值为 wrapperspb.StringValue 包裹的十进制字符串
// ============================================

// readAmount 不存在时返回 0
func readAmount(sv vm.StateView, key string) (*big.Int, error) {
	data, exists, err := sv.Get(key)
	if err != nil {
		return nil, err
	}
	if !exists || len(data) == 0 {
		return vm.ZeroBalance(), nil
	}
	var rec wrapperspb.StringValue
	if err := unmarshalProtoCompat(data, &rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return vm.ParseBalance(rec.GetValue())
}

// writeAmount 余额为 0 时删除记录
func writeAmount(sv vm.StateView, key string, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		sv.Del(key)
		return nil
	}
	data, err := proto.Marshal(wrapperspb.String(amount.String()))
	if err != nil {
		return err
	}
	sv.Set(key, data)
	return nil
}

// GetBalance 原生币余额
func GetBalance(sv vm.StateView, addr, denom string) (*big.Int, error) {
	return readAmount(sv, keys.KeyBalance(addr, denom))
}

// SetBalance 覆盖原生币余额
func SetBalance(sv vm.StateView, addr, denom string, amount *big.Int) error {
	return writeAmount(sv, keys.KeyBalance(addr, denom), amount)
}

// GetCw20Balance cw20 余额
func GetCw20Balance(sv vm.StateView, contract, addr string) (*big.Int, error) {
	return readAmount(sv, keys.KeyCw20Balance(contract, addr))
}

// SetCw20Balance 覆盖 cw20 余额
func SetCw20Balance(sv vm.StateView, contract, addr string, amount *big.Int) error {
	return writeAmount(sv, keys.KeyCw20Balance(contract, addr), amount)
}

// ========== vm.Querier 实现 ==========

type querier struct {
	sv vm.StateView
}

var _ vm.Querier = (*querier)(nil)

// AllBalances 按 denom 排序，跳过 0 余额
func (q *querier) AllBalances(addr string) ([]vm.Coin, error) {
	entries, err := q.sv.Scan(keys.KeyBalancePrefix(addr))
	if err != nil {
		return nil, err
	}
	denoms := make([]string, 0, len(entries))
	for k := range entries {
		if denom, ok := keys.DenomFromBalanceKey(addr, k); ok {
			denoms = append(denoms, denom)
		}
	}
	sort.Strings(denoms)

	coins := make([]vm.Coin, 0, len(denoms))
	for _, denom := range denoms {
		amount, err := GetBalance(q.sv, addr, denom)
		if err != nil {
			return nil, err
		}
		if amount.Sign() == 0 {
			continue
		}
		coins = append(coins, vm.NewCoin(amount, denom))
	}
	return coins, nil
}

func (q *querier) Cw20Balance(contract, addr string) (*big.Int, error) {
	return GetCw20Balance(q.sv, contract, addr)
}
