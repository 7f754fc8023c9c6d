package vm

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// MulFloor floor(amount * ratio)，全程十进制精确运算，不会向上取整
func MulFloor(amount *big.Int, ratio decimal.Decimal) (*big.Int, error) {
	if amount == nil {
		return big.NewInt(0), nil
	}
	if amount.Sign() < 0 {
		return nil, ErrNegativeBalance
	}
	if ratio.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s is negative", ErrInvalidRatio, ratio.String())
	}
	out := decimal.NewFromBigInt(amount, 0).Mul(ratio).Floor().BigInt()
	if out.Cmp(MaxUint256) > 0 {
		return nil, ErrOverflow
	}
	return out, nil
}

// parseRatio 解析比例字符串，例如 "0.5"
func parseRatio(raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidRatio, err)
	}
	if v.Sign() < 0 {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", ErrInvalidRatio, raw)
	}
	return v, nil
}

// MustRatio panic 版本（仅用于常量/测试）
func MustRatio(raw string) decimal.Decimal {
	v, err := parseRatio(raw)
	if err != nil {
		panic(err)
	}
	return v
}
