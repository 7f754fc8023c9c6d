package vm

import (
	"errors"
	"math/big"
)

// 金额统一用 big.Int，上限 2^256-1

var (
	ErrOverflow        = errors.New("arithmetic overflow")
	ErrUnderflow       = errors.New("arithmetic underflow")
	ErrInvalidBalance  = errors.New("invalid balance format")
	ErrBalanceTooLong  = errors.New("balance string too long")
	ErrNegativeBalance = errors.New("negative balance not allowed")
)

// MaxBalanceStringLen 2^256-1 的十进制位数
const MaxBalanceStringLen = 78

// MaxUint256 金额上限
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// ZeroBalance 新的 0
func ZeroBalance() *big.Int { return new(big.Int) }

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return ZeroBalance()
	}
	return v
}

// SafeAdd a + b，超过 MaxUint256 返回 ErrOverflow
func SafeAdd(a, b *big.Int) (*big.Int, error) {
	a, b = orZero(a), orZero(b)
	if a.Sign() < 0 || b.Sign() < 0 {
		return nil, ErrNegativeBalance
	}
	sum := new(big.Int).Add(a, b)
	if sum.Cmp(MaxUint256) > 0 {
		return nil, ErrOverflow
	}
	return sum, nil
}

// SafeSub a - b，a < b 返回 ErrUnderflow
func SafeSub(a, b *big.Int) (*big.Int, error) {
	a, b = orZero(a), orZero(b)
	if a.Sign() < 0 || b.Sign() < 0 {
		return nil, ErrNegativeBalance
	}
	if a.Cmp(b) < 0 {
		return nil, ErrUnderflow
	}
	return new(big.Int).Sub(a, b), nil
}

// ParseBalance 解析十进制金额字符串，空串视为 0
// 只接受数字字符，不允许符号和空格
func ParseBalance(s string) (*big.Int, error) {
	if s == "" {
		return ZeroBalance(), nil
	}
	if len(s) > MaxBalanceStringLen {
		return nil, ErrBalanceTooLong
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil, ErrInvalidBalance
		}
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, ErrInvalidBalance
	}
	if v.Cmp(MaxUint256) > 0 {
		return nil, ErrOverflow
	}
	return v, nil
}
