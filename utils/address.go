package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

var (
	ErrEmptyAddress      = errors.New("empty address")
	ErrAddressNotNormal  = errors.New("address not normalized")
	ErrAddressPrefix     = errors.New("wrong bech32 prefix")
	ErrAddressLength     = errors.New("invalid address length")
	ErrAddressNotBech32  = errors.New("invalid bech32 address")
	ErrEmptyBech32Prefix = errors.New("empty bech32 prefix")
)

// 账户地址 20 字节，合约地址 32 字节
const (
	AccountAddressLen  = 20
	ContractAddressLen = 32
)

// Bech32Validator 校验人类可读地址（bech32，带固定前缀）
type Bech32Validator struct {
	Prefix string
}

// NewBech32Validator 创建指定前缀的校验器
func NewBech32Validator(prefix string) *Bech32Validator {
	return &Bech32Validator{Prefix: prefix}
}

// Validate 返回规范化后的地址；只接受全小写形式
func (v *Bech32Validator) Validate(addr string) (string, error) {
	if addr == "" {
		return "", ErrEmptyAddress
	}
	if strings.ToLower(addr) != addr {
		return "", fmt.Errorf("%w: %s", ErrAddressNotNormal, addr)
	}
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAddressNotBech32, err)
	}
	if hrp != v.Prefix {
		return "", fmt.Errorf("%w: want %s, got %s", ErrAddressPrefix, v.Prefix, hrp)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAddressNotBech32, err)
	}
	if len(raw) != AccountAddressLen && len(raw) != ContractAddressLen {
		return "", fmt.Errorf("%w: %d bytes", ErrAddressLength, len(raw))
	}
	return addr, nil
}

// EncodeAddress 把原始字节编码为 bech32 地址
func EncodeAddress(prefix string, raw []byte) (string, error) {
	if prefix == "" {
		return "", ErrEmptyBech32Prefix
	}
	conv, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(prefix, conv)
}

// DeriveAccountAddress 从任意种子推导 20 字节账户地址: Hash160(seed)
// 本地工具与测试用来生成合法账户
func DeriveAccountAddress(prefix, seed string) (string, error) {
	return EncodeAddress(prefix, btcutil.Hash160([]byte(seed)))
}

// DeriveContractAddress 推导 32 字节合约地址: sha256("wasm" | 0x00 | creator | label)
// 同一 (creator, label) 总得到同一地址
func DeriveContractAddress(prefix, creator, label string) (string, error) {
	buf := make([]byte, 0, 5+len(creator)+len(label)+1)
	buf = append(buf, "wasm"...)
	buf = append(buf, 0)
	buf = append(buf, creator...)
	buf = append(buf, 0)
	buf = append(buf, label...)
	return EncodeAddress(prefix, chainhash.HashB(buf))
}

// MustDeriveAccountAddress panic 版本（仅用于测试/固定种子）
func MustDeriveAccountAddress(prefix, seed string) string {
	addr, err := DeriveAccountAddress(prefix, seed)
	if err != nil {
		panic(err)
	}
	return addr
}
