package vm

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// ========== 错误定义 ==========

var (
	ErrInvalidSnapshot = errors.New("invalid snapshot index")
	ErrNilMessage      = errors.New("nil message")
	ErrInvalidCoin     = errors.New("invalid coin")
)

// ========== 基础类型定义 ==========

// “要怎么改状态”的清单
type WriteOp struct {
	Key      string // 完整的 key（包括命名空间前缀）
	Value    []byte // 序列化后的值
	Del      bool   // true表示删除操作
	Category string // 数据分类：contract, ledger, kv
}

// GetKey 获取 key
func (w *WriteOp) GetKey() string {
	return w.Key
}

// GetValue 获取 value
func (w *WriteOp) GetValue() []byte {
	return w.Value
}

// IsDel 是否删除操作
func (w *WriteOp) IsDel() bool {
	return w.Del
}

const (
	StatusSucceed = "SUCCEED"
	StatusFailed  = "FAILED"
)

// 记录一次调用的执行结果
type Receipt struct {
	TxID         string   `json:"tx_id"`
	Kind         string   `json:"kind"`
	Sender       string   `json:"sender"`
	Status       string   `json:"status"` // "SUCCEED" or "FAILED"
	Error        string   `json:"error,omitempty"`
	Timestamp    int64    `json:"timestamp"`
	Logs         []string `json:"logs,omitempty"` // key=value 形式的属性
	MessageCount int      `json:"message_count"`
	WriteCount   int      `json:"write_count"`
}

// ========== 调用上下文 ==========

// Env 宿主提供的环境
type Env struct {
	ContractAddress string
	BlockTime       int64
}

// MessageInfo 调用者和随调用附带的资金
type MessageInfo struct {
	Sender string
	Funds  []Coin
}

// Deps 合约能接触到的全部外部依赖
type Deps struct {
	Storage StateView
	Querier Querier
	API     AddressValidator
}

// ExecContext 单次调用的上下文
type ExecContext struct {
	Deps Deps
	Env  Env
	Info MessageInfo
}

// ========== Coin ==========

// Coin 原生币数量，金额用十进制字符串表示
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// NewCoin 由 big.Int 构造
func NewCoin(amount *big.Int, denom string) Coin {
	if amount == nil {
		amount = new(big.Int)
	}
	return Coin{Denom: denom, Amount: amount.String()}
}

// NewCoins 单个 coin 的切片
func NewCoins(amount int64, denom string) []Coin {
	return []Coin{NewCoin(big.NewInt(amount), denom)}
}

// AmountInt 解析金额
func (c Coin) AmountInt() (*big.Int, error) {
	v, err := ParseBalance(c.Amount)
	if err != nil {
		return nil, fmt.Errorf("coin %s: %w", c.Denom, err)
	}
	return v, nil
}

func (c Coin) String() string {
	return c.Amount + c.Denom
}

// CoinsString 形如 "100uatom,50uosmo"
func CoinsString(coins []Coin) string {
	parts := make([]string, len(coins))
	for i, c := range coins {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

var coinRe = regexp.MustCompile(`^([0-9]+)([a-zA-Z][a-zA-Z0-9/:._-]{1,127})$`)

// ParseCoins CoinsString 的逆操作，空串返回空切片
func ParseCoins(s string) ([]Coin, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []Coin{}, nil
	}
	parts := strings.Split(s, ",")
	coins := make([]Coin, 0, len(parts))
	for _, p := range parts {
		m := coinRe.FindStringSubmatch(strings.TrimSpace(p))
		if m == nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCoin, p)
		}
		amount, err := ParseBalance(m[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidCoin, p, err)
		}
		coins = append(coins, NewCoin(amount, m[2]))
	}
	return coins, nil
}
