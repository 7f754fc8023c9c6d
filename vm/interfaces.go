package vm

import (
	"math/big"
	"time"
)

// ========== 核心接口定义 ==========

// StateView 状态视图接口
type StateView interface {
	//读/写/删某个 key 的状态；写入只写进这个视图，不直接落到底层 DB。
	Get(key string) ([]byte, bool, error)
	Set(key string, val []byte)
	Del(key string)
	//做一个快照点、必要时回滚到该点，失败时整次调用不留痕迹。
	Snapshot() int
	Revert(snap int) error
	//导出累积的写集，给提交阶段真正落库。
	Diff() []WriteOp
	// 扫描指定前缀下的所有键值对（合并底层存储与 overlay）
	Scan(prefix string) (map[string][]byte, error)
}

// DBManager 数据库管理器接口
type DBManager interface {
	EnqueueSet(key, value string)
	EnqueueDel(key string)
	ForceFlush() error
	Get(key string) ([]byte, error)
	// 前缀扫描，返回所有以 prefix 开头的键值对
	Scan(prefix string) (map[string][]byte, error)
}

// （读穿函数）
// 当 StateView.Get 本地 overlay 没命中时，定义“如何从底层存储读真实值”
type ReadThroughFn func(key string) ([]byte, error)

// ScanFn 用于 StateView 从底层存储做前缀扫描
type ScanFn func(prefix string) (map[string][]byte, error)

// Querier 外部账本查询
type Querier interface {
	// AllBalances 地址持有的全部原生币
	AllBalances(addr string) ([]Coin, error)
	// Cw20Balance 地址在某 cw20 合约中的余额
	Cw20Balance(contract, addr string) (*big.Int, error)
}

// AddressValidator 地址校验，返回规范化地址
type AddressValidator interface {
	Validate(addr string) (string, error)
}

// Ledger 宿主侧账本：随调用转入资金，并在成功后执行合约产出的消息
type Ledger interface {
	Querier(sv StateView) Querier
	Transfer(sv StateView, from, to string, coins []Coin) error
	Dispatch(sv StateView, sender string, msgs []CosmosMsg) error
	Credit(sv StateView, addr string, coins []Coin) error
	CreditCw20(sv StateView, contract, addr string, amount *big.Int) error
}

// Observer 执行指标
type Observer interface {
	ObserveInvocation(kind, status string, d time.Duration)
	ObserveMessages(kind string, n int)
}

// Handler 处理一种 ExecuteMsg
type Handler interface {
	//标识这个 Handler 处理哪种消息（比如 "deposit"）。
	Kind() string
	Execute(ctx *ExecContext, msg *ExecuteMsg) (*Response, error)
}
