package vm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"soulp/keys"
	"soulp/logs"

	"github.com/google/uuid"
)

var ErrReceiptNotFound = errors.New("receipt not found")

// Result 一次调用的结果
type Result struct {
	Receipt  *Receipt
	Response *Response
}

// Executor 宿主侧执行器：每次调用一个新的 StateView，成功整体提交，失败整体丢弃
type Executor struct {
	mu       sync.Mutex
	DB       DBManager
	Contract *Contract
	Ledger   Ledger
	API      AddressValidator
	Cache    *ReceiptCache
	Observer Observer
	ReadFn   ReadThroughFn
	ScanFn   ScanFn

	contractAddr string
	now          func() time.Time
}

type ExecutorOption func(*Executor)

func WithReceiptCache(c *ReceiptCache) ExecutorOption {
	return func(x *Executor) { x.Cache = c }
}

func WithObserver(o Observer) ExecutorOption {
	return func(x *Executor) { x.Observer = o }
}

// WithClock 测试用
func WithClock(now func() time.Time) ExecutorOption {
	return func(x *Executor) { x.now = now }
}

func NewExecutor(db DBManager, contract *Contract, ledger Ledger, api AddressValidator, contractAddr string, opts ...ExecutorOption) *Executor {
	x := &Executor{
		DB:           db,
		Contract:     contract,
		Ledger:       ledger,
		API:          api,
		contractAddr: contractAddr,
		now:          time.Now,
	}
	x.ReadFn = func(key string) ([]byte, error) {
		return db.Get(key)
	}
	x.ScanFn = func(prefix string) (map[string][]byte, error) {
		return db.Scan(prefix)
	}
	for _, opt := range opts {
		opt(x)
	}
	if x.Cache == nil {
		x.Cache, _ = NewReceiptCache(0)
	}
	return x
}

// ContractAddress 合约自身地址
func (x *Executor) ContractAddress() string {
	return x.contractAddr
}

func (x *Executor) newContext(sv StateView, sender string, funds []Coin) *ExecContext {
	return &ExecContext{
		Deps: Deps{
			Storage: sv,
			Querier: x.Ledger.Querier(sv),
			API:     x.API,
		},
		Env: Env{
			ContractAddress: x.contractAddr,
			BlockTime:       x.now().Unix(),
		},
		Info: MessageInfo{Sender: sender, Funds: funds},
	}
}

// Instantiate 创建合约
func (x *Executor) Instantiate(sender string, funds []Coin, msg *InstantiateMsg) (*Result, error) {
	return x.invoke(KindInstantiate, sender, funds, func(ctx *ExecContext) (*Response, error) {
		return x.Contract.Instantiate(ctx, msg)
	})
}

// Execute 执行 deposit / evacuate / change_evacuate_address
func (x *Executor) Execute(sender string, funds []Coin, msg *ExecuteMsg) (*Result, error) {
	kind, err := msg.Kind()
	if err != nil {
		kind = "unknown"
	}
	return x.invoke(kind, sender, funds, func(ctx *ExecContext) (*Response, error) {
		return x.Contract.Execute(ctx, msg)
	})
}

// Query 只读，不加锁写
func (x *Executor) Query(msg *QueryMsg) ([]byte, error) {
	sv := NewStateView(x.ReadFn, x.ScanFn)
	ctx := x.newContext(sv, "", nil)
	return x.Contract.Query(ctx.Deps, ctx.Env, msg)
}

// invoke 一次调用的完整流程
func (x *Executor) invoke(kind, sender string, funds []Coin, fn func(ctx *ExecContext) (*Response, error)) (*Result, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	start := x.now()
	sv := NewStateView(x.ReadFn, x.ScanFn)
	snap := sv.Snapshot()
	ctx := x.newContext(sv, sender, funds)

	receipt := &Receipt{
		TxID:      uuid.NewString(),
		Kind:      kind,
		Sender:    sender,
		Timestamp: ctx.Env.BlockTime,
	}

	resp, err := x.run(ctx, sv, fn)
	if err != nil {
		// 整次调用不留痕迹，只留失败回执
		if rerr := sv.Revert(snap); rerr != nil {
			logs.Error("[Executor] revert %s failed: %v", receipt.TxID, rerr)
		}
		receipt.Status = StatusFailed
		receipt.Error = err.Error()
		logs.Warn("[Executor] %s by %s failed: %v", kind, sender, err)
	} else {
		receipt.Status = StatusSucceed
		receipt.MessageCount = len(resp.Messages)
		for _, a := range resp.Attributes {
			receipt.Logs = append(receipt.Logs, a.Key+"="+a.Value)
		}
		diff := sv.Diff()
		receipt.WriteCount = len(diff)
		for _, w := range diff {
			if w.Del {
				x.DB.EnqueueDel(w.Key)
			} else {
				x.DB.EnqueueSet(w.Key, string(w.Value))
			}
		}
	}

	if cerr := x.commitReceipt(receipt); cerr != nil {
		// 合约错误和落库错误都要带出去
		return nil, errors.Join(err, cerr)
	}
	x.observe(kind, receipt, start, resp)

	if err != nil {
		return &Result{Receipt: receipt}, err
	}
	logs.Info("[Executor] %s %s by %s ok, messages=%d writes=%d",
		kind, receipt.TxID, sender, receipt.MessageCount, receipt.WriteCount)
	return &Result{Receipt: receipt, Response: resp}, nil
}

// run 0. 校验调用者 1. 附带资金转入合约 2. 执行合约 3. 宿主执行合约产出的消息
func (x *Executor) run(ctx *ExecContext, sv StateView, fn func(ctx *ExecContext) (*Response, error)) (*Response, error) {
	if _, err := validateAddr(x.API, ctx.Info.Sender); err != nil {
		return nil, err
	}
	if len(ctx.Info.Funds) > 0 {
		if err := x.Ledger.Transfer(sv, ctx.Info.Sender, x.contractAddr, ctx.Info.Funds); err != nil {
			return nil, fmt.Errorf("attach funds: %w", err)
		}
	}
	resp, err := fn(ctx)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		resp = NewResponse()
	}
	if err := x.Ledger.Dispatch(sv, x.contractAddr, resp.Messages); err != nil {
		return nil, fmt.Errorf("dispatch messages: %w", err)
	}
	return resp, nil
}

func (x *Executor) commitReceipt(r *Receipt) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	key := keys.KeyReceipt(r.TxID)
	x.DB.EnqueueSet(key, string(data))
	if err := x.DB.ForceFlush(); err != nil {
		return &StorageError{Op: "commit", Key: key, Err: err}
	}
	x.Cache.Put(r)
	return nil
}

func (x *Executor) observe(kind string, r *Receipt, start time.Time, resp *Response) {
	if x.Observer == nil {
		return
	}
	x.Observer.ObserveInvocation(kind, r.Status, x.now().Sub(start))
	if resp != nil {
		x.Observer.ObserveMessages(kind, len(resp.Messages))
	}
}

// GetReceipt 先查缓存再查 DB
func (x *Executor) GetReceipt(id string) (*Receipt, error) {
	if r, ok := x.Cache.Get(id); ok {
		return r, nil
	}
	data, err := x.DB.Get(keys.KeyReceipt(id))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrReceiptNotFound, id)
	}
	var r Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	x.Cache.Put(&r)
	return &r, nil
}

// Balances 地址持有的全部原生币
func (x *Executor) Balances(addr string) ([]Coin, error) {
	sv := NewStateView(x.ReadFn, x.ScanFn)
	return x.Ledger.Querier(sv).AllBalances(addr)
}

// Cw20Balance 地址在某 cw20 合约中的余额
func (x *Executor) Cw20Balance(contract, addr string) (*big.Int, error) {
	sv := NewStateView(x.ReadFn, x.ScanFn)
	return x.Ledger.Querier(sv).Cw20Balance(contract, addr)
}

// Fund 直接给地址记账（本地环境注资用）
func (x *Executor) Fund(addr string, coins []Coin) error {
	if _, err := validateAddr(x.API, addr); err != nil {
		return err
	}
	return x.hostWrite(func(sv StateView) error {
		return x.Ledger.Credit(sv, addr, coins)
	})
}

// FundCw20 直接给地址记 cw20 余额
func (x *Executor) FundCw20(contract, addr string, amount *big.Int) error {
	for _, a := range []string{contract, addr} {
		if _, err := validateAddr(x.API, a); err != nil {
			return err
		}
	}
	return x.hostWrite(func(sv StateView) error {
		return x.Ledger.CreditCw20(sv, contract, addr, amount)
	})
}

func (x *Executor) hostWrite(fn func(sv StateView) error) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	sv := NewStateView(x.ReadFn, x.ScanFn)
	if err := fn(sv); err != nil {
		return err
	}
	for _, w := range sv.Diff() {
		if w.Del {
			x.DB.EnqueueDel(w.Key)
		} else {
			x.DB.EnqueueSet(w.Key, string(w.Value))
		}
	}
	if err := x.DB.ForceFlush(); err != nil {
		return &StorageError{Op: "commit", Err: err}
	}
	return nil
}
