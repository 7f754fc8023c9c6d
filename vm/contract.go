package vm

import (
	"encoding/json"
	"fmt"

	"soulp/config"
	"soulp/logs"
	"soulp/tokenfactory"

	"github.com/shopspring/decimal"
)

// Contract SouLP 托管合约：实例化、三种执行操作和查询
// 合约本身无状态，所有状态都经由 ExecContext.Deps.Storage 读写
type Contract struct {
	Name         string
	Version      string
	Subdenom     string
	RatioVersion RatioVersion

	registry *HandlerRegistry
}

// NewContract 按配置创建合约并注册默认 Handler
func NewContract(cfg *config.ContractConfig) (*Contract, error) {
	if cfg == nil {
		def := config.DefaultConfig().Contract
		cfg = &def
	}
	c := &Contract{
		Name:         cfg.Name,
		Version:      cfg.Version,
		Subdenom:     cfg.Subdenom,
		RatioVersion: RatioVersion(cfg.RatioVersion),
		registry:     NewHandlerRegistry(),
	}
	if c.Subdenom == "" {
		return nil, fmt.Errorf("empty subdenom")
	}
	if c.RatioVersion != RatioFixed && c.RatioVersion != RatioConfigurable {
		return nil, fmt.Errorf("unknown ratio version %q", c.RatioVersion)
	}
	if err := RegisterDefaultHandlers(c.registry, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Token 当前合约地址下的收据代币
func (c *Contract) Token(env Env) tokenfactory.Token {
	return tokenfactory.NewOsmosisToken(env.ContractAddress, c.Subdenom)
}

// Registry 已注册的 Handler
func (c *Contract) Registry() *HandlerRegistry {
	return c.registry
}

// resolveRatio v1 只能是 1；v2 默认 1，不能为负
func (c *Contract) resolveRatio(requested *decimal.Decimal) (decimal.Decimal, error) {
	if requested == nil {
		return one, nil
	}
	if requested.Sign() < 0 {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", ErrInvalidRatio, requested.String())
	}
	if c.RatioVersion == RatioFixed && !requested.Equal(one) {
		return decimal.Zero, fmt.Errorf("%w: ratio version %s only supports 1:1", ErrInvalidRatio, c.RatioVersion)
	}
	return *requested, nil
}

// Instantiate 写入托管状态和版本记录，并产出创建收据代币的指令
func (c *Contract) Instantiate(ctx *ExecContext, msg *InstantiateMsg) (*Response, error) {
	if msg == nil {
		return nil, ErrNilMessage
	}
	store := NewStateStore(ctx.Deps.Storage)

	// 1. 只能实例化一次
	exists, err := store.Exists()
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyInstantiated
	}

	// 2. 池子资产
	pool := msg.Pool
	if err := pool.Validate(); err != nil {
		return nil, err
	}
	if pool.IsCw20() {
		addr, err := validateAddr(ctx.Deps.API, pool.ID)
		if err != nil {
			return nil, err
		}
		pool = Cw20Asset(addr)
	}

	// 3. 疏散地址，缺省为调用者
	evacuate := ctx.Info.Sender
	if msg.EvacuateAddress != nil {
		evacuate, err = validateAddr(ctx.Deps.API, *msg.EvacuateAddress)
		if err != nil {
			return nil, err
		}
	}

	// 4. 比例
	ratio, err := c.resolveRatio(msg.MintRatio)
	if err != nil {
		return nil, err
	}

	st := &CustodyState{
		Pool:            pool,
		EvacuateAddress: evacuate,
		MintRatio:       ratio,
		RatioVersion:    c.RatioVersion,
	}
	if err := store.Save(st); err != nil {
		return nil, err
	}
	if err := store.SaveInfo(&ContractInfo{Contract: c.Name, Version: c.Version}); err != nil {
		return nil, err
	}

	token := c.Token(ctx.Env)
	logs.Info("[Contract] instantiated pool=%s evacuate=%s ratio=%s denom=%s",
		pool.String(), evacuate, ratio.String(), token.Denom())

	return NewResponse().
		AddMessages(stargateMsgs(token.Create())...).
		AddAttribute("method", "instantiate"), nil
}

// Execute 路由到对应 Handler
func (c *Contract) Execute(ctx *ExecContext, msg *ExecuteMsg) (*Response, error) {
	kind, err := msg.Kind()
	if err != nil {
		return nil, err
	}
	h, ok := c.registry.Get(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMessage, kind)
	}
	return h.Execute(ctx, msg)
}

// Query 只读查询，返回 JSON
func (c *Contract) Query(deps Deps, env Env, msg *QueryMsg) ([]byte, error) {
	if msg == nil {
		return nil, ErrNilMessage
	}
	n := 0
	for _, set := range []bool{msg.State != nil, msg.ReceiptDenom != nil, msg.TokenAddress != nil, msg.ContractVersion != nil} {
		if set {
			n++
		}
	}
	if n != 1 {
		return nil, fmt.Errorf("%w: query must set exactly one field, got %d", ErrUnknownMessage, n)
	}

	store := NewStateStore(deps.Storage)
	switch {
	case msg.State != nil:
		st, err := store.Load()
		if err != nil {
			return nil, err
		}
		return json.Marshal(StateResponse{
			Pool:            st.Pool,
			EvacuateAddress: st.EvacuateAddress,
			MintRatio:       st.EffectiveRatio(),
			RatioVersion:    st.RatioVersion,
		})
	case msg.ReceiptDenom != nil, msg.TokenAddress != nil:
		return json.Marshal(c.Token(env).Denom())
	default:
		info, err := store.LoadInfo()
		if err != nil {
			return nil, err
		}
		return json.Marshal(info)
	}
}
