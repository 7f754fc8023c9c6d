package vm

import (
	"fmt"

	"soulp/logs"
	"soulp/tokenfactory"
)

// Deposit 把附带的池子 LP 永久锁定，按比例向调用者铸造收据代币
// 不写状态，只产出一条 mint 指令
func Deposit(ctx *ExecContext, st *CustodyState, token tokenfactory.Token) (*Response, error) {
	// 1. 恰好一种资金
	if len(ctx.Info.Funds) != 1 {
		return nil, InvalidFunds(ReasonExpectedOneAsset)
	}
	fund := ctx.Info.Funds[0]

	// 2. 只接受原生池子 denom
	if !st.Pool.MatchesDenom(fund.Denom) {
		return nil, InvalidFunds(ReasonInvalidAsset)
	}

	amount, err := fund.AmountInt()
	if err != nil {
		return nil, err
	}

	// 3. floor(amount * ratio)
	ratio := st.EffectiveRatio()
	minted, err := MulFloor(amount, ratio)
	if err != nil {
		return nil, fmt.Errorf("deposit %s: %w", fund.String(), err)
	}

	logs.Debug("[Deposit] sender=%s amount=%s ratio=%s minted=%s",
		ctx.Info.Sender, amount.String(), ratio.String(), minted.String())

	// 4. mint 给调用者
	return NewResponse().AddMessages(stargateMsgs(token.Mint(minted, ctx.Info.Sender))...), nil
}

// DepositHandler 处理 deposit
type DepositHandler struct {
	contract *Contract
}

func (h *DepositHandler) Kind() string { return KindDeposit }

func (h *DepositHandler) Execute(ctx *ExecContext, msg *ExecuteMsg) (*Response, error) {
	if msg == nil || msg.Deposit == nil {
		return nil, ErrNilMessage
	}
	st, err := NewStateStore(ctx.Deps.Storage).Load()
	if err != nil {
		return nil, err
	}
	return Deposit(ctx, st, h.contract.Token(ctx.Env))
}
