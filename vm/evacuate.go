package vm

import (
	"encoding/json"
	"fmt"

	"soulp/logs"
)

// Evacuate 把合约持有的某类资产转给 recipient；池子资产永远不会被转出
func Evacuate(ctx *ExecContext, pool AssetRef, asset EvacuateAsset, recipient string) ([]CosmosMsg, error) {
	switch a := asset.(type) {
	case EvacuateNative:
		return evacuateNative(ctx, pool, recipient)
	case EvacuateCw20:
		return evacuateCw20(ctx, pool, a, recipient)
	case EvacuateCw721:
		return evacuateCw721(a, recipient)
	case nil:
		return nil, fmt.Errorf("%w: nil evacuate asset", ErrUnknownMessage)
	default:
		return nil, fmt.Errorf("%w: evacuate asset %T", ErrUnknownMessage, asset)
	}
}

// evacuateNative 除池子 denom 外，每个 denom 一条 bank send
func evacuateNative(ctx *ExecContext, pool AssetRef, recipient string) ([]CosmosMsg, error) {
	if ctx.Deps.Querier == nil {
		return nil, fmt.Errorf("evacuate native: no querier")
	}
	balances, err := ctx.Deps.Querier.AllBalances(ctx.Env.ContractAddress)
	if err != nil {
		return nil, fmt.Errorf("query balances of %s: %w", ctx.Env.ContractAddress, err)
	}

	msgs := make([]CosmosMsg, 0, len(balances))
	for _, c := range balances {
		if pool.MatchesDenom(c.Denom) {
			continue
		}
		msgs = append(msgs, BankSendMsg{
			ToAddress: recipient,
			Amount:    []Coin{c},
		})
	}
	return msgs, nil
}

// evacuateCw20 整个余额一条 transfer，余额为 0 也照发
func evacuateCw20(ctx *ExecContext, pool AssetRef, a EvacuateCw20, recipient string) ([]CosmosMsg, error) {
	contract, err := validateAddr(ctx.Deps.API, a.Contract)
	if err != nil {
		return nil, err
	}
	if pool.IsCw20() && pool.ID == contract {
		return nil, InvalidFunds(ReasonEvacuatePool)
	}
	if ctx.Deps.Querier == nil {
		return nil, fmt.Errorf("evacuate cw20: no querier")
	}
	balance, err := ctx.Deps.Querier.Cw20Balance(contract, ctx.Env.ContractAddress)
	if err != nil {
		return nil, fmt.Errorf("query cw20 %s balance: %w", contract, err)
	}
	if balance == nil {
		balance = ZeroBalance()
	}

	payload, err := json.Marshal(Cw20ExecuteMsg{Transfer: &Cw20Transfer{
		Recipient: recipient,
		Amount:    balance.String(),
	}})
	if err != nil {
		return nil, err
	}
	return []CosmosMsg{WasmExecuteMsg{ContractAddr: contract, Msg: payload, Funds: []Coin{}}}, nil
}

// evacuateCw721 每个 token id 一条 transfer_nft，保持输入顺序，不去重
func evacuateCw721(a EvacuateCw721, recipient string) ([]CosmosMsg, error) {
	msgs := make([]CosmosMsg, 0, len(a.TokenIDs))
	for _, id := range a.TokenIDs {
		payload, err := json.Marshal(Cw721ExecuteMsg{TransferNft: &Cw721TransferNft{
			Recipient: recipient,
			TokenID:   id,
		}})
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, WasmExecuteMsg{ContractAddr: a.Contract, Msg: payload, Funds: []Coin{}})
	}
	return msgs, nil
}

// EvacuateHandler 处理 evacuate
type EvacuateHandler struct{}

func (h *EvacuateHandler) Kind() string { return KindEvacuate }

func (h *EvacuateHandler) Execute(ctx *ExecContext, msg *ExecuteMsg) (*Response, error) {
	if msg == nil || msg.Evacuate == nil {
		return nil, ErrNilMessage
	}
	asset, err := msg.Evacuate.Asset.Asset()
	if err != nil {
		return nil, err
	}

	st, err := NewStateStore(ctx.Deps.Storage).Load()
	if err != nil {
		return nil, err
	}
	// 存储的地址读出来后再校验一次
	recipient, err := validateAddr(ctx.Deps.API, st.EvacuateAddress)
	if err != nil {
		return nil, err
	}

	msgs, err := Evacuate(ctx, st.Pool, asset, recipient)
	if err != nil {
		return nil, err
	}
	logs.Debug("[Evacuate] asset=%T recipient=%s messages=%d", asset, recipient, len(msgs))

	return NewResponse().
		AddMessages(msgs...).
		AddAttribute("action", "evacuate"), nil
}
