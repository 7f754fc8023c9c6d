package vm

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InstantiateMsg 创建合约
type InstantiateMsg struct {
	Pool AssetRef `json:"pool"`
	// 为空时取 1；v1 下只能为 1
	MintRatio *decimal.Decimal `json:"mint_ratio,omitempty"`
	// 为空时取调用者
	EvacuateAddress *string `json:"evacuate_address,omitempty"`
}

// ExecuteMsg 三种操作恰好出现一个
type ExecuteMsg struct {
	// 永久锁定池子 LP 并铸造 SouLP
	Deposit *DepositMsg `json:"deposit,omitempty"`
	// 把误转入的资产（包括 LP 奖励）转到疏散地址
	Evacuate *EvacuateMsg `json:"evacuate,omitempty"`
	// 修改疏散地址，只有当前疏散地址可以调用
	ChangeEvacuateAddress *ChangeEvacuateAddressMsg `json:"change_evacuate_address,omitempty"`
}

type DepositMsg struct{}

type EvacuateMsg struct {
	Asset AssetRequest `json:"asset"`
}

type ChangeEvacuateAddressMsg struct {
	NewAddress string `json:"new_address"`
}

const (
	KindDeposit               = "deposit"
	KindEvacuate              = "evacuate"
	KindChangeEvacuateAddress = "change_evacuate_address"
	KindInstantiate           = "instantiate"
)

// Kind 消息种类，用于路由到 Handler
func (m *ExecuteMsg) Kind() (string, error) {
	if m == nil {
		return "", ErrNilMessage
	}
	kinds := make([]string, 0, 1)
	if m.Deposit != nil {
		kinds = append(kinds, KindDeposit)
	}
	if m.Evacuate != nil {
		kinds = append(kinds, KindEvacuate)
	}
	if m.ChangeEvacuateAddress != nil {
		kinds = append(kinds, KindChangeEvacuateAddress)
	}
	if len(kinds) != 1 {
		return "", fmt.Errorf("%w: execute message must set exactly one operation, got %v", ErrUnknownMessage, kinds)
	}
	return kinds[0], nil
}

// 便捷构造
func NewDepositMsg() ExecuteMsg { return ExecuteMsg{Deposit: &DepositMsg{}} }

func NewEvacuateMsg(asset EvacuateAsset) ExecuteMsg {
	return ExecuteMsg{Evacuate: &EvacuateMsg{Asset: NewAssetRequest(asset)}}
}

func NewChangeEvacuateAddressMsg(addr string) ExecuteMsg {
	return ExecuteMsg{ChangeEvacuateAddress: &ChangeEvacuateAddressMsg{NewAddress: addr}}
}

// QueryMsg 只读查询，恰好出现一个
type QueryMsg struct {
	State           *struct{} `json:"state,omitempty"`
	ReceiptDenom    *struct{} `json:"receipt_denom,omitempty"`
	TokenAddress    *struct{} `json:"token_address,omitempty"` // ReceiptDenom 的旧名字
	ContractVersion *struct{} `json:"contract_version,omitempty"`
}

func QueryState() QueryMsg           { return QueryMsg{State: &struct{}{}} }
func QueryReceiptDenom() QueryMsg    { return QueryMsg{ReceiptDenom: &struct{}{}} }
func QueryContractVersion() QueryMsg { return QueryMsg{ContractVersion: &struct{}{}} }

// StateResponse 查询 state 的返回
type StateResponse struct {
	Pool            AssetRef        `json:"pool"`
	EvacuateAddress string          `json:"evacuate_address"`
	MintRatio       decimal.Decimal `json:"mint_ratio"`
	RatioVersion    RatioVersion    `json:"ratio_version"`
}
