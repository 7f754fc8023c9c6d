package vm

import (
	"encoding/json"
	"fmt"

	"soulp/tokenfactory"
)

// ========== 合约产出的出站消息 ==========

// CosmosMsg 合约交给宿主执行的消息，只有本包内的三种实现
type CosmosMsg interface {
	msgType() string
}

// BankSendMsg 原生币转账
type BankSendMsg struct {
	ToAddress string `json:"to_address"`
	Amount    []Coin `json:"amount"`
}

// WasmExecuteMsg 调用另一个合约
type WasmExecuteMsg struct {
	ContractAddr string          `json:"contract_addr"`
	Msg          json.RawMessage `json:"msg"`
	Funds        []Coin          `json:"funds"`
}

// StargateMsg 由外部模块解释的 protobuf 指令
type StargateMsg struct {
	TypeURL string `json:"type_url"`
	Value   []byte `json:"value"`
}

func (BankSendMsg) msgType() string    { return "bank" }
func (WasmExecuteMsg) msgType() string { return "wasm" }
func (StargateMsg) msgType() string    { return "stargate" }

// MsgType 返回消息种类 "bank" / "wasm" / "stargate"
func MsgType(m CosmosMsg) string {
	if m == nil {
		return ""
	}
	return m.msgType()
}

// Command 转回 tokenfactory 指令
func (m StargateMsg) Command() tokenfactory.Command {
	return tokenfactory.Command{TypeURL: m.TypeURL, Value: m.Value}
}

func stargateMsgs(cmds []tokenfactory.Command) []CosmosMsg {
	out := make([]CosmosMsg, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, StargateMsg{TypeURL: c.TypeURL, Value: c.Value})
	}
	return out
}

// ========== cw20 / cw721 执行消息 ==========

type Cw20ExecuteMsg struct {
	Transfer *Cw20Transfer `json:"transfer,omitempty"`
}

type Cw20Transfer struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type Cw721ExecuteMsg struct {
	TransferNft *Cw721TransferNft `json:"transfer_nft,omitempty"`
}

type Cw721TransferNft struct {
	Recipient string `json:"recipient"`
	TokenID   string `json:"token_id"`
}

// ========== Response ==========

// Attribute 事件属性
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Response 一次调用的产出：出站消息 + 属性
type Response struct {
	Messages   []CosmosMsg
	Attributes []Attribute
}

func NewResponse() *Response {
	return &Response{}
}

func (r *Response) AddMessages(msgs ...CosmosMsg) *Response {
	r.Messages = append(r.Messages, msgs...)
	return r
}

func (r *Response) AddAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

// msgEnvelope 对外 JSON：{"bank":{...}} / {"wasm":{...}} / {"stargate":{...}}
type msgEnvelope struct {
	Bank     *BankSendMsg    `json:"bank,omitempty"`
	Wasm     *WasmExecuteMsg `json:"wasm,omitempty"`
	Stargate *StargateMsg    `json:"stargate,omitempty"`
}

type responseJSON struct {
	Messages   []msgEnvelope `json:"messages"`
	Attributes []Attribute   `json:"attributes"`
}

func (r *Response) MarshalJSON() ([]byte, error) {
	out := responseJSON{
		Messages:   make([]msgEnvelope, 0, len(r.Messages)),
		Attributes: r.Attributes,
	}
	if out.Attributes == nil {
		out.Attributes = []Attribute{}
	}
	for _, m := range r.Messages {
		switch v := m.(type) {
		case BankSendMsg:
			out.Messages = append(out.Messages, msgEnvelope{Bank: &v})
		case WasmExecuteMsg:
			out.Messages = append(out.Messages, msgEnvelope{Wasm: &v})
		case StargateMsg:
			out.Messages = append(out.Messages, msgEnvelope{Stargate: &v})
		default:
			return nil, fmt.Errorf("unsupported message %T", m)
		}
	}
	return json.Marshal(out)
}
