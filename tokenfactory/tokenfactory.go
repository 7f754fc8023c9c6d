// Package tokenfactory builds receipt-token denoms and the create/mint commands
// understood by an Osmosis-style token factory module.
package tokenfactory

import (
	"fmt"
	"math/big"
	"strings"

	"google.golang.org/protobuf/types/known/anypb"
)

const denomNamespace = "factory"

// Command 发给发行模块的不透明指令：类型标识 + protobuf 编码
type Command struct {
	TypeURL string
	Value   []byte
}

// ToAny 转成 google.protobuf.Any
func (c Command) ToAny() *anypb.Any {
	return &anypb.Any{TypeUrl: c.TypeURL, Value: c.Value}
}

// Token 一个由合约拥有的 tokenfactory 代币
type Token interface {
	// Owner 代币拥有者，通常是合约地址
	Owner() string
	// Subdenom 例如 "SouLP"
	Subdenom() string
	// Denom 由 Owner 和 Subdenom 推导的完整 denom
	Denom() string
	// Create 注册 denom 的指令
	Create() []Command
	// Mint 向 recipient 增发 amount
	Mint(amount *big.Int, recipient string) []Command
}

// Denom factory/<owner>/<subdenom>
func Denom(owner, subdenom string) string {
	return denomNamespace + "/" + owner + "/" + subdenom
}

// ParseDenom 拆出 owner 和 subdenom；非 factory denom 返回 false
func ParseDenom(denom string) (owner, subdenom string, ok bool) {
	parts := strings.SplitN(denom, "/", 3)
	if len(parts) != 3 || parts[0] != denomNamespace || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// Create 构造 MsgCreateDenom 指令
func Create(owner, subdenom string) Command {
	msg := &MsgCreateDenom{Sender: owner, Subdenom: subdenom}
	return Command{TypeURL: TypeURLMsgCreateDenom, Value: mustMarshal(msg.Marshal())}
}

// Mint 构造 MsgMint 指令
func Mint(owner, subdenom string, amount *big.Int, recipient string) Command {
	if amount == nil {
		amount = new(big.Int)
	}
	msg := &MsgMint{
		Sender: owner,
		Amount: &Coin{
			Denom:  Denom(owner, subdenom),
			Amount: amount.String(),
		},
		MintToAddress: recipient,
	}
	return Command{TypeURL: TypeURLMsgMint, Value: mustMarshal(msg.Marshal())}
}

// mustMarshal 调用方保证字段都是合法 UTF-8，
// 编码失败说明前置条件被破坏
func mustMarshal(b []byte, err error) []byte {
	if err != nil {
		panic(fmt.Sprintf("tokenfactory: %v", err))
	}
	return b
}

// DecodeCreateDenom 解析 MsgCreateDenom 指令
func DecodeCreateDenom(cmd Command) (*MsgCreateDenom, error) {
	if cmd.TypeURL != TypeURLMsgCreateDenom {
		return nil, fmt.Errorf("unexpected type url %s", cmd.TypeURL)
	}
	msg := &MsgCreateDenom{}
	if err := msg.Unmarshal(cmd.Value); err != nil {
		return nil, err
	}
	return msg, nil
}

// DecodeMint 解析 MsgMint 指令
func DecodeMint(cmd Command) (*MsgMint, error) {
	if cmd.TypeURL != TypeURLMsgMint {
		return nil, fmt.Errorf("unexpected type url %s", cmd.TypeURL)
	}
	msg := &MsgMint{}
	if err := msg.Unmarshal(cmd.Value); err != nil {
		return nil, err
	}
	return msg, nil
}

// OsmosisToken Osmosis tokenfactory 实现
type OsmosisToken struct {
	owner    string
	subdenom string
}

var _ Token = (*OsmosisToken)(nil)

func NewOsmosisToken(owner, subdenom string) *OsmosisToken {
	return &OsmosisToken{owner: owner, subdenom: subdenom}
}

func (t *OsmosisToken) Owner() string    { return t.owner }
func (t *OsmosisToken) Subdenom() string { return t.subdenom }
func (t *OsmosisToken) Denom() string    { return Denom(t.owner, t.subdenom) }

func (t *OsmosisToken) Create() []Command {
	return []Command{Create(t.owner, t.subdenom)}
}

func (t *OsmosisToken) Mint(amount *big.Int, recipient string) []Command {
	return []Command{Mint(t.owner, t.subdenom, amount, recipient)}
}
