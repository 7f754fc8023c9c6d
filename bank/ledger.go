// Package bank 本地账本：原生币、cw20、cw721 和 tokenfactory denom
// 所有读写都经过 vm.StateView，由 Executor 统一提交或丢弃
package bank

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"soulp/keys"
	"soulp/logs"
	"soulp/tokenfactory"
	"soulp/vm"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownDenom      = errors.New("denom not registered")
	ErrDenomExists       = errors.New("denom already exists")
	ErrNotDenomAdmin     = errors.New("sender is not the denom admin")
	ErrNotTokenOwner     = errors.New("sender does not own the token")
	ErrUnsupportedMsg    = errors.New("unsupported message")
)

// Ledger vm.Ledger 的实现
type Ledger struct{}

var _ vm.Ledger = (*Ledger)(nil)

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Querier(sv vm.StateView) vm.Querier {
	return &querier{sv: sv}
}

// Credit 直接增加余额
func (l *Ledger) Credit(sv vm.StateView, addr string, coins []vm.Coin) error {
	for _, c := range coins {
		amount, err := c.AmountInt()
		if err != nil {
			return err
		}
		if err := l.add(sv, addr, c.Denom, amount); err != nil {
			return err
		}
	}
	return nil
}

// CreditCw20 直接增加 cw20 余额
func (l *Ledger) CreditCw20(sv vm.StateView, contract, addr string, amount *big.Int) error {
	cur, err := GetCw20Balance(sv, contract, addr)
	if err != nil {
		return err
	}
	next, err := vm.SafeAdd(cur, amount)
	if err != nil {
		return err
	}
	return SetCw20Balance(sv, contract, addr, next)
}

// Transfer from -> to，任何一个 denom 不足整体失败
func (l *Ledger) Transfer(sv vm.StateView, from, to string, coins []vm.Coin) error {
	for _, c := range coins {
		amount, err := c.AmountInt()
		if err != nil {
			return err
		}
		if err := l.sub(sv, from, c.Denom, amount); err != nil {
			return err
		}
		if err := l.add(sv, to, c.Denom, amount); err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) add(sv vm.StateView, addr, denom string, amount *big.Int) error {
	cur, err := GetBalance(sv, addr, denom)
	if err != nil {
		return err
	}
	next, err := vm.SafeAdd(cur, amount)
	if err != nil {
		return fmt.Errorf("credit %s%s to %s: %w", amount.String(), denom, addr, err)
	}
	return SetBalance(sv, addr, denom, next)
}

func (l *Ledger) sub(sv vm.StateView, addr, denom string, amount *big.Int) error {
	cur, err := GetBalance(sv, addr, denom)
	if err != nil {
		return err
	}
	next, err := vm.SafeSub(cur, amount)
	if err != nil {
		if errors.Is(err, vm.ErrUnderflow) {
			return fmt.Errorf("%w: %s has %s%s, needs %s", ErrInsufficientFunds, addr, cur.String(), denom, amount.String())
		}
		return err
	}
	return SetBalance(sv, addr, denom, next)
}

// Dispatch 按顺序执行合约产出的消息
func (l *Ledger) Dispatch(sv vm.StateView, sender string, msgs []vm.CosmosMsg) error {
	for i, m := range msgs {
		var err error
		switch v := m.(type) {
		case vm.BankSendMsg:
			err = l.Transfer(sv, sender, v.ToAddress, v.Amount)
		case vm.WasmExecuteMsg:
			err = l.execWasm(sv, sender, v)
		case vm.StargateMsg:
			err = l.execStargate(sv, sender, v)
		default:
			err = fmt.Errorf("%w: %T", ErrUnsupportedMsg, m)
		}
		if err != nil {
			return fmt.Errorf("message %d (%s): %w", i, vm.MsgType(m), err)
		}
		logs.Trace("[Bank] dispatched %s from %s", vm.MsgType(m), sender)
	}
	return nil
}

// wasmPayload cw20 transfer 或 cw721 transfer_nft
type wasmPayload struct {
	Transfer    *vm.Cw20Transfer     `json:"transfer,omitempty"`
	TransferNft *vm.Cw721TransferNft `json:"transfer_nft,omitempty"`
}

func (l *Ledger) execWasm(sv vm.StateView, sender string, m vm.WasmExecuteMsg) error {
	var p wasmPayload
	if err := json.Unmarshal(m.Msg, &p); err != nil {
		return fmt.Errorf("decode wasm msg: %w", err)
	}
	switch {
	case p.Transfer != nil:
		return l.transferCw20(sv, m.ContractAddr, sender, p.Transfer.Recipient, p.Transfer.Amount)
	case p.TransferNft != nil:
		return l.transferNft(sv, m.ContractAddr, sender, p.TransferNft.Recipient, p.TransferNft.TokenID)
	}
	return fmt.Errorf("%w: wasm execute on %s", ErrUnsupportedMsg, m.ContractAddr)
}

func (l *Ledger) transferCw20(sv vm.StateView, contract, from, to, rawAmount string) error {
	amount, err := vm.ParseBalance(rawAmount)
	if err != nil {
		return err
	}
	cur, err := GetCw20Balance(sv, contract, from)
	if err != nil {
		return err
	}
	left, err := vm.SafeSub(cur, amount)
	if err != nil {
		return fmt.Errorf("%w: cw20 %s", ErrInsufficientFunds, contract)
	}
	if err := SetCw20Balance(sv, contract, from, left); err != nil {
		return err
	}
	return l.CreditCw20(sv, contract, to, amount)
}

// transferNft token 必须已登记且归 from 所有
func (l *Ledger) transferNft(sv vm.StateView, contract, from, to, tokenID string) error {
	key := keys.KeyCw721Owner(contract, tokenID)
	owner, exists, err := readString(sv, key)
	if err != nil {
		return err
	}
	if !exists || owner != from {
		return fmt.Errorf("%w: %s/%s", ErrNotTokenOwner, contract, tokenID)
	}
	return writeString(sv, key, to)
}

// CreditNft 登记 token 归属
func (l *Ledger) CreditNft(sv vm.StateView, contract, tokenID, owner string) error {
	return writeString(sv, keys.KeyCw721Owner(contract, tokenID), owner)
}

// NftOwner token 当前归属
func NftOwner(sv vm.StateView, contract, tokenID string) (string, bool, error) {
	return readString(sv, keys.KeyCw721Owner(contract, tokenID))
}

func (l *Ledger) execStargate(sv vm.StateView, sender string, m vm.StargateMsg) error {
	switch m.TypeURL {
	case tokenfactory.TypeURLMsgCreateDenom:
		msg, err := tokenfactory.DecodeCreateDenom(m.Command())
		if err != nil {
			return err
		}
		if msg.Sender != sender {
			return fmt.Errorf("%w: %s", ErrNotDenomAdmin, msg.Sender)
		}
		denom := tokenfactory.Denom(msg.Sender, msg.Subdenom)
		key := keys.KeyDenomMeta(denom)
		if _, exists, err := readString(sv, key); err != nil {
			return err
		} else if exists {
			return fmt.Errorf("%w: %s", ErrDenomExists, denom)
		}
		logs.Debug("[Bank] create denom %s", denom)
		return writeString(sv, key, msg.Sender)

	case tokenfactory.TypeURLMsgMint:
		msg, err := tokenfactory.DecodeMint(m.Command())
		if err != nil {
			return err
		}
		if msg.Amount == nil {
			return fmt.Errorf("%w: mint without amount", ErrUnsupportedMsg)
		}
		admin, exists, err := DenomAdmin(sv, msg.Amount.Denom)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", ErrUnknownDenom, msg.Amount.Denom)
		}
		if admin != sender || msg.Sender != sender {
			return fmt.Errorf("%w: %s", ErrNotDenomAdmin, msg.Sender)
		}
		amount, err := vm.ParseBalance(msg.Amount.Amount)
		if err != nil {
			return err
		}
		logs.Debug("[Bank] mint %s%s to %s", amount.String(), msg.Amount.Denom, msg.MintToAddress)
		return l.add(sv, msg.MintToAddress, msg.Amount.Denom, amount)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedMsg, m.TypeURL)
}

// DenomAdmin tokenfactory denom 的创建者
func DenomAdmin(sv vm.StateView, denom string) (string, bool, error) {
	return readString(sv, keys.KeyDenomMeta(denom))
}

func readString(sv vm.StateView, key string) (string, bool, error) {
	data, exists, err := sv.Get(key)
	if err != nil || !exists {
		return "", false, err
	}
	var rec wrapperspb.StringValue
	if err := unmarshalProtoCompat(data, &rec); err != nil {
		return "", false, fmt.Errorf("decode %s: %w", key, err)
	}
	return rec.GetValue(), true, nil
}

func writeString(sv vm.StateView, key, value string) error {
	data, err := proto.Marshal(wrapperspb.String(value))
	if err != nil {
		return err
	}
	sv.Set(key, data)
	return nil
}
