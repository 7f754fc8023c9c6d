package vm

import (
	"encoding/json"
	"fmt"
)

// ========== 锁定资产标识 ==========

type AssetKind int

const (
	AssetNative AssetKind = iota + 1 // 原生币 denom
	AssetCw20                        // cw20 合约地址
)

// AssetRef 被锁定的池子资产：原生 denom 或 cw20 合约
type AssetRef struct {
	Kind AssetKind
	ID   string
}

func NativeAsset(denom string) AssetRef   { return AssetRef{Kind: AssetNative, ID: denom} }
func Cw20Asset(contract string) AssetRef { return AssetRef{Kind: AssetCw20, ID: contract} }

func (a AssetRef) IsNative() bool { return a.Kind == AssetNative }
func (a AssetRef) IsCw20() bool   { return a.Kind == AssetCw20 }

// MatchesDenom 原生币 denom 精确比较
func (a AssetRef) MatchesDenom(denom string) bool {
	return a.Kind == AssetNative && a.ID == denom
}

// Validate 只检查结构，地址格式由 AddressValidator 负责
func (a AssetRef) Validate() error {
	if a.Kind != AssetNative && a.Kind != AssetCw20 {
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidPool, a.Kind)
	}
	if a.ID == "" {
		return fmt.Errorf("%w: empty identifier", ErrInvalidPool)
	}
	return nil
}

func (a AssetRef) String() string {
	switch a.Kind {
	case AssetNative:
		return "native:" + a.ID
	case AssetCw20:
		return "cw20:" + a.ID
	}
	return "unknown:" + a.ID
}

type assetRefJSON struct {
	Native *string `json:"native,omitempty"`
	Cw20   *string `json:"cw20,omitempty"`
}

func (a AssetRef) MarshalJSON() ([]byte, error) {
	id := a.ID
	switch a.Kind {
	case AssetNative:
		return json.Marshal(assetRefJSON{Native: &id})
	case AssetCw20:
		return json.Marshal(assetRefJSON{Cw20: &id})
	}
	return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidPool, a.Kind)
}

func (a *AssetRef) UnmarshalJSON(data []byte) error {
	var raw assetRefJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Native != nil && raw.Cw20 == nil:
		*a = NativeAsset(*raw.Native)
	case raw.Cw20 != nil && raw.Native == nil:
		*a = Cw20Asset(*raw.Cw20)
	default:
		return fmt.Errorf("%w: expected exactly one of native/cw20", ErrInvalidPool)
	}
	return nil
}

// ========== 待疏散资产（封闭的和类型） ==========

// EvacuateAsset 只由 EvacuateNative / EvacuateCw20 / EvacuateCw721 实现
type EvacuateAsset interface {
	isEvacuateAsset()
}

// EvacuateNative 除池子 denom 外的全部原生币
type EvacuateNative struct{}

// EvacuateCw20 指定 cw20 合约的全部余额
type EvacuateCw20 struct {
	Contract string `json:"contract"`
}

// EvacuateCw721 指定 cw721 合约的若干 token
type EvacuateCw721 struct {
	Contract string   `json:"contract"`
	TokenIDs []string `json:"token_ids"`
}

func (EvacuateNative) isEvacuateAsset() {}
func (EvacuateCw20) isEvacuateAsset()   {}
func (EvacuateCw721) isEvacuateAsset()  {}

// AssetRequest EvacuateAsset 的 JSON 形式，三者恰好出现一个
type AssetRequest struct {
	Native *EvacuateNative `json:"native,omitempty"`
	Cw20   *EvacuateCw20   `json:"cw20,omitempty"`
	Cw721  *EvacuateCw721  `json:"cw721,omitempty"`
}

// NewAssetRequest 由 EvacuateAsset 构造 JSON 形式
func NewAssetRequest(asset EvacuateAsset) AssetRequest {
	switch a := asset.(type) {
	case EvacuateNative:
		return AssetRequest{Native: &a}
	case EvacuateCw20:
		return AssetRequest{Cw20: &a}
	case EvacuateCw721:
		return AssetRequest{Cw721: &a}
	}
	return AssetRequest{}
}

// Asset 取出具体类型
func (r AssetRequest) Asset() (EvacuateAsset, error) {
	n := 0
	var out EvacuateAsset
	if r.Native != nil {
		n++
		out = *r.Native
	}
	if r.Cw20 != nil {
		n++
		out = *r.Cw20
	}
	if r.Cw721 != nil {
		n++
		out = *r.Cw721
	}
	if n != 1 {
		return nil, fmt.Errorf("%w: evacuate asset must set exactly one of native/cw20/cw721, got %d", ErrUnknownMessage, n)
	}
	return out, nil
}
