package vm

import (
	"encoding/json"
	"errors"

	"soulp/config"
	"soulp/keys"

	"github.com/shopspring/decimal"
)

// RatioVersion 铸造比例的配置版本
type RatioVersion string

const (
	// RatioFixed 没有比例字段，恒为 1:1
	RatioFixed RatioVersion = config.RatioVersionFixed
	// RatioConfigurable 实例化时指定比例，之后不可变
	RatioConfigurable RatioVersion = config.RatioVersionConfigurable
)

// CustodyState 合约唯一的持久化记录
type CustodyState struct {
	Pool            AssetRef        `json:"pool"`
	EvacuateAddress string          `json:"evacuate_address"`
	MintRatio       decimal.Decimal `json:"mint_ratio"`
	RatioVersion    RatioVersion    `json:"ratio_version"`
}

var one = decimal.NewFromInt(1)

// EffectiveRatio 实际使用的比例；旧记录没有 ratio_version 时按 1:1
func (s *CustodyState) EffectiveRatio() decimal.Decimal {
	if s.RatioVersion == RatioConfigurable {
		return s.MintRatio
	}
	return one
}

// ContractInfo 合约名称与版本
type ContractInfo struct {
	Contract string `json:"contract"`
	Version  string `json:"version"`
}

// StateStore 在 StateView 上读写 CustodyState
type StateStore struct {
	sv StateView
}

func NewStateStore(sv StateView) *StateStore {
	return &StateStore{sv: sv}
}

// Load 读取托管状态；不存在时返回包裹 ErrNotInstantiated 的 StorageError
func (s *StateStore) Load() (*CustodyState, error) {
	key := keys.KeyCustodyState()
	data, exists, err := s.sv.Get(key)
	if err != nil {
		return nil, &StorageError{Op: "load", Key: key, Err: err}
	}
	if !exists {
		return nil, &StorageError{Op: "load", Key: key, Err: ErrNotInstantiated}
	}
	var st CustodyState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, &StorageError{Op: "load", Key: key, Err: err}
	}
	return &st, nil
}

// Exists 状态是否已写入
func (s *StateStore) Exists() (bool, error) {
	_, err := s.Load()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotInstantiated) {
		return false, nil
	}
	return false, err
}

// Save 整条写回
func (s *StateStore) Save(st *CustodyState) error {
	key := keys.KeyCustodyState()
	data, err := json.Marshal(st)
	if err != nil {
		return &StorageError{Op: "save", Key: key, Err: err}
	}
	s.sv.Set(key, data)
	return nil
}

// LoadInfo 读取合约版本记录
func (s *StateStore) LoadInfo() (*ContractInfo, error) {
	key := keys.KeyContractInfo()
	data, exists, err := s.sv.Get(key)
	if err != nil {
		return nil, &StorageError{Op: "load", Key: key, Err: err}
	}
	if !exists {
		return nil, &StorageError{Op: "load", Key: key, Err: ErrNotInstantiated}
	}
	var info ContractInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, &StorageError{Op: "load", Key: key, Err: err}
	}
	return &info, nil
}

// SaveInfo 写入合约版本记录
func (s *StateStore) SaveInfo(info *ContractInfo) error {
	key := keys.KeyContractInfo()
	data, err := json.Marshal(info)
	if err != nil {
		return &StorageError{Op: "save", Key: key, Err: err}
	}
	s.sv.Set(key, data)
	return nil
}
