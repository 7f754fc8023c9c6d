package vm

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized        = errors.New("Unauthorized")
	ErrNotInstantiated     = errors.New("contract not instantiated")
	ErrAlreadyInstantiated = errors.New("contract already instantiated")
	ErrInvalidRatio        = errors.New("invalid mint ratio")
	ErrInvalidPool         = errors.New("invalid pool asset")
	ErrUnknownMessage      = errors.New("unknown message")
)

// InvalidFunds 的固定原因
const (
	ReasonExpectedOneAsset = "Expected exactly one asset"
	ReasonInvalidAsset     = "Invalid asset"
	ReasonEvacuatePool     = "Cannot evacuate the pool token"
)

// InvalidFundsError 调用附带的资金不符合要求
type InvalidFundsError struct {
	Reason string
}

func (e *InvalidFundsError) Error() string {
	return "Invalid funds: " + e.Reason
}

// InvalidFunds 构造 InvalidFundsError
func InvalidFunds(reason string) error {
	return &InvalidFundsError{Reason: reason}
}

// IsInvalidFunds 返回原因
func IsInvalidFunds(err error) (string, bool) {
	var ife *InvalidFundsError
	if errors.As(err, &ife) {
		return ife.Reason, true
	}
	return "", false
}

// ValidationError 地址/合约引用格式非法，原样包裹校验器错误
type ValidationError struct {
	Input string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid address %q: %v", e.Input, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StorageError 状态读写失败
type StorageError struct {
	Op  string // "load" / "save" / "commit"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// validateAddr 调用校验器，失败时包成 ValidationError
func validateAddr(api AddressValidator, addr string) (string, error) {
	if api == nil {
		return addr, nil
	}
	out, err := api.Validate(addr)
	if err != nil {
		return "", &ValidationError{Input: addr, Err: err}
	}
	return out, nil
}
