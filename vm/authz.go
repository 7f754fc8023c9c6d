package vm

import "soulp/logs"

// ChangeEvacuateAddress 只有当前疏散地址能修改；失败时不写任何状态
// 新地址原样保存，格式在 evacuate 读出时才校验
func ChangeEvacuateAddress(ctx *ExecContext, newAddress string) (*Response, error) {
	store := NewStateStore(ctx.Deps.Storage)
	st, err := store.Load()
	if err != nil {
		return nil, err
	}
	if ctx.Info.Sender != st.EvacuateAddress {
		return nil, ErrUnauthorized
	}

	old := st.EvacuateAddress
	st.EvacuateAddress = newAddress
	if err := store.Save(st); err != nil {
		return nil, err
	}
	logs.Info("[Authz] evacuate address changed %s -> %s", old, newAddress)
	return NewResponse(), nil
}

// ChangeEvacuateAddressHandler 处理 change_evacuate_address
type ChangeEvacuateAddressHandler struct{}

func (h *ChangeEvacuateAddressHandler) Kind() string { return KindChangeEvacuateAddress }

func (h *ChangeEvacuateAddressHandler) Execute(ctx *ExecContext, msg *ExecuteMsg) (*Response, error) {
	if msg == nil || msg.ChangeEvacuateAddress == nil {
		return nil, ErrNilMessage
	}
	return ChangeEvacuateAddress(ctx, msg.ChangeEvacuateAddress.NewAddress)
}
