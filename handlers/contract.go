package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"soulp/vm"
)

// InstantiateRequest POST /instantiate
type InstantiateRequest struct {
	Sender string            `json:"sender"`
	Funds  []vm.Coin         `json:"funds,omitempty"`
	Msg    vm.InstantiateMsg `json:"msg"`
}

// ExecuteRequest POST /execute
type ExecuteRequest struct {
	Sender string        `json:"sender"`
	Funds  []vm.Coin     `json:"funds,omitempty"`
	Msg    vm.ExecuteMsg `json:"msg"`
}

// InvocationResponse 成功调用的返回
type InvocationResponse struct {
	Receipt  *vm.Receipt  `json:"receipt"`
	Response *vm.Response `json:"response"`
}

// HandleInstantiate 创建合约
func (hm *HandlerManager) HandleInstantiate(w http.ResponseWriter, r *http.Request) {
	hm.Stats.RecordAPICall("HandleInstantiate")

	var req InstantiateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, nil)
		return
	}
	if req.Sender == "" {
		writeError(w, fmt.Errorf("%w: sender is required", errBadRequest), nil)
		return
	}

	res, err := hm.executor.Instantiate(req.Sender, req.Funds, &req.Msg)
	writeInvocation(w, res, err)
}

// HandleExecute deposit / evacuate / change_evacuate_address
func (hm *HandlerManager) HandleExecute(w http.ResponseWriter, r *http.Request) {
	hm.Stats.RecordAPICall("HandleExecute")

	var req ExecuteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, nil)
		return
	}
	if req.Sender == "" {
		writeError(w, fmt.Errorf("%w: sender is required", errBadRequest), nil)
		return
	}

	res, err := hm.executor.Execute(req.Sender, req.Funds, &req.Msg)
	writeInvocation(w, res, err)
}

func writeInvocation(w http.ResponseWriter, res *vm.Result, err error) {
	if err != nil {
		var receipt *vm.Receipt
		if res != nil {
			receipt = res.Receipt
		}
		writeError(w, err, receipt)
		return
	}
	writeJSON(w, http.StatusOK, InvocationResponse{Receipt: res.Receipt, Response: res.Response})
}

// HandleQuery 只读查询，原样返回合约产出的 JSON
func (hm *HandlerManager) HandleQuery(w http.ResponseWriter, r *http.Request) {
	hm.Stats.RecordAPICall("HandleQuery")

	var msg vm.QueryMsg
	if err := decodeBody(r, &msg); err != nil {
		writeError(w, err, nil)
		return
	}
	data, err := hm.executor.Query(&msg)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, json.RawMessage(data))
}
