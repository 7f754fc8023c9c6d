package handlers

import (
	"net/http"
)

// StatusResponse GET /status
type StatusResponse struct {
	ContractAddress string   `json:"contract_address"`
	Operations      []string `json:"operations"`
}

func (hm *HandlerManager) HandleStatus(w http.ResponseWriter, r *http.Request) {
	hm.Stats.RecordAPICall("HandleStatus")
	writeJSON(w, http.StatusOK, StatusResponse{
		ContractAddress: hm.executor.ContractAddress(),
		Operations:      hm.executor.Contract.Registry().List(),
	})
}

// HandleStats 各接口调用次数
func (hm *HandlerManager) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, hm.Stats.GetAPICallStats())
}
