package handlers

import (
	"fmt"
	"net/http"

	"soulp/vm"

	"github.com/go-chi/chi/v5"
)

// BalancesResponse GET /balances/{addr}
type BalancesResponse struct {
	Address  string    `json:"address"`
	Balances []vm.Coin `json:"balances"`
}

// FundRequest POST /fund，本地环境注资
type FundRequest struct {
	Address string       `json:"address"`
	Coins   []vm.Coin    `json:"coins,omitempty"`
	Cw20    *Cw20Funding `json:"cw20,omitempty"`
}

type Cw20Funding struct {
	Contract string `json:"contract"`
	Amount   string `json:"amount"`
}

// HandleGetBalances 地址持有的全部原生币
func (hm *HandlerManager) HandleGetBalances(w http.ResponseWriter, r *http.Request) {
	hm.Stats.RecordAPICall("HandleGetBalances")

	addr := chi.URLParam(r, "addr")
	coins, err := hm.executor.Balances(addr)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, BalancesResponse{Address: addr, Balances: coins})
}

// HandleFund 给地址记原生币或 cw20 余额
func (hm *HandlerManager) HandleFund(w http.ResponseWriter, r *http.Request) {
	hm.Stats.RecordAPICall("HandleFund")

	var req FundRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, nil)
		return
	}
	if req.Address == "" {
		writeError(w, fmt.Errorf("%w: address is required", errBadRequest), nil)
		return
	}
	if len(req.Coins) == 0 && req.Cw20 == nil {
		writeError(w, fmt.Errorf("%w: nothing to fund", errBadRequest), nil)
		return
	}

	if len(req.Coins) > 0 {
		if err := hm.executor.Fund(req.Address, req.Coins); err != nil {
			writeError(w, err, nil)
			return
		}
	}
	if req.Cw20 != nil {
		amount, err := vm.ParseBalance(req.Cw20.Amount)
		if err != nil {
			writeError(w, err, nil)
			return
		}
		if err := hm.executor.FundCw20(req.Cw20.Contract, req.Address, amount); err != nil {
			writeError(w, err, nil)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetReceipt 调用回执
func (hm *HandlerManager) HandleGetReceipt(w http.ResponseWriter, r *http.Request) {
	hm.Stats.RecordAPICall("HandleGetReceipt")

	receipt, err := hm.executor.GetReceipt(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}
