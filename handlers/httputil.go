package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"soulp/bank"
	"soulp/logs"
	"soulp/vm"
)

// ErrorResponse 失败时的 JSON 结构
type ErrorResponse struct {
	Error   string      `json:"error"`
	Receipt *vm.Receipt `json:"receipt,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logs.Warn("[HTTP] encode response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error, receipt *vm.Receipt) {
	writeJSON(w, statusFor(err), ErrorResponse{Error: err.Error(), Receipt: receipt})
}

// statusFor 错误类型到 HTTP 状态码
func statusFor(err error) int {
	var (
		validation *vm.ValidationError
		funds      *vm.InvalidFundsError
		syntax     *json.SyntaxError
		typeErr    *json.UnmarshalTypeError
		tooLarge   *http.MaxBytesError
	)
	switch {
	case errors.Is(err, vm.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, vm.ErrNotInstantiated), errors.Is(err, vm.ErrReceiptNotFound):
		return http.StatusNotFound
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &funds), errors.As(err, &validation),
		errors.As(err, &syntax), errors.As(err, &typeErr),
		errors.Is(err, vm.ErrInvalidRatio), errors.Is(err, vm.ErrInvalidPool),
		errors.Is(err, vm.ErrUnknownMessage), errors.Is(err, vm.ErrNilMessage),
		errors.Is(err, vm.ErrAlreadyInstantiated),
		errors.Is(err, vm.ErrInvalidBalance), errors.Is(err, vm.ErrBalanceTooLong),
		errors.Is(err, bank.ErrInsufficientFunds), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("bad request")

// decodeBody 解析 JSON 请求体，拒绝未知字段
func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
