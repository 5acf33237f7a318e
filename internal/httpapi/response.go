package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"relayhub/internal/allocator"
	"relayhub/internal/chain"
	"relayhub/internal/policy"
	"relayhub/internal/relay"
	"relayhub/internal/signer"
	"relayhub/internal/store"
	"relayhub/internal/verify"
)

const oopsErr = "Oops! Something went wrong. Please try again later."

// Response is the JSON envelope every handler responds with, matching
// the teacher's handler.Response shape.
type Response struct {
	OK     bool        `json:"ok"`
	Code   string      `json:"code,omitempty"`
	Reason string      `json:"reason,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, logs *zap.SugaredLogger, resp interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, oopsErr, http.StatusInternalServerError)
		logs.Errorw("failed to encode response", "error", err)
	}
}

func writeOK(w http.ResponseWriter, logs *zap.SugaredLogger, data interface{}) {
	writeJSON(w, logs, Response{OK: true, Data: data}, http.StatusOK)
}

func writeError(w http.ResponseWriter, logs *zap.SugaredLogger, code string, status int, reason string) {
	writeJSON(w, logs, Response{OK: false, Code: code, Reason: reason}, status)
}

// relayErrorCode maps a Relay Pipeline error to the §6 error-code enum
// and an HTTP status, in the order the pipeline's own steps can fail.
func relayErrorCode(err error) (code string, status int) {
	var rejection *relay.RejectionError
	if errors.As(err, &rejection) {
		switch rejection.Kind {
		case policy.KindAllowlist:
			return "not-allowlisted", http.StatusForbidden
		case policy.KindQuota:
			return "quota-exceeded", http.StatusTooManyRequests
		case policy.KindGasCap:
			return "gas-cap-exceeded", http.StatusForbidden
		case policy.KindTokenCap:
			return "token-cap-exceeded", http.StatusForbidden
		}
		return "internal", http.StatusInternalServerError
	}

	switch {
	case errors.Is(err, verify.ErrUnsupportedNetwork):
		return "unsupported-network", http.StatusBadRequest
	case errors.Is(err, verify.ErrInvalidRequest):
		return "invalid-request", http.StatusBadRequest
	case errors.Is(err, chain.ErrWouldRevert):
		return "would-revert", http.StatusBadRequest
	case errors.Is(err, relay.ErrFeeCapTooLow):
		return "fee-cap-too-low", http.StatusBadRequest
	case errors.Is(err, relay.ErrGasLimitTooLow):
		return "gas-limit-too-low", http.StatusBadRequest
	case errors.Is(err, allocator.ErrSaturated):
		return "relayer-saturated", http.StatusServiceUnavailable
	case errors.Is(err, allocator.ErrStalled):
		return "internal", http.StatusServiceUnavailable
	case errors.Is(err, signer.ErrUnavailable):
		return "internal", http.StatusServiceUnavailable
	case errors.Is(err, relay.ErrPersistFailed), errors.Is(err, relay.ErrBroadcastFailed):
		return "internal", http.StatusInternalServerError
	case errors.Is(err, store.ErrNotFound):
		return "not-found", http.StatusNotFound
	default:
		return "internal", http.StatusInternalServerError
	}
}
