package httpapi

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/rlp"
	"go.uber.org/zap"

	"relayhub/internal/httpapi/middleware"
	"relayhub/internal/store"
)

// RelayHandler serves the relay submit/status/listing/rlp endpoints (§6),
// generalized from the shape of the teacher's FethHandler.
type RelayHandler struct {
	logs         *zap.SugaredLogger
	relayService RelayService
	txStore      TransactionStore
}

func NewRelayHandler(logger *zap.SugaredLogger, relayService RelayService, txStore TransactionStore) *RelayHandler {
	return &RelayHandler{logs: logger, relayService: relayService, txStore: txStore}
}

func requestID(r *http.Request) string {
	if v, ok := r.Context().Value(middleware.RequestIDKey).(string); ok {
		return v
	}
	return ""
}

func (h *RelayHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)

	var payload relayRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, h.logs, "invalid-request", http.StatusBadRequest, err.Error())
		h.logs.Errorw("failed to decode relay request", "error", err, "handler", SubmitRelay, "request_id", reqID)
		return
	}

	result, err := h.relayService.Relay(r.Context(), payload.toRaw())
	if err != nil {
		code, status := relayErrorCode(err)
		writeError(w, h.logs, code, status, err.Error())
		h.logs.Errorw("relay request rejected", "error", err, "code", code, "handler", SubmitRelay, "request_id", reqID)
		return
	}

	h.logs.Infow("relay submitted", "tx_hash", result.TxHash, "handler", SubmitRelay, "request_id", reqID)
	writeOK(w, h.logs, relayResponse{
		TxHash:   result.TxHash,
		GasPrice: result.GasPrice.String(),
		GasLimit: result.GasLimit,
	})
}

func (h *RelayHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)
	txHash := r.PathValue("txHash")
	if txHash == "" {
		writeError(w, h.logs, "invalid-request", http.StatusBadRequest, "txHash path parameter is required")
		return
	}

	tx, err := h.txStore.GetTransactionByHash(r.Context(), txHash)
	if err != nil {
		code, status := relayErrorCode(err)
		writeError(w, h.logs, code, status, err.Error())
		h.logs.Errorw("failed to get transaction", "error", err, "handler", GetRelayStatus, "request_id", reqID)
		return
	}

	writeOK(w, h.logs, renderTransaction(tx))
}

func (h *RelayHandler) HandleListByAccount(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)
	address := r.PathValue("address")
	if address == "" {
		writeError(w, h.logs, "invalid-request", http.StatusBadRequest, "address path parameter is required")
		return
	}

	limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
	offset := parseIntDefault(r.URL.Query().Get("offset"), 0)

	txs, err := h.txStore.ListByAccount(r.Context(), address, limit, offset)
	if err != nil {
		code, status := relayErrorCode(err)
		writeError(w, h.logs, code, status, err.Error())
		h.logs.Errorw("failed to list transactions", "error", err, "handler", ListByAccount, "request_id", reqID)
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, renderTransaction(tx))
	}
	writeOK(w, h.logs, out)
}

// HandleRLP decodes an RLP-encoded list of transaction hashes and returns
// the status of each known one, the batch-lookup convenience the teacher's
// ParseRLP/HandleGetTransactionsRLP offered for the eth/{rlpHash} route.
func (h *RelayHandler) HandleRLP(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)
	rlpHex := r.PathValue("rlpHex")
	if rlpHex == "" {
		writeError(w, h.logs, "invalid-request", http.StatusBadRequest, "rlpHex path parameter is required")
		return
	}

	txHashes, err := decodeRLPHashes(rlpHex)
	if err != nil {
		writeError(w, h.logs, "invalid-request", http.StatusBadRequest, err.Error())
		h.logs.Errorw("failed to parse rlp parameter", "error", err, "handler", GetRelayRLP, "request_id", reqID)
		return
	}

	out := make([]transactionResponse, 0, len(txHashes))
	for _, txHash := range txHashes {
		tx, err := h.txStore.GetTransactionByHash(r.Context(), txHash)
		if err != nil {
			if err == store.ErrNotFound {
				continue
			}
			writeError(w, h.logs, "internal", http.StatusInternalServerError, err.Error())
			h.logs.Errorw("failed to get transaction from rlp batch", "error", err, "handler", GetRelayRLP, "request_id", reqID)
			return
		}
		out = append(out, renderTransaction(tx))
	}
	writeOK(w, h.logs, out)
}

// decodeRLPHashes mirrors the teacher's core.Fethcher.ParseRLP exactly:
// a hex-encoded RLP list of raw hash bytes.
func decodeRLPHashes(rlpHex string) ([]string, error) {
	data, err := hex.DecodeString(rlpHex)
	if err != nil {
		return nil, fmt.Errorf("decode hex string: %w", err)
	}

	var txHashBytes [][]byte
	if err := rlp.DecodeBytes(data, &txHashBytes); err != nil {
		return nil, fmt.Errorf("decode rlp bytes: %w", err)
	}

	txHashes := make([]string, len(txHashBytes))
	for i, b := range txHashBytes {
		txHashes[i] = "0x" + hex.EncodeToString(b)
	}
	return txHashes, nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return def
	}
	return v
}
