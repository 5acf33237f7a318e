package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"relayhub/internal/httpapi/middleware"
)

// NewRouter registers every §6 route on a fresh ServeMux and wraps it
// with the logging and request-id middlewares, mirroring cmd/server.go's
// middleware-chaining order exactly (request-id outermost, logging
// innermost, so the id is already in the context when the logger runs).
func NewRouter(logger *zap.SugaredLogger, relayHlr *RelayHandler, adminHlr *AdminHandler, healthHlr *HealthHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(SubmitRelay, relayHlr.HandleSubmit)
	mux.HandleFunc(GetRelayStatus, relayHlr.HandleStatus)
	mux.HandleFunc(ListByAccount, relayHlr.HandleListByAccount)
	mux.HandleFunc(GetRelayRLP, relayHlr.HandleRLP)

	mux.HandleFunc(AdminLogin, adminHlr.HandleLogin)
	mux.HandleFunc(ListPolicyRules, adminHlr.HandleList)
	mux.HandleFunc(CreatePolicyRule, adminHlr.HandleCreate)
	mux.HandleFunc(UpdatePolicyRule, adminHlr.HandleUpdate)
	mux.HandleFunc(DeletePolicyRule, adminHlr.HandleDelete)
	mux.HandleFunc(ReloadPolicyRules, adminHlr.HandleReload)

	mux.HandleFunc(Livez, healthHlr.HandleLivez)
	mux.HandleFunc(Readyz, healthHlr.HandleReadyz)

	hdlr := middleware.NewLoggingMiddleware(logger).Logging(mux)
	hdlr = middleware.NewRequestIDMiddleware().RequestID(hdlr)
	return hdlr
}
