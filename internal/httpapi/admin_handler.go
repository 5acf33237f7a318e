package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"relayhub/internal/policy"
	"relayhub/internal/store"
)

// AdminHandler serves operator login and the policy-rule CRUD/reload
// surface (§4.4, §6).
type AdminHandler struct {
	logs     *zap.SugaredLogger
	auth     *Authenticator
	policies PolicyStore
	reloader PolicyReloader
}

func NewAdminHandler(logger *zap.SugaredLogger, auth *Authenticator, policies PolicyStore, reloader PolicyReloader) *AdminHandler {
	return &AdminHandler{logs: logger, auth: auth, policies: policies, reloader: reloader}
}

func (h *AdminHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)

	var payload loginRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, h.logs, "invalid-request", http.StatusBadRequest, err.Error())
		h.logs.Errorw("failed to decode login request", "error", err, "handler", AdminLogin, "request_id", reqID)
		return
	}

	token, err := h.auth.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		status := http.StatusInternalServerError
		code := "internal"
		if errors.Is(err, ErrOperatorNotFound) || errors.Is(err, ErrIncorrectPassword) {
			status = http.StatusUnauthorized
			code = "unauthorized"
		}
		writeError(w, h.logs, code, status, err.Error())
		h.logs.Errorw("login failed", "error", err, "handler", AdminLogin, "request_id", reqID)
		return
	}

	writeOK(w, h.logs, loginResponse{Token: token})
}

func (h *AdminHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)
	kind := r.URL.Query().Get("kind")

	rules, err := h.policies.ListPolicyRules(r.Context(), kind)
	if err != nil {
		writeError(w, h.logs, "internal", http.StatusInternalServerError, err.Error())
		h.logs.Errorw("failed to list policy rules", "error", err, "handler", ListPolicyRules, "request_id", reqID)
		return
	}

	out := make([]policyRuleResponse, 0, len(rules))
	for _, rule := range rules {
		out = append(out, renderPolicyRule(rule))
	}
	writeOK(w, h.logs, out)
}

func (h *AdminHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)

	var payload policyRuleRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, h.logs, "invalid-request", http.StatusBadRequest, err.Error())
		h.logs.Errorw("failed to decode policy rule", "error", err, "handler", CreatePolicyRule, "request_id", reqID)
		return
	}

	enabled := true
	if payload.Enabled != nil {
		enabled = *payload.Enabled
	}
	id := newRuleID()
	if _, err := policy.DecodeRule(id, policy.Kind(payload.Kind), payload.Target, enabled, payload.Value); err != nil {
		writeError(w, h.logs, "invalid-request", http.StatusBadRequest, err.Error())
		h.logs.Errorw("policy rule failed schema validation", "error", err, "handler", CreatePolicyRule, "request_id", reqID)
		return
	}

	rule := store.PolicyRule{
		ID:      id,
		Kind:    payload.Kind,
		Target:  payload.Target,
		Value:   payload.Value,
		Enabled: enabled,
	}
	if err := h.policies.CreatePolicyRule(r.Context(), rule); err != nil {
		writeError(w, h.logs, "internal", http.StatusInternalServerError, err.Error())
		h.logs.Errorw("failed to create policy rule", "error", err, "handler", CreatePolicyRule, "request_id", reqID)
		return
	}

	writeOK(w, h.logs, renderPolicyRule(rule))
}

func (h *AdminHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)
	id := r.PathValue("id")
	if id == "" {
		writeError(w, h.logs, "invalid-request", http.StatusBadRequest, "id path parameter is required")
		return
	}

	var payload policyRuleRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, h.logs, "invalid-request", http.StatusBadRequest, err.Error())
		h.logs.Errorw("failed to decode policy rule", "error", err, "handler", UpdatePolicyRule, "request_id", reqID)
		return
	}

	enabled := true
	if payload.Enabled != nil {
		enabled = *payload.Enabled
	}
	if _, err := policy.DecodeRule(id, policy.Kind(payload.Kind), payload.Target, enabled, payload.Value); err != nil {
		writeError(w, h.logs, "invalid-request", http.StatusBadRequest, err.Error())
		h.logs.Errorw("policy rule failed schema validation", "error", err, "handler", UpdatePolicyRule, "request_id", reqID)
		return
	}

	fields := map[string]interface{}{
		"kind":   payload.Kind,
		"target": payload.Target,
		"value":  payload.Value,
	}
	if payload.Enabled != nil {
		fields["enabled"] = *payload.Enabled
	}

	if err := h.policies.UpdatePolicyRule(r.Context(), id, fields); err != nil {
		code, status := relayErrorCode(err)
		writeError(w, h.logs, code, status, err.Error())
		h.logs.Errorw("failed to update policy rule", "error", err, "handler", UpdatePolicyRule, "request_id", reqID)
		return
	}

	writeOK(w, h.logs, map[string]string{"id": id})
}

func (h *AdminHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)
	id := r.PathValue("id")
	if id == "" {
		writeError(w, h.logs, "invalid-request", http.StatusBadRequest, "id path parameter is required")
		return
	}

	if err := h.policies.DeletePolicyRule(r.Context(), id); err != nil {
		code, status := relayErrorCode(err)
		writeError(w, h.logs, code, status, err.Error())
		h.logs.Errorw("failed to delete policy rule", "error", err, "handler", DeletePolicyRule, "request_id", reqID)
		return
	}

	writeOK(w, h.logs, map[string]string{"id": id})
}

// HandleReload signals the Policy Engine's background reload loop
// out-of-band, so a rule write takes effect without waiting for the
// next scheduled tick (§4.4).
func (h *AdminHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	h.reloader.Signal()
	writeOK(w, h.logs, map[string]string{"status": "reload signaled"})
}
