package middleware

import (
	"context"
	"encoding/json"
	"net/http"
)

// Caller scope headers. Every /api/v1 request names its tenant; mutating
// requests also name the acting user.
const (
	TenantHeader = "X-Tenant-ID"
	ActorHeader  = "X-Actor-ID"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// TenantContextKey holds the caller's tenant id.
	TenantContextKey ContextKey = "tenant"
	// ActorContextKey holds the acting user id.
	ActorContextKey ContextKey = "actor"
)

// RequireTenant rejects requests without a tenant, and mutating requests
// without an actor, before they reach a handler.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get(TenantHeader)
		if tenantID == "" {
			writeError(w, http.StatusBadRequest, "validation_failed", TenantHeader+" header is required")
			return
		}

		actorID := r.Header.Get(ActorHeader)
		if actorID == "" && isMutation(r.Method) {
			writeError(w, http.StatusBadRequest, "validation_failed", ActorHeader+" header is required")
			return
		}

		ctx := context.WithValue(r.Context(), TenantContextKey, tenantID)
		ctx = context.WithValue(ctx, ActorContextKey, actorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TenantFromContext returns the tenant set by RequireTenant.
func TenantFromContext(ctx context.Context) string {
	tenantID, _ := ctx.Value(TenantContextKey).(string)
	return tenantID
}

// ActorFromContext returns the actor set by RequireTenant.
func ActorFromContext(ctx context.Context) string {
	actorID, _ := ctx.Value(ActorContextKey).(string)
	return actorID
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: message, Code: code})
}
