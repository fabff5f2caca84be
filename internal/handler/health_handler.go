package handler

import (
	"net/http"

	"relayhub/internal/pkg/resp"
)

// HandleHealth reports liveness plus the operational state a readiness probe
// cares about: live connection count, durable store reachability, and whether
// the store layer is currently serving from its in-memory fallback.
func HandleHealth(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeHealthy := deps.Store.HealthCheck(r.Context())

		data := map[string]any{
			"status":           "ok",
			"totalConnections": deps.Manager.TotalConnections(),
			"storeHealthy":     storeHealthy,
			"storeDegraded":    deps.Store.Degraded(),
		}
		resp.RespondSuccess(w, r, data)
	}
}
