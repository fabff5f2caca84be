/*
Package handler provides the HTTP handlers and routing setup for the relay.

This file contains the WebSocket endpoint: rate limiting, connection upgrade,
the composite authenticate+register admission call, and the client lifecycle.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"relayhub/internal/app/hub"
	"relayhub/internal/pkg/errs"
	"relayhub/internal/pkg/limiter"
	"relayhub/internal/pkg/logx"
	"relayhub/internal/pkg/resp"
)

// HandleWebSocket creates the HandlerFunc processing WebSocket connection requests.
//
// Rate limiting and parameter presence are checked before the upgrade so they
// can answer with plain HTTP. Admission itself (id validation, room code,
// capacity) runs after the upgrade, because its rejections must reach the
// client as WebSocket close frames with reason-specific codes.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		roomID := chi.URLParam(r, "room")
		userID := chi.URLParam(r, "user")

		if roomID == "" || userID == "" {
			logx.Warn("WebSocket request rejected: Missing room or user path parameter")
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		// Optional for new rooms, required for existing ones.
		suppliedCode := r.URL.Query().Get("code")

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := hub.NewClient(
			conn,
			roomID,
			userID,
			deps.Config.RateLimitMessagesPerMinute,
			deps.Config.MaxMessageLength,
		)

		connID, customErr := deps.Manager.Connect(r.Context(), roomID, userID, suppliedCode, client)
		if customErr != nil {
			client.Reject(customErr)
			return
		}

		client.Bind(deps.Manager, connID)

		go client.WritePump()

		logx.Info("WebSocket connection established and client registered",
			"connection_id", connID, "room_id", roomID, "user_id", userID)

		client.ReadPump(r.Context())
	}
}
