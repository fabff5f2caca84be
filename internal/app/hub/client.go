/*
Package hub contains the core logic of the relay: the connection registry,
room code authentication, and message routing/broadcasting.

This file defines the Client struct wrapping one WebSocket connection. It
owns the read/write pumps, heartbeats, the per-connection message rate
limiter, and the outbound queue behind the Conn interface.
*/
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"relayhub/internal/pkg/errs"
	"relayhub/internal/pkg/logx"
)

const (
	// timeout for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time the server waits for a Pong from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// slack added to the configured content bound when limiting raw frame
	// size, covering the JSON envelope around the content.
	frameOverhead = 512

	// outbound queue capacity per connection.
	sendQueueSize = 256
)

// WebSocket close codes (4000-4999 application range) used when an
// admission attempt is rejected after the connection was upgraded.
const (
	WsCloseInvalidIdentifier  = 4001
	WsCloseInvalidRoomCode    = 4002
	WsCloseRoomFull           = 4003
	WsCloseTooManyConnections = 4004

	// WsCloseServerShutdown signals a server-initiated disconnect.
	WsCloseServerShutdown = 4005
)

// CloseCodeFor maps a rejection to the close code the transport must use.
func CloseCodeFor(customErr *errs.CustomError) int {
	switch customErr.Code {
	case errs.ErrInvalidRoomID, errs.ErrInvalidUserID:
		return WsCloseInvalidIdentifier
	case errs.ErrInvalidRoomCode:
		return WsCloseInvalidRoomCode
	case errs.ErrRoomFull:
		return WsCloseRoomFull
	case errs.ErrTooManyConnections:
		return WsCloseTooManyConnections
	default:
		return websocket.CloseInternalServerErr
	}
}

// Client wraps an active WebSocket connection. It implements Conn for the
// Manager and owns the connection's lifecycle on the transport side.
type Client struct {
	// manager and connID are bound after admission succeeds.
	manager *Manager
	connID  string

	// underlying WebSocket connection.
	conn *websocket.Conn

	roomID string
	userID string

	// send is the buffered outbound queue drained by WritePump.
	send chan []byte

	// closeSend makes the send-channel close race-free between the
	// rejection path, Kick, and normal teardown.
	closeSend sync.Once

	// limiter bounds inbound message rate per connection.
	limiter *rate.Limiter

	// maxFrameBytes is the read limit applied to inbound frames.
	maxFrameBytes int64

	logger zerolog.Logger
}

// NewClient wraps a freshly upgraded WebSocket connection. The client is not
// registered yet; admission happens through Manager.Connect with the client
// as transport handle, followed by Bind.
func NewClient(wsConn *websocket.Conn, roomID, userID string, messagesPerMinute, maxMessageLength int) *Client {
	clientLogger := logx.Logger().With().
		Str("room_id", roomID).
		Str("user_id", userID).
		Logger()

	perSecond := rate.Limit(float64(messagesPerMinute) / 60.0)

	return &Client{
		conn:          wsConn,
		roomID:        roomID,
		userID:        userID,
		send:          make(chan []byte, sendQueueSize),
		limiter:       rate.NewLimiter(perSecond, messagesPerMinute),
		maxFrameBytes: int64(maxMessageLength + frameOverhead),
		logger:        clientLogger,
	}
}

// Bind attaches the admitted client to its manager and connection id.
// Must be called before ReadPump.
func (c *Client) Bind(manager *Manager, connID string) {
	c.manager = manager
	c.connID = connID
	c.logger = c.logger.With().Str("connection_id", connID).Logger()
}

// Send queues an outbound frame. It never blocks: a full queue fails fast
// and the frame is dropped for this connection only.
func (c *Client) Send(data []byte) error {
	select {
	case c.send <- data:
		return nil
	default:
		return fmt.Errorf("client send queue full")
	}
}

// Reject closes a connection whose admission failed, using the close code
// specific to the rejection reason, and releases the write pump.
func (c *Client) Reject(customErr *errs.CustomError) {
	closeCode := CloseCodeFor(customErr)

	c.logger.Info().
		Int("close_code", closeCode).
		Str("reason", customErr.Message).
		Msg("Closing connection after rejected admission.")

	c.writeClose(closeCode, customErr.Message)
	c.shutdownSend()

	if err := c.conn.Close(); err != nil {
		c.logger.Warn().Err(err).Msg("Connection close error after rejection.")
	}
}

// Kick closes the connection from the server side, e.g. during shutdown.
func (c *Client) Kick(reason string) {
	c.writeClose(WsCloseServerShutdown, reason)
	c.shutdownSend()
}

// ReadPump reads inbound frames until the connection dies, forwarding each
// to the Manager. The deferred cleanup guarantees Disconnect runs exactly
// once even when the transport closes abruptly, so the leave notification is
// neither skipped nor duplicated.
func (c *Client) ReadPump(ctx context.Context) {
	defer c.cleanupOnDisconnect(ctx)

	c.conn.SetReadLimit(c.maxFrameBytes)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			break
		}

		if !c.limiter.Allow() {
			c.SendError(errs.NewError(errs.ErrRateLimitExceeded))
			continue
		}

		if customErr := c.manager.HandleInbound(ctx, c.connID, messageBytes); customErr != nil {
			c.SendError(customErr)
		}
	}
}

// cleanupOnDisconnect unregisters the client and closes the socket when
// ReadPump terminates. A fresh context is used so the leave notification
// still reaches the store when the request context is already canceled.
func (c *Client) cleanupOnDisconnect(ctx context.Context) {
	c.logger.Info().Msg("Client connection cleanup starting.")

	cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.manager.Disconnect(cleanupCtx, c.connID)
	c.shutdownSend()

	if err := c.conn.Close(); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		c.logger.Warn().Err(err).Msg("Client connection close error")
	}
}

// WritePump drains the send queue to the WebSocket connection and keeps the
// heartbeat alive. One WritePump per connection is the only goroutine that
// writes to the socket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			c.logger.Warn().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage writes one queued frame to the socket.
// Returns false when the WritePump loop should terminate.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			c.logger.Warn().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends the periodic heartbeat Ping.
// Returns false when the WritePump loop should terminate.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// SendError queues a TypeError message describing a processing failure.
// Errors go to this connection only, never to other participants.
func (c *Client) SendError(customErr *errs.CustomError) {
	errorMsg := NewMessage(TypeError, SystemSender, ErrorPayload{
		Code:    customErr.Code,
		Message: customErr.Message,
	})

	data, err := json.Marshal(errorMsg)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to marshal error message")
		return
	}

	if err := c.Send(data); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to queue error message")
	}
}

// writeClose sends a close frame with the given application code and reason.
func (c *Client) writeClose(code int, reason string) {
	closeMessage := websocket.FormatCloseMessage(code, reason)

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to set write deadline for close frame.")
	}

	if err := c.conn.WriteMessage(websocket.CloseMessage, closeMessage); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		c.logger.Warn().Err(err).Int("close_code", code).Msg("Failed to send close frame.")
	}
}

// shutdownSend closes the outbound queue exactly once, releasing WritePump.
func (c *Client) shutdownSend() {
	c.closeSend.Do(func() {
		close(c.send)
	})
}
