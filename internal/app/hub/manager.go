/*
Package hub contains the core logic of the relay: the connection registry,
room code authentication, and message routing/broadcasting.

This file defines the Manager struct, the single serialization point for all
registry state. A Manager is an explicit instance with injected store, limits,
and logger, so tests can run several isolated managers side by side.
*/
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"relayhub/internal/app/store"
	"relayhub/internal/configs"
	"relayhub/internal/pkg/errs"
	"relayhub/internal/pkg/randx"
)

// Conn is the transport handle the core uses to push outbound frames.
// It is opaque to the Manager beyond this single method; implementations
// must not block (queue and fail fast instead).
type Conn interface {
	Send(data []byte) error
}

// connection is a live registry entry: one admitted transport bound to a
// room and a user. A connection exists in the registry exactly between
// admission and disconnect; removal is the single source of truth for
// "user left".
type connection struct {
	id        string
	roomID    string
	userID    string
	joinedAt  time.Time
	transport Conn
}

// Manager tracks live connections, enforces capacity limits, authenticates
// room access codes against the store, and fans out messages.
type Manager struct {
	// config holds the application's read-only settings.
	config *configs.AppConfig

	// codes is the code/history store (durable with in-memory fallback).
	codes store.Store

	// mu serializes every registry mutation. Reads take the shared lock
	// and always observe fully-updated counts.
	mu sync.RWMutex

	// conns indexes all live connections by connection id.
	conns map[string]*connection

	// rooms indexes live connections by room id, then connection id.
	rooms map[string]map[string]*connection

	// users indexes live connections by user id across all rooms.
	users map[string]map[string]*connection

	// structured logger with Manager context.
	logger zerolog.Logger
}

// NewManager constructs a Manager with the given configuration, store, and logger.
func NewManager(cfg *configs.AppConfig, codes store.Store, logger zerolog.Logger) *Manager {
	return &Manager{
		config: cfg,
		codes:  codes,
		conns:  make(map[string]*connection),
		rooms:  make(map[string]map[string]*connection),
		users:  make(map[string]map[string]*connection),
		logger: logger.With().Str("component", "hub").Logger(),
	}
}

// Authenticate decides admission for a connection attempt against roomID.
//
// A room with no stored code is new: a fresh code is generated and persisted,
// and the attempt is admitted without requiring a supplied code. Losing the
// persistence race to a concurrent creator demotes the attempt to a regular
// join against the winner's code. An existing room admits only an exact,
// case-sensitive match of the stored code.
//
// Authentication never consults registry state and must complete before any
// registration happens.
func (m *Manager) Authenticate(ctx context.Context, roomID, suppliedCode string) (isNewRoom bool, code string, customErr *errs.CustomError) {
	storedCode, err := m.codes.GetCode(ctx, roomID)

	if errors.Is(err, store.ErrCodeNotFound) {
		freshCode, genErr := randx.RoomCode(m.config.RoomCodeLength)
		if genErr != nil {
			return false, "", errs.NewError(errs.ErrUnknown, genErr)
		}

		setErr := m.codes.SetCode(ctx, roomID, freshCode)
		if setErr == nil {
			m.logger.Info().Str("room_id", roomID).Msg("New room created with fresh access code.")
			return true, freshCode, nil
		}

		if !errors.Is(setErr, store.ErrCodeExists) {
			return false, "", errs.NewError(errs.ErrUnknown, setErr)
		}

		// Lost the creation race; the room now exists with someone
		// else's code. Fall through to the existing-room comparison.
		storedCode, err = m.codes.GetCode(ctx, roomID)
	}

	if err != nil {
		return false, "", errs.NewError(errs.ErrUnknown, err)
	}

	if suppliedCode == "" || suppliedCode != storedCode {
		m.logger.Info().Str("room_id", roomID).Msg("Connection attempt rejected: invalid or missing room code.")
		return false, "", errs.NewError(errs.ErrInvalidRoomCode)
	}

	return false, storedCode, nil
}

// Connect is the composite admission operation used by the transport:
// validate identifiers, authenticate, register, then run the join sequence.
// On success it returns the new connection id.
//
// Join sequencing: the retained history is replayed privately to the new
// connection (oldest first), a new room's creator receives a private
// system_info message carrying the access code, and user_joined is broadcast
// to the whole room — including the joining connection itself, a deliberate
// carry-over of the observed behavior.
func (m *Manager) Connect(ctx context.Context, roomID, userID, suppliedCode string, transport Conn) (string, *errs.CustomError) {
	if customErr := ValidateRoomID(roomID, m.config.MaxRoomIDLength); customErr != nil {
		return "", customErr
	}
	if customErr := ValidateUserID(userID, m.config.MaxUserIDLength); customErr != nil {
		return "", customErr
	}

	isNewRoom, code, authErr := m.Authenticate(ctx, roomID, suppliedCode)
	if authErr != nil {
		return "", authErr
	}

	conn := &connection{
		id:        randx.ConnectionID(),
		roomID:    roomID,
		userID:    userID,
		joinedAt:  time.Now().UTC(),
		transport: transport,
	}

	if customErr := m.register(conn); customErr != nil {
		return "", customErr
	}

	m.replayHistory(ctx, conn)

	if isNewRoom {
		m.sendRoomCode(conn, code)
	}

	m.broadcastSystem(ctx, roomID, TypeUserJoined, fmt.Sprintf("%s has joined the room.", userID))

	return conn.id, nil
}

// register inserts the connection under the registry lock, enforcing the
// per-room limit first and the cross-room per-user limit second. The check
// and the insert share one critical section, so counts never overshoot
// under concurrent admission attempts.
func (m *Manager) register(conn *connection) *errs.CustomError {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.rooms[conn.roomID]) >= m.config.MaxConnectionsPerRoom {
		m.logger.Info().
			Str("room_id", conn.roomID).
			Int("max_connections", m.config.MaxConnectionsPerRoom).
			Msg("Connection rejected: room is full.")
		return errs.NewError(errs.ErrRoomFull)
	}

	if len(m.users[conn.userID]) >= m.config.MaxConnectionsPerUser {
		m.logger.Info().
			Str("user_id", conn.userID).
			Int("max_connections", m.config.MaxConnectionsPerUser).
			Msg("Connection rejected: user connection limit reached.")
		return errs.NewError(errs.ErrTooManyConnections)
	}

	m.conns[conn.id] = conn

	if m.rooms[conn.roomID] == nil {
		m.rooms[conn.roomID] = make(map[string]*connection)
	}
	m.rooms[conn.roomID][conn.id] = conn

	if m.users[conn.userID] == nil {
		m.users[conn.userID] = make(map[string]*connection)
	}
	m.users[conn.userID][conn.id] = conn

	m.logger.Info().
		Str("connection_id", conn.id).
		Str("room_id", conn.roomID).
		Str("user_id", conn.userID).
		Int("room_connections", len(m.rooms[conn.roomID])).
		Msg("Connection registered.")

	return nil
}

// Disconnect removes the connection from the registry and broadcasts
// user_left to the remaining room members. It is idempotent: repeated calls
// for the same id are no-ops, so the leave notification is emitted exactly
// once regardless of how the transport terminated.
func (m *Manager) Disconnect(ctx context.Context, connID string) {
	m.mu.Lock()

	conn, ok := m.conns[connID]
	if !ok {
		m.mu.Unlock()
		return
	}

	delete(m.conns, connID)

	delete(m.rooms[conn.roomID], connID)
	if len(m.rooms[conn.roomID]) == 0 {
		delete(m.rooms, conn.roomID)
		m.logger.Info().Str("room_id", conn.roomID).Msg("Room has no live connections left.")
	}

	delete(m.users[conn.userID], connID)
	if len(m.users[conn.userID]) == 0 {
		delete(m.users, conn.userID)
	}

	m.logger.Info().
		Str("connection_id", connID).
		Str("room_id", conn.roomID).
		Str("user_id", conn.userID).
		Msg("Connection unregistered.")

	m.mu.Unlock()

	m.broadcastSystem(ctx, conn.roomID, TypeUserLeft, fmt.Sprintf("%s has left the room", conn.userID))
}

// HandleInbound validates and routes one raw frame from an admitted
// connection. Any returned error concerns only the sender and must never
// reach other participants.
func (m *Manager) HandleInbound(ctx context.Context, connID string, raw []byte) *errs.CustomError {
	m.mu.RLock()
	conn, ok := m.conns[connID]
	m.mu.RUnlock()

	if !ok {
		return errs.NewError(errs.ErrInvalidParams)
	}

	var envelope inboundEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		// Bare text frames are legal and treated as chat messages.
		envelope = inboundEnvelope{Type: TypeChatMessage, Content: string(raw)}
	}

	if customErr := ValidateMessageContent(envelope.Content, m.config.MaxMessageLength); customErr != nil {
		return customErr
	}

	switch envelope.Type {
	case TypeChatMessage:
		msg := NewMessage(TypeChatMessage, conn.userID, envelope.Content)
		m.broadcast(ctx, conn.roomID, msg)
		return nil

	case TypePrivateMessage:
		if envelope.Recipient == "" {
			return errs.NewError(errs.ErrInvalidParams)
		}

		msg := NewMessage(TypePrivateMessage, conn.userID, envelope.Content)
		msg.Recipient = envelope.Recipient
		return m.sendPrivate(conn.roomID, envelope.Recipient, msg)

	default:
		return errs.NewError(errs.ErrUnknownMessageType)
	}
}

// NotifyFileShared emits the broadcaster-synthesized file_shared
// notification for a completed upload. Called by the upload collaborator
// after the blob is stored.
func (m *Manager) NotifyFileShared(ctx context.Context, roomID string, payload FileSharedPayload) {
	msg := NewMessage(TypeFileShared, SystemSender, payload)
	m.broadcast(ctx, roomID, msg)
}

// broadcast appends the message to history (when its type is retained) and
// delivers it to every live connection in the room, including the sender.
// Sends are issued in order while the registry snapshot is held, so each
// connection observes messages in the order the broadcaster emitted them.
func (m *Manager) broadcast(ctx context.Context, roomID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		m.logger.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to marshal message for broadcast.")
		return
	}

	if storedInHistory(msg.Type) {
		if err := m.codes.AppendHistory(ctx, roomID, data); err != nil {
			// History is best effort; delivery proceeds.
			m.logger.Error().Err(err).Str("room_id", roomID).Msg("Failed to append message to history.")
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, conn := range m.rooms[roomID] {
		if err := conn.transport.Send(data); err != nil {
			m.logger.Warn().
				Err(err).
				Str("connection_id", conn.id).
				Str("room_id", roomID).
				Msg("Dropping broadcast for slow or closed connection.")
		}
	}
}

// broadcastSystem builds and broadcasts a system notification with a plain
// text content, the shape join/leave announcements use.
func (m *Manager) broadcastSystem(ctx context.Context, roomID string, msgType MessageType, text string) {
	m.broadcast(ctx, roomID, NewMessage(msgType, SystemSender, text))
}

// sendPrivate delivers the message to every connection the recipient has in
// the room. Private messages never touch history and never reach anyone but
// the recipient; an absent recipient is reported to the sender only.
func (m *Manager) sendPrivate(roomID, recipientID string, msg Message) *errs.CustomError {
	data, err := json.Marshal(msg)
	if err != nil {
		m.logger.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to marshal private message.")
		return errs.NewError(errs.ErrUnknown, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	delivered := false
	for _, conn := range m.rooms[roomID] {
		if conn.userID != recipientID {
			continue
		}

		delivered = true
		if err := conn.transport.Send(data); err != nil {
			m.logger.Warn().
				Err(err).
				Str("connection_id", conn.id).
				Msg("Dropping private message for slow or closed connection.")
		}
	}

	if !delivered {
		return errs.NewError(errs.ErrRecipientNotFound)
	}

	return nil
}

// replayHistory sends the room's retained history, oldest first, privately
// to a newly admitted connection. Stored entries are already marshaled and
// are pushed as-is.
func (m *Manager) replayHistory(ctx context.Context, conn *connection) {
	history, err := m.codes.History(ctx, conn.roomID)
	if err != nil {
		m.logger.Error().Err(err).Str("room_id", conn.roomID).Msg("Failed to load history for replay.")
		return
	}

	for _, entry := range history {
		if err := conn.transport.Send(entry); err != nil {
			m.logger.Warn().
				Err(err).
				Str("connection_id", conn.id).
				Msg("History replay aborted for slow or closed connection.")
			return
		}
	}
}

// sendRoomCode delivers the access code of a freshly created room privately
// to its creating connection. This message is never broadcast and never
// stored in history.
func (m *Manager) sendRoomCode(conn *connection, code string) {
	msg := NewMessage(TypeSystemInfo, SystemSender, RoomCodePayload{RoomCode: code})

	data, err := json.Marshal(msg)
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to marshal room code message.")
		return
	}

	if err := conn.transport.Send(data); err != nil {
		m.logger.Warn().
			Err(err).
			Str("connection_id", conn.id).
			Msg("Failed to deliver room code to creating connection.")
	}
}

// CountByRoom returns the number of live connections in the room.
func (m *Manager) CountByRoom(roomID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.rooms[roomID])
}

// CountByUser returns the user's live connection count across all rooms.
func (m *Manager) CountByUser(userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.users[userID])
}

// TotalConnections returns the number of live connections in the registry.
func (m *Manager) TotalConnections() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.conns)
}

// Shutdown clears the registry and asks transports that support it to close.
// Used during graceful process shutdown after the HTTP listener stops
// accepting new connections.
func (m *Manager) Shutdown() {
	m.mu.Lock()

	transports := make([]Conn, 0, len(m.conns))
	for _, conn := range m.conns {
		transports = append(transports, conn.transport)
	}

	m.conns = make(map[string]*connection)
	m.rooms = make(map[string]map[string]*connection)
	m.users = make(map[string]map[string]*connection)

	m.mu.Unlock()

	for _, transport := range transports {
		if closer, ok := transport.(interface{ Kick(reason string) }); ok {
			closer.Kick("Server is shutting down.")
		}
	}

	m.logger.Info().Int("connections_closed", len(transports)).Msg("Manager shutdown complete.")
}
