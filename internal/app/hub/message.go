/*
Package hub contains the core logic of the relay: the connection registry,
room code authentication, and message routing/broadcasting.

This file defines the wire message model shared by broadcasts, private
messages, and system notifications.
*/
package hub

import (
	"time"

	"relayhub/internal/pkg/randx"
)

// MessageType tags the variant of a relay message.
type MessageType string

const (
	// TypeChatMessage is a room-scoped broadcast originated by a client.
	TypeChatMessage MessageType = "chat_message"

	// TypePrivateMessage is delivered only to a single recipient's connections.
	TypePrivateMessage MessageType = "private_message"

	// TypeUserJoined announces a new member to the room.
	TypeUserJoined MessageType = "user_joined"

	// TypeUserLeft announces a departed member to the remaining room.
	TypeUserLeft MessageType = "user_left"

	// TypeFileShared announces an uploaded file to the room.
	TypeFileShared MessageType = "file_shared"

	// TypeSystemInfo carries server information to a single connection,
	// such as the access code of a freshly created room.
	TypeSystemInfo MessageType = "system_info"

	// TypeError carries a processing error back to the originating sender only.
	TypeError MessageType = "error"
)

// SystemSender is the sender id used on broadcaster-synthesized messages.
const SystemSender = "System"

// Message is the relay's wire message. Content is either a plain string
// (chat, join/leave texts) or a typed payload (file_shared, system_info).
type Message struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Sender    string      `json:"sender"`
	Type      MessageType `json:"type"`
	Content   any         `json:"content"`
	Recipient string      `json:"recipient,omitempty"`
}

// NewMessage builds a Message with a fresh id and UTC timestamp.
func NewMessage(msgType MessageType, sender string, content any) Message {
	return Message{
		ID:        randx.MessageID(),
		Timestamp: time.Now().UTC(),
		Sender:    sender,
		Type:      msgType,
		Content:   content,
	}
}

// storedInHistory reports whether a message variant belongs in room history.
// Private messages and per-connection system_info/error frames never do.
func storedInHistory(msgType MessageType) bool {
	switch msgType {
	case TypeChatMessage, TypeUserJoined, TypeUserLeft, TypeFileShared:
		return true
	default:
		return false
	}
}

// FileSharedPayload is the content of a file_shared notification.
type FileSharedPayload struct {
	FileID      string `json:"file_id"`
	FileName    string `json:"file_name"`
	FileSize    int64  `json:"file_size"`
	Uploader    string `json:"uploader"`
	DownloadURL string `json:"download_url"`
}

// RoomCodePayload is the content of the system_info message delivered
// privately to the connection that created a room.
type RoomCodePayload struct {
	RoomCode string `json:"room_code"`
}

// ErrorPayload is the content of a TypeError message.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// inboundEnvelope is the JSON shape clients send on the wire.
type inboundEnvelope struct {
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	Recipient string      `json:"recipient,omitempty"`
}
