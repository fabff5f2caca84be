/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally
within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrFormParseFailed indicates failure to parse multipart or URL-encoded form data.
	ErrFormParseFailed = 1005

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Room, Connection, and Message Errors
const (
	// ErrInvalidRoomID indicates that the room identifier is empty, too long, or has illegal characters.
	ErrInvalidRoomID = 2101

	// ErrInvalidUserID indicates that the user identifier is empty, too long, or has illegal characters.
	ErrInvalidUserID = 2102

	// ErrInvalidRoomCode indicates that the supplied room access code is missing or does not match.
	ErrInvalidRoomCode = 2103

	// ErrRoomFull indicates that the room has reached its per-room connection limit.
	ErrRoomFull = 2104

	// ErrTooManyConnections indicates that the user has reached the cross-room connection limit.
	ErrTooManyConnections = 2105

	// ErrMessageContentTooLong indicates that the message content exceeded the maximum length limit.
	ErrMessageContentTooLong = 2201

	// ErrUnknownMessageType indicates an inbound message with an unrecognized type tag.
	ErrUnknownMessageType = 2202

	// ErrRecipientNotFound indicates that the private message target has no live connection in the room.
	ErrRecipientNotFound = 2203
)

// 4xxx: File Sharing Errors
const (
	// ErrFileSizeTooLarge indicates that the declared or actual file size exceeds the limit.
	ErrFileSizeTooLarge = 4001

	// ErrFileTypeNotAllowed indicates a MIME type outside the configured allow-list.
	ErrFileTypeNotAllowed = 4002

	// ErrFileNameInvalid indicates a filename containing path separators or traversal components.
	ErrFileNameInvalid = 4003

	// ErrFileNotFound indicates that no stored file matches the requested id.
	ErrFileNotFound = 4004

	// ErrFileStorageFailed indicates a blob storage operation failed.
	ErrFileStorageFailed = 4005
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
