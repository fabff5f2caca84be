/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to
standardize HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the CustomError template corresponding to every application
// error code. The key is the error code, the value carries the user message
// and, where it differs from 200, the HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrFormParseFailed:       {Code: ErrFormParseFailed, Message: "Failed to process uploaded data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Room, Connection, and Message Errors
	ErrInvalidRoomID:         {Code: ErrInvalidRoomID, Message: "Invalid room id.", Status: http.StatusBadRequest},
	ErrInvalidUserID:         {Code: ErrInvalidUserID, Message: "Invalid user id.", Status: http.StatusBadRequest},
	ErrInvalidRoomCode:       {Code: ErrInvalidRoomCode, Message: "Invalid or missing room code.", Status: http.StatusForbidden},
	ErrRoomFull:              {Code: ErrRoomFull, Message: "This room is full.", Status: http.StatusConflict},
	ErrTooManyConnections:    {Code: ErrTooManyConnections, Message: "Too many simultaneous connections for this user.", Status: http.StatusConflict},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long."},
	ErrUnknownMessageType:    {Code: ErrUnknownMessageType, Message: "Unknown message type."},
	ErrRecipientNotFound:     {Code: ErrRecipientNotFound, Message: "Recipient is not connected to this room."},

	// 4xxx: File Sharing Errors
	ErrFileSizeTooLarge:   {Code: ErrFileSizeTooLarge, Message: "File is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrFileTypeNotAllowed: {Code: ErrFileTypeNotAllowed, Message: "File type is not allowed.", Status: http.StatusUnsupportedMediaType},
	ErrFileNameInvalid:    {Code: ErrFileNameInvalid, Message: "Invalid file name.", Status: http.StatusBadRequest},
	ErrFileNotFound:       {Code: ErrFileNotFound, Message: "File not found.", Status: http.StatusNotFound},
	ErrFileStorageFailed:  {Code: ErrFileStorageFailed, Message: "File transfer failed. Please try again.", Status: http.StatusBadGateway},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
