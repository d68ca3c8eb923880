/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Room and Message Business Logic Errors
	ErrRoomNotFound:          {Code: ErrRoomNotFound, Message: "Chat room not found.", Status: http.StatusNotFound},
	ErrRoomNameExists:        {Code: ErrRoomNameExists, Message: "Room name is already taken.", Status: http.StatusBadRequest},
	ErrRoomIsFull:            {Code: ErrRoomIsFull, Message: "This chat room is full.", Status: http.StatusForbidden},
	ErrBannedFromRoom:        {Code: ErrBannedFromRoom, Message: "You are banned from this room.", Status: http.StatusForbidden},
	ErrNotRoomMember:         {Code: ErrNotRoomMember, Message: "You are not a member of this room.", Status: http.StatusForbidden},
	ErrSelfPrivateRoom:       {Code: ErrSelfPrivateRoom, Message: "Cannot open a private room with yourself.", Status: http.StatusBadRequest},
	ErrHistoryDisabled:       {Code: ErrHistoryDisabled, Message: "Message history is not available for this room.", Status: http.StatusForbidden},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long.", Status: http.StatusBadRequest},
	ErrEmptyMessage:          {Code: ErrEmptyMessage, Message: "Message has no content.", Status: http.StatusBadRequest},
	ErrFileSharingDisabled:   {Code: ErrFileSharingDisabled, Message: "File sharing is disabled in this room.", Status: http.StatusForbidden},
	ErrFileSizeTooLarge:      {Code: ErrFileSizeTooLarge, Message: "File is too large.", Status: http.StatusBadRequest},
	ErrFileTypeInvalid:       {Code: ErrFileTypeInvalid, Message: "File type is not allowed.", Status: http.StatusBadRequest},
	ErrFileNotFound:          {Code: ErrFileNotFound, Message: "File not found.", Status: http.StatusNotFound},

	// 3xxx: User, Session, and Security Errors
	ErrUnauthorized:        {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrInvalidCredentials:  {Code: ErrInvalidCredentials, Message: "Incorrect username or password.", Status: http.StatusUnauthorized},
	ErrInvalidRefreshToken: {Code: ErrInvalidRefreshToken, Message: "Session expired. Please sign in again.", Status: http.StatusUnauthorized},
	ErrInvalidUsername:     {Code: ErrInvalidUsername, Message: "Invalid username.", Status: http.StatusBadRequest},
	ErrInvalidEmail:        {Code: ErrInvalidEmail, Message: "Invalid email address.", Status: http.StatusBadRequest},
	ErrInvalidPassword:     {Code: ErrInvalidPassword, Message: "Invalid password.", Status: http.StatusBadRequest},
	ErrUserAlreadyExists:   {Code: ErrUserAlreadyExists, Message: "Username or email is already registered.", Status: http.StatusBadRequest},
	ErrUserNotFound:        {Code: ErrUserNotFound, Message: "Account not found.", Status: http.StatusNotFound},

	// 4xxx: Persistence Errors
	ErrStoreFailure: {Code: ErrStoreFailure, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
