/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Room and Message Business Logic Errors
const (
	// ErrRoomNotFound indicates that the referenced room does not exist.
	ErrRoomNotFound = 2101

	// ErrRoomNameExists indicates that the attempted room name for creation is already taken.
	ErrRoomNameExists = 2102

	// ErrRoomIsFull indicates that the room being joined has reached its member cap.
	ErrRoomIsFull = 2103

	// ErrBannedFromRoom indicates that the user is on the room's ban list.
	ErrBannedFromRoom = 2104

	// ErrNotRoomMember indicates that the user is not a member of the room.
	ErrNotRoomMember = 2105

	// ErrSelfPrivateRoom indicates an attempt to open a private room with oneself.
	ErrSelfPrivateRoom = 2106

	// ErrHistoryDisabled indicates that the room does not expose its message history.
	ErrHistoryDisabled = 2107

	// ErrMessageContentTooLong indicates that the message content exceeded the maximum length limit.
	ErrMessageContentTooLong = 2201

	// ErrEmptyMessage indicates a message with neither text content nor media.
	ErrEmptyMessage = 2202

	// ErrFileSharingDisabled indicates that the room does not allow file sharing.
	ErrFileSharingDisabled = 2203

	// ErrFileSizeTooLarge indicates that the media file exceeds the size limit.
	ErrFileSizeTooLarge = 2204

	// ErrFileTypeInvalid indicates a media file name or MIME type outside the allowed set.
	ErrFileTypeInvalid = 2205

	// ErrFileNotFound indicates that the referenced media object does not exist in storage.
	ErrFileNotFound = 2206
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrUnauthorized indicates a missing, invalid, or expired token.
	ErrUnauthorized = 3001

	// ErrInvalidCredentials indicates a failed username/password exchange.
	ErrInvalidCredentials = 3002

	// ErrInvalidRefreshToken indicates that the presented token is not a valid refresh token.
	ErrInvalidRefreshToken = 3003

	// ErrInvalidUsername indicates a username that fails format validation.
	ErrInvalidUsername = 3004

	// ErrInvalidEmail indicates an email address that fails format validation.
	ErrInvalidEmail = 3005

	// ErrInvalidPassword indicates a password that fails length validation.
	ErrInvalidPassword = 3006

	// ErrUserAlreadyExists indicates that the username or email is already registered.
	ErrUserAlreadyExists = 3007

	// ErrUserNotFound indicates that the referenced user account does not exist.
	ErrUserNotFound = 3008
)

// 4xxx: Persistence Errors
const (
	// ErrStoreFailure indicates a persistence or connectivity failure in the store layer.
	ErrStoreFailure = 4001
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
