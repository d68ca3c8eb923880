package jwt

import "github.com/golang-jwt/jwt"

// Token types carried in the TokenType claim. Access tokens authorize API
// calls and realtime connections; refresh tokens may only be exchanged for a
// new access token.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Payload defines the structure of the JSON Web Token (JWT) claims for RoomChat.
// It includes standard claims required by the JWT specification and custom claims
// necessary for identifying users within the chat system.
type Payload struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer). These are crucial for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// UserID is the unique identifier of the registered user this token was issued to.
	UserID string `json:"user_id"`

	// Username is the account name at issuance time, carried for logging and display.
	Username string `json:"username"`

	// TokenType distinguishes access tokens from refresh tokens.
	TokenType string `json:"token_type"`
}
