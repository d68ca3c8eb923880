package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	// AccessTokenExpiration defines the duration for short-lived access tokens.
	AccessTokenExpiration = 30 * time.Minute

	// RefreshTokenExpiration defines the duration for long-lived refresh tokens.
	RefreshTokenExpiration = 7 * 24 * time.Hour

	// TokenIssuer identifies the issuer of the token.
	TokenIssuer = "RoomChat-Server"
)

// GenerateAccessToken creates and signs a short-lived access token for the given user.
func GenerateAccessToken(userID, username, secretKey string) (string, error) {
	return generateToken(userID, username, TokenTypeAccess, secretKey, AccessTokenExpiration)
}

// GenerateRefreshToken creates and signs a long-lived refresh token for the given user.
func GenerateRefreshToken(userID, username, secretKey string) (string, error) {
	return generateToken(userID, username, TokenTypeRefresh, secretKey, RefreshTokenExpiration)
}

func generateToken(userID, username, tokenType, secretKey string, duration time.Duration) (string, error) {
	now := time.Now()

	payload := &Payload{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(duration).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    TokenIssuer,
		},
		UserID:    userID,
		Username:  username,
		TokenType: tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)

	return token.SignedString([]byte(secretKey))
}

// ParseToken parses and validates the JWT Token string using the provided secretKey.
func ParseToken(tokenString string, secretKey string) (*Payload, error) {
	claims := &Payload{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	return claims, nil
}

// ParseAccessToken parses the token string and additionally verifies it is an access token.
func ParseAccessToken(tokenString string, secretKey string) (*Payload, error) {
	payload, err := ParseToken(tokenString, secretKey)
	if err != nil {
		return nil, err
	}

	if payload.TokenType != TokenTypeAccess {
		return nil, errors.New("token is not an access token")
	}

	return payload, nil
}

// ParseRefreshToken parses the token string and additionally verifies it is a refresh token.
func ParseRefreshToken(tokenString string, secretKey string) (*Payload, error) {
	payload, err := ParseToken(tokenString, secretKey)
	if err != nil {
		return nil, err
	}

	if payload.TokenType != TokenTypeRefresh {
		return nil, errors.New("token is not a refresh token")
	}

	return payload, nil
}
