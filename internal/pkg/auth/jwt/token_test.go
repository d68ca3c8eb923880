package jwt

import "testing"

const testSecret = "test-secret-key"

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken("user-123", "alice_01", testSecret)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateAccessToken() returned empty token")
	}

	payload, err := ParseAccessToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseAccessToken() error = %v", err)
	}

	if payload.UserID != "user-123" {
		t.Errorf("payload.UserID = %q, want %q", payload.UserID, "user-123")
	}
	if payload.Username != "alice_01" {
		t.Errorf("payload.Username = %q, want %q", payload.Username, "alice_01")
	}
	if payload.TokenType != TokenTypeAccess {
		t.Errorf("payload.TokenType = %q, want %q", payload.TokenType, TokenTypeAccess)
	}
	if payload.Issuer != TokenIssuer {
		t.Errorf("payload.Issuer = %q, want %q", payload.Issuer, TokenIssuer)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken("user-123", "alice_01", testSecret)
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	payload, err := ParseRefreshToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseRefreshToken() error = %v", err)
	}

	if payload.TokenType != TokenTypeRefresh {
		t.Errorf("payload.TokenType = %q, want %q", payload.TokenType, TokenTypeRefresh)
	}
}

func TestTokenTypeMismatchIsRejected(t *testing.T) {
	refreshToken, err := GenerateRefreshToken("user-123", "alice_01", testSecret)
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	if _, err := ParseAccessToken(refreshToken, testSecret); err == nil {
		t.Error("ParseAccessToken() accepted a refresh token")
	}

	accessToken, err := GenerateAccessToken("user-123", "alice_01", testSecret)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if _, err := ParseRefreshToken(accessToken, testSecret); err == nil {
		t.Error("ParseRefreshToken() accepted an access token")
	}
}

func TestWrongSecretIsRejected(t *testing.T) {
	token, err := GenerateAccessToken("user-123", "alice_01", testSecret)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if _, err := ParseAccessToken(token, "another-secret"); err == nil {
		t.Error("ParseAccessToken() accepted a token signed with a different secret")
	}
}

func TestGarbageTokenIsRejected(t *testing.T) {
	if _, err := ParseToken("not.a.token", testSecret); err == nil {
		t.Error("ParseToken() accepted garbage input")
	}
}
