/*
Package handler provides HTTP handler functions for account registration and
token issuance.
*/
package handler

import (
	"net/http"
	"regexp"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"roomchat/internal/pkg/auth/jwt"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/req"
	"roomchat/internal/pkg/resp"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-z0-9_]{4,20}$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister processes the request to create a new user account.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !usernameRegex.MatchString(input.Username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}

		if !emailRegex.MatchString(input.Email) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}

		passwordLen := utf8.RuneCountInString(input.Password)
		if passwordLen < 6 || passwordLen > 50 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		created, err := deps.Users.Create(r.Context(), input.Username, input.Email, string(hashedPassword))
		if err != nil {
			logx.Warn("register: account creation failed", "username", input.Username, "error", err)
			resp.RespondError(w, r, errs.FromError(err))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": created,
		})
	}
}

type TokenInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleToken verifies user credentials and issues an access/refresh token pair.
func HandleToken(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input TokenInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		account, err := deps.Users.FetchByUsername(r.Context(), input.Username)
		if err != nil {
			logx.Warn("token: user fetch failed", "username", input.Username, "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if !account.IsActive {
			logx.Warn("token: inactive account", "username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("token: password mismatch", "username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := deps.Users.TouchLastLogin(r.Context(), account.ID); err != nil {
			logx.Error(err, "token: failed to update last_login", "user_id", account.ID)
		}

		accessToken, err := jwt.GenerateAccessToken(account.ID, account.Username, deps.Config.JWTSecret)
		if err != nil {
			logx.Error(err, "token: access token generation failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		refreshToken, err := jwt.GenerateRefreshToken(account.ID, account.Username, deps.Config.JWTSecret)
		if err != nil {
			logx.Error(err, "token: refresh token generation failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
			"token_type":    "bearer",
			"user":          account,
		})
	}
}

type RefreshTokenInput struct {
	RefreshToken string `json:"refresh_token"`
}

// HandleRefreshToken exchanges a valid refresh token for a new access token.
func HandleRefreshToken(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RefreshTokenInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		payload, err := jwt.ParseRefreshToken(input.RefreshToken, deps.Config.JWTSecret)
		if err != nil {
			logx.Warn("refresh: invalid refresh token", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidRefreshToken))
			return
		}

		// The account must still exist and be active at refresh time.
		account, err := deps.Users.FetchByID(r.Context(), payload.UserID)
		if err != nil || !account.IsActive {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidRefreshToken))
			return
		}

		accessToken, err := jwt.GenerateAccessToken(account.ID, account.Username, deps.Config.JWTSecret)
		if err != nil {
			logx.Error(err, "refresh: access token generation failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"access_token": accessToken,
			"token_type":   "bearer",
		})
	}
}

// HandleMe returns the authenticated user's own account.
func HandleMe(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		account, err := deps.Users.FetchByID(r.Context(), identity.UserID)
		if err != nil {
			logx.Warn("me: user not found", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": account,
		})
	}
}
