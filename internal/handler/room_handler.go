/*
Package handler provides HTTP handler functions for room creation, joining,
and listing.
*/
package handler

import (
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"roomchat/internal/app/room"
	"roomchat/internal/pkg/auth/jwt"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/req"
	"roomchat/internal/pkg/resp"
)

type CreatePublicRoomInput struct {
	Name                string `json:"name"`
	Description         string `json:"description"`
	MaxMembers          int    `json:"max_members"`
	WelcomeMessage      string `json:"welcome_message"`
	Rules               string `json:"rules"`
	AllowFileSharing    bool   `json:"allow_file_sharing"`
	AllowMessageHistory bool   `json:"allow_message_history"`
	MaxHistoryMessages  int    `json:"max_history_messages"`
}

// HandleCreatePublicRoom creates a named public room with the caller as its
// owner and first member.
func HandleCreatePublicRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input CreatePublicRoomInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		nameLen := utf8.RuneCountInString(input.Name)
		if nameLen < 1 || nameLen > 60 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if input.MaxMembers < 0 || input.MaxHistoryMessages < 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		created, err := deps.Rooms.CreatePublic(r.Context(), room.CreatePublicParams{
			OwnerID:             identity.UserID,
			Name:                input.Name,
			Description:         input.Description,
			MaxMembers:          input.MaxMembers,
			WelcomeMessage:      input.WelcomeMessage,
			Rules:               input.Rules,
			AllowFileSharing:    input.AllowFileSharing,
			AllowMessageHistory: input.AllowMessageHistory,
			MaxHistoryMessages:  input.MaxHistoryMessages,
		})
		if err != nil {
			logx.Warn("create_public_room: creation failed", "name", input.Name, "error", err)
			resp.RespondError(w, r, errs.FromError(err))
			return
		}

		logx.Info("Public room created", "room_id", created.ID, "owner_id", identity.UserID)

		resp.RespondSuccess(w, r, map[string]any{
			"room": created,
		})
	}
}

// HandleJoinPublicRoom adds the caller to a public room's persisted membership.
// Joining an already joined room succeeds with the unchanged room.
func HandleJoinPublicRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		roomID := chi.URLParam(r, "id")
		if roomID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		joined, err := deps.Rooms.JoinPublic(r.Context(), roomID, identity.UserID)
		if err != nil {
			logx.Warn("join_public_room: join rejected", "room_id", roomID, "user_id", identity.UserID, "error", err)
			resp.RespondError(w, r, errs.FromError(err))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"room": joined,
		})
	}
}

// HandleListPublicRooms returns one page of public rooms plus the total count.
func HandleListPublicRooms(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		page := req.QueryInt(r, "page", 1)
		perPage := req.QueryInt(r, "per_page", 20)
		if perPage > 100 {
			perPage = 100
		}

		rooms, total, err := deps.Rooms.ListPublic(r.Context(), page, perPage)
		if err != nil {
			logx.Error(err, "list_public_rooms: fetch failed")
			resp.RespondError(w, r, errs.FromError(err))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"rooms":    rooms,
			"total":    total,
			"page":     page,
			"per_page": perPage,
		})
	}
}

// HandleCreatePrivateRoom returns the one-to-one room between the caller and
// the given peer, creating it on first interaction. The call is idempotent:
// an existing pair room is returned as-is.
func HandleCreatePrivateRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		peerID := chi.URLParam(r, "personId")
		if peerID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if _, err := deps.Users.FetchByID(r.Context(), peerID); err != nil {
			resp.RespondError(w, r, errs.FromError(err))
			return
		}

		created, err := deps.Rooms.CreatePrivate(r.Context(), identity.UserID, peerID)
		if err != nil {
			logx.Warn("create_private_room: creation failed", "user_id", identity.UserID, "peer_id", peerID, "error", err)
			resp.RespondError(w, r, errs.FromError(err))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"room": created,
		})
	}
}

// HandleListPrivateRooms returns every private room the caller participates in.
func HandleListPrivateRooms(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		rooms, err := deps.Rooms.ListPrivateFor(r.Context(), identity.UserID)
		if err != nil {
			logx.Error(err, "list_private_rooms: fetch failed", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.FromError(err))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"rooms": rooms,
			"count": len(rooms),
		})
	}
}
