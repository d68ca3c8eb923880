package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"roomchat/internal/app/message"
	"roomchat/internal/app/room"
	"roomchat/internal/pkg/auth/jwt"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/req"
	"roomchat/internal/pkg/resp"
)

// HandlePublicHistory returns the latest messages of a public room in
// chronological order. History is visible to current members only, never to
// banned users, and only when the room exposes it; the room's history cap
// bounds the page size.
func HandlePublicHistory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		roomID := chi.URLParam(r, "roomId")

		publicRoom, err := deps.Rooms.FetchPublic(r.Context(), roomID)
		if err != nil {
			resp.RespondError(w, r, errs.FromError(err))
			return
		}

		switch publicRoom.MembershipOf(identity.UserID) {
		case room.MembershipBanned:
			resp.RespondError(w, r, errs.NewError(errs.ErrBannedFromRoom))
			return
		case room.MembershipNone:
			resp.RespondError(w, r, errs.NewError(errs.ErrNotRoomMember))
			return
		}

		if !publicRoom.AllowMessageHistory {
			resp.RespondError(w, r, errs.NewError(errs.ErrHistoryDisabled))
			return
		}

		limit := req.QueryInt(r, "limit", 50)
		if publicRoom.MaxHistoryMessages > 0 && limit > publicRoom.MaxHistoryMessages {
			limit = publicRoom.MaxHistoryMessages
		}

		messages, err := deps.Messages.ListByRoom(r.Context(), roomID, message.RoomTypePublic, limit)
		if err != nil {
			logx.Error(err, "public_history: fetch failed", "room_id", roomID)
			resp.RespondError(w, r, errs.FromError(err))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"messages": messages,
			"count":    len(messages),
		})
	}
}

// HandlePrivateHistory returns the latest messages of a one-to-one room in
// chronological order. Only the two fixed members may read it.
func HandlePrivateHistory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		roomID := chi.URLParam(r, "roomId")

		privateRoom, err := deps.Rooms.FetchPrivate(r.Context(), roomID)
		if err != nil {
			resp.RespondError(w, r, errs.FromError(err))
			return
		}

		if !privateRoom.HasMember(identity.UserID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrNotRoomMember))
			return
		}

		limit := req.QueryInt(r, "limit", 50)

		messages, err := deps.Messages.ListByRoom(r.Context(), roomID, message.RoomTypePrivate, limit)
		if err != nil {
			logx.Error(err, "private_history: fetch failed", "room_id", roomID)
			resp.RespondError(w, r, errs.FromError(err))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"messages": messages,
			"count":    len(messages),
		})
	}
}
