package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"roomchat/internal/app/chat"
	"roomchat/internal/app/room"
	"roomchat/internal/app/storage"
	"roomchat/internal/pkg/auth/jwt"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/req"
	"roomchat/internal/pkg/resp"
)

// authorizeRoomMedia checks whether the user may exchange media in the room.
// Public rooms require current membership and the file-sharing toggle; private
// rooms require pair membership.
func authorizeRoomMedia(r *http.Request, deps *AppDeps, roomID, userID string) *errs.CustomError {
	publicRoom, err := deps.Rooms.FetchPublic(r.Context(), roomID)
	if err == nil {
		if !publicRoom.AllowFileSharing {
			return errs.NewError(errs.ErrFileSharingDisabled)
		}

		switch publicRoom.MembershipOf(userID) {
		case room.MembershipBanned:
			return errs.NewError(errs.ErrBannedFromRoom)
		case room.MembershipNone:
			return errs.NewError(errs.ErrNotRoomMember)
		}

		return nil
	}

	var custom *errs.CustomError
	if !errors.As(err, &custom) || custom.Code != errs.ErrRoomNotFound {
		return errs.FromError(err)
	}

	privateRoom, err := deps.Rooms.FetchPrivate(r.Context(), roomID)
	if err != nil {
		return errs.FromError(err)
	}

	if !privateRoom.HasMember(userID) {
		return errs.NewError(errs.ErrNotRoomMember)
	}

	return nil
}

// presignVerifiedDownload confirms the object actually exists before handing
// out a download URL, so a media key whose upload never completed yields a
// not-found error instead of a signed URL to nothing.
func presignVerifiedDownload(ctx context.Context, svc storage.StorageService, key string) (string, *errs.CustomError) {
	if _, err := svc.GetObjectMetadata(ctx, key); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return "", errs.NewError(errs.ErrFileNotFound)
		}
		return "", errs.NewError(errs.ErrStoreFailure)
	}

	url, err := svc.PresignDownload(ctx, key, chat.PresignedURLDuration)
	if err != nil {
		return "", errs.NewError(errs.ErrStoreFailure)
	}

	return url, nil
}

// PresignUploadInput defines the JSON input structure for generating an upload URL.
type PresignUploadInput struct {
	RoomID   string `json:"room_id"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
}

// HandlePresignUploadURL creates an HTTP HandlerFunc to generate a time-limited,
// pre-signed URL for media upload, scoped to a specific room.
func HandlePresignUploadURL(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input PresignUploadInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.RoomID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if customErr := authorizeRoomMedia(r, deps, input.RoomID, identity.UserID); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := chat.ValidateMediaSize(input.FileSize); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := chat.ValidateMediaType(input.FileName, input.MimeType); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		fileExt := strings.ToLower(filepath.Ext(input.FileName))
		fileID := uuid.New().String()
		fileKey := fmt.Sprintf("%s/%s%s", input.RoomID, fileID, fileExt)

		url, err := deps.StorageService.PresignUpload(
			r.Context(),
			fileKey,
			input.MimeType,
			input.FileSize,
			chat.PresignedURLDuration,
		)

		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailure))
			return
		}

		data := map[string]any{
			"presigned_url": url,
			"media_key":     fileKey,
			"file_name":     input.FileName,
		}
		resp.RespondSuccess(w, r, data)
	}
}

// HandlePresignDownloadURL creates an HTTP HandlerFunc to generate a time-limited,
// pre-signed URL for media download. The room is derived from the media key
// prefix, so authorization follows the room the file was uploaded into.
func HandlePresignDownloadURL(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		mediaKey := r.URL.Query().Get("k")
		if mediaKey == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		roomID, _, found := strings.Cut(mediaKey, "/")
		if !found || roomID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if customErr := authorizeRoomMedia(r, deps, roomID, identity.UserID); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		url, customErr := presignVerifiedDownload(r.Context(), deps.StorageService, mediaKey)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		http.Redirect(w, r, url, http.StatusFound)
	}
}
