package handler

import (
	"net/http"

	"roomchat/internal/pkg/auth/jwt"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/resp"
)

// HandleListUsers returns every registered account with a total count.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		users, err := deps.Users.List(r.Context())
		if err != nil {
			logx.Error(err, "list_users: fetch failed")
			resp.RespondError(w, r, errs.FromError(err))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"users": users,
			"count": len(users),
		})
	}
}
