package http

import (
	"errors"
	"net/http"

	"github.com/cartside/cartside/internal/auth/store"
	"github.com/cartside/cartside/pkg/httpx"
	"github.com/cartside/cartside/pkg/slogx"
)

// MeHandler serves GET /v1/auth/me for the authenticated user.
type MeHandler struct {
	Store store.Store
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := IdentityFromContext(ctx)
	if !ok {
		errMissingToken.Write(w)
		return
	}

	user, err := h.Store.Users().GetUserByID(ctx, id.Subject)
	if err != nil {
		// A valid token for a deleted account reads as revoked.
		if errors.Is(err, store.ErrNotFound) {
			errRevokedToken.Write(w)
			return
		}
		slogx.FromContext(ctx).Error("failed to load user", "user_id", id.Subject, "error", err)
		errServer.Write(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newUserResponse(user))
}
