package http

import (
	"net/http"
	"strconv"

	"github.com/cartside/cartside/internal/auth/store"
	"github.com/cartside/cartside/pkg/httpx"
	"github.com/cartside/cartside/pkg/slogx"
)

const defaultUserListLimit = 100

// UsersHandler serves GET /v1/admin/users behind the elevated middleware.
type UsersHandler struct {
	Store store.Store
}

func (h *UsersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultUserListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			errMissingFields.Write(w)
			return
		}
		limit = n
	}

	users, err := h.Store.Users().ListUsers(ctx, limit)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list users", "error", err)
		errServer.Write(w)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"users": out})
}
