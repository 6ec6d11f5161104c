package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/leca/dt-petfriends/internal/api"
	"github.com/leca/dt-petfriends/internal/database"
)

// GetAPIKey handles GET /api/key. Credentials arrive in the email and
// password headers.
func (h *Handler) GetAPIKey(w http.ResponseWriter, r *http.Request) {
	email := r.Header.Get("email")
	password := r.Header.Get("password")

	u, err := h.authenticate(email, password)
	if errors.Is(err, database.ErrNotFound) {
		api.Forbidden(w, "This user wasn't found in database")
		return
	}
	if err != nil {
		slog.Error("authenticate", "error", err)
		api.InternalError(w, "failed to authenticate")
		return
	}

	key, err := h.keyFor(u)
	if err != nil {
		slog.Error("issue api key", "user_id", u.ID, "error", err)
		api.InternalError(w, "failed to issue key")
		return
	}

	api.WriteJSON(w, http.StatusOK, api.KeyResponse{Key: key.Key})
}
