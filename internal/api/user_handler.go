package api

import (
	"net/http"

	"github.com/voicebox/voicebox-api/internal/api/shared"
	"github.com/voicebox/voicebox-api/internal/service"
)

// UserHandler handles user account API requests. Reads on the requester's
// own account are open to any authenticated user; operations on other
// accounts are reserved for administrators by the routing layer.
type UserHandler struct {
	users service.UserService
}

// NewUserHandler creates a new UserHandler with the given dependencies.
func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GetCurrentUser handles GET /api/users/me, returning the authenticated
// user's own profile.
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}

// GetUser handles GET /api/users/{id} (admin only).
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.users.GetUser(r.Context(), targetID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}

// DeleteUser handles DELETE /api/users/{id} (admin only). Deleting a user
// cascades to their tasks at the database layer. Administrators cannot
// delete their own account.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	requesterID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	targetID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if targetID == requesterID {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	if err := h.users.DeleteUser(r.Context(), targetID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
		"message": "User deleted",
	})
}
