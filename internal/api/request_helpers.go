package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/voicebox/voicebox-api/internal/api/shared"
	"github.com/voicebox/voicebox-api/internal/domain"
)

// getPathUUID extracts and parses a UUID from the URL path parameters.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, fmt.Errorf("%s is required: %w", paramName, domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s has invalid format: %w", paramName, domain.ErrInvalidID)
	}
	return id, nil
}

// requireIdentity extracts the authenticated principal from the request
// context, writing a 401 response if the auth middleware did not run.
func requireIdentity(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool, bool) {
	userID, ok := shared.UserID(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return uuid.Nil, false, false
	}
	return userID, shared.IsAdmin(r.Context()), true
}

// requireTaskID combines identity extraction with parsing the {id} path
// parameter. Returns false if a response was already written.
func requireTaskID(w http.ResponseWriter, r *http.Request) (userID, taskID uuid.UUID, isAdmin, ok bool) {
	userID, isAdmin, ok = requireIdentity(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false, false
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false, false
	}
	return userID, taskID, isAdmin, true
}
