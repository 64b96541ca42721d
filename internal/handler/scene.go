package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/scenevault/scenevault/internal/auth"
	"github.com/scenevault/scenevault/internal/model"
)

// SceneService is the scene logic the handlers call.
type SceneService interface {
	Save(ctx context.Context, userID string, scene model.Scene) (*model.SceneDocument, error)
	Load(ctx context.Context, userID string) (*model.SceneDocument, error)
}

// SceneHandler saves and loads the scene of the authenticated user.
// Both routes must sit behind the auth middleware.
type SceneHandler struct {
	scenes SceneService
	logger *slog.Logger
}

// NewSceneHandler creates a new SceneHandler.
func NewSceneHandler(scenes SceneService, logger *slog.Logger) *SceneHandler {
	return &SceneHandler{
		scenes: scenes,
		logger: logger,
	}
}

// Save handles POST /addData.
func (h *SceneHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeUnauthenticated(w)
		return
	}

	var scene model.Scene
	if err := decodeJSON(r, &scene); err != nil {
		writeDecodeError(w, err)
		return
	}

	if _, err := h.scenes.Save(r.Context(), userID, scene); err != nil {
		writeServiceError(w, r, h.logger, "save scene", err)
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{
		Status:  "success",
		Message: "Data saved successfully",
	})
}

// Load handles GET /getData.
func (h *SceneHandler) Load(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeUnauthenticated(w)
		return
	}

	doc, err := h.scenes.Load(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, h.logger, "load scene", err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func writeUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, "Could not validate credentials")
}
