package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/scenevault/scenevault/internal/middleware"
	"github.com/scenevault/scenevault/internal/model"
	"github.com/scenevault/scenevault/internal/service"
)

// Client-facing messages.
const (
	msgDuplicateUsername  = "Username already registered"
	msgDuplicateEmail     = "Email already registered"
	msgInvalidCredentials = "Incorrect username/email or password"
	msgSceneNotFound      = "No data found for this user"
	msgStorageUnavailable = "Database connection failed"
	msgInternal           = "Internal server error"
)

// writeServiceError maps service errors to status codes. Unexpected errors
// are logged with the request ID; their text never reaches the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Message)
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, service.ErrDuplicateUsername):
		writeError(w, http.StatusBadRequest, msgDuplicateUsername)
	case errors.Is(err, service.ErrDuplicateEmail):
		writeError(w, http.StatusBadRequest, msgDuplicateEmail)
	case errors.Is(err, service.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
	case errors.Is(err, service.ErrSceneNotFound):
		writeError(w, http.StatusNotFound, msgSceneNotFound)
	case errors.Is(err, service.ErrStorageUnavailable):
		logger.Error(op+" failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, msgStorageUnavailable)
	default:
		logger.Error(op+" failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}
