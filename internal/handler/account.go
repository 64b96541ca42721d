package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/scenevault/scenevault/internal/middleware"
	"github.com/scenevault/scenevault/internal/model"
)

// AccountService is the account logic the handlers call.
type AccountService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.TokenResponse, error)
}

// AccountHandler handles registration and login.
type AccountHandler struct {
	accounts AccountService
	logger   *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// Register handles POST /register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	user, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, "register", err)
		return
	}

	h.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)

	writeJSON(w, http.StatusOK, StatusResponse{
		Status:  "success",
		Message: "User registered successfully",
	})
}

// Login handles POST /login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	token, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, token)
}
