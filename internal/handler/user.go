package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/quillfeed/quillfeed/internal/auth"
	"github.com/quillfeed/quillfeed/internal/handler/dto"
	"github.com/quillfeed/quillfeed/internal/middleware"
	"github.com/quillfeed/quillfeed/internal/service"
)

// UserHandler handles profile and account management endpoints.
// All routes assume the Authenticate middleware ran first.
type UserHandler struct {
	svc    *service.AccountService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.AccountService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// Me handles GET /api/v1/users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	user, err := h.svc.GetUser(r.Context(), identity.UserID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// UpdateName handles PUT /api/v1/users/me/name.
func (h *UserHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	var req dto.UpdateNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.svc.UpdateName(r.Context(), identity.UserID, req.Name)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.logger.Info("user_renamed",
		"user_id", identity.UserID.String(),
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// ChangePassword handles PUT /api/v1/users/me/password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	var req dto.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	err := h.svc.ChangePassword(r.Context(), identity.UserID, service.ChangePasswordInput{
		OldPassword:        req.OldPassword,
		NewPassword:        req.NewPassword,
		NewPasswordConfirm: req.NewPasswordConfirm,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.logger.Info("password_changed",
		"user_id", identity.UserID.String(),
		"request_id", middleware.GetRequestID(r.Context()),
	)

	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /api/v1/users. Admin only, enforced by RequireAdmin
// on the route.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePage(r)

	users, err := h.svc.ListUsers(r.Context(), page, limit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserListResponse(users, page))
}

// handleError maps account service errors to HTTP responses.
func (h *UserHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	handleAccountError(w, r, h.logger, err)
}
