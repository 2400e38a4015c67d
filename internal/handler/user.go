package handler

import (
	"io"
	"log/slog"
	"net/http"

	"cirrus/internal/domain/models"
	"cirrus/internal/domain/services"
	"cirrus/internal/httputil"
)

// UserHandler handles user HTTP requests
type UserHandler struct {
	userService services.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService services.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// GetMe returns the caller's user record, provisioning it on first contact
// GET /api/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	email := httputil.GetUserEmail(r)

	user, err := h.userService.GetOrProvision(r.Context(), userID, email)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

// ChangeUsername updates the caller's display name
// PATCH /api/users/me
func (h *UserHandler) ChangeUsername(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req models.ChangeUsernameRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.userService.ChangeUsername(r.Context(), userID, req.NewName); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadProfilePicture replaces the caller's profile picture
// PUT /api/users/me/picture?name=avatar.png
func (h *UserHandler) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	name := r.URL.Query().Get("name")
	if name == "" {
		httputil.RespondError(w, http.StatusBadRequest, "name query parameter is required")
		return
	}

	if err := h.userService.UploadProfilePicture(r.Context(), userID, name, r.Body); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetProfilePicture streams the caller's profile picture
// GET /api/users/me/picture
func (h *UserHandler) GetProfilePicture(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	rc, contentType, err := h.userService.OpenProfilePicture(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Error("profile picture stream aborted", "user_id", userID, "error", err)
	}
}

// DeleteAccount removes the caller's account, drive tree and blobs
// DELETE /api/users/me
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	if err := h.userService.DeleteAccount(r.Context(), userID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
