package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/raven2t2/importiq-backend/shared/utils"
	"github.com/raven2t2/importiq-backend/v1/middleware"
	"github.com/raven2t2/importiq-backend/v1/models"
	"github.com/raven2t2/importiq-backend/v1/services"
	v1utils "github.com/raven2t2/importiq-backend/v1/utils"
)

func (h *V1Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.RegisterRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		middleware.LogAuditEvent(r, models.ResourceTypeUsers, nil, models.AuditStatusFailure)
		if errors.Is(err, services.ErrEmailTaken) {
			utils.RespondWithError(w, http.StatusBadRequest, "Email is already registered")
			return
		}
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.LogAuditEvent(r, models.ResourceTypeUsers, &user.UserID, models.AuditStatusSuccess)
	utils.RespondWithSuccess(w, http.StatusCreated, user)
}

func (h *V1Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		slog.Error("Login failed", "error", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, resp)
}

func (h *V1Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	token, err := v1utils.ExtractBearerToken(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.authService.Logout(r.Context(), token); err != nil {
		slog.Error("Logout failed", "error", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *V1Handler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	user, err := v1utils.GetAuthenticatedUser(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, &models.UserResponse{
		UserID:    user.UserID,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	})
}

func (h *V1Handler) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.PasswordResetRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	resp, err := h.authService.IssueResetToken(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			// Do not reveal whether the email exists
			utils.RespondWithSuccess(w, http.StatusOK, map[string]string{
				"message": "If the account exists, a reset token has been issued",
			})
			return
		}
		slog.Error("Password reset failed", "error", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to issue reset token")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, resp)
}

func (h *V1Handler) handlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.PasswordResetConfirmRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if err := h.authService.ConfirmReset(r.Context(), req.ResetToken, req.NewPassword); err != nil {
		middleware.LogAuditEvent(r, models.ResourceTypeSessions, nil, models.AuditStatusFailure)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.LogAuditEvent(r, models.ResourceTypeSessions, nil, models.AuditStatusSuccess)
	utils.RespondWithSuccess(w, http.StatusOK, map[string]string{"message": "Password updated"})
}
