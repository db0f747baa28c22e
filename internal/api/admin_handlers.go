package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"schoolsite-backend/internal/auth"
	"schoolsite-backend/internal/database"
	"schoolsite-backend/internal/models"
)

// adminMe handles GET /api/admin/me
func (h *Handler) adminMe(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message": "You are a SUPER_ADMIN",
		"user":    auth.IdentityFromContext(c),
	})
}

// changePassword handles POST /api/admin/change-password
func (h *Handler) changePassword(c echo.Context) error {
	var req models.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "New password is required")
	}

	identity := auth.IdentityFromContext(c)
	err := h.auth.ChangePassword(c.Request().Context(), identity.UserID, req.NewPassword)
	switch {
	case errors.Is(err, auth.ErrMissingPassword):
		return message(c, http.StatusBadRequest, "New password is required")
	case errors.Is(err, database.ErrUserNotFound):
		return message(c, http.StatusNotFound, "User not found")
	case err != nil:
		return h.serverError(c, err, "Server error")
	}

	h.recordFromContext(c, models.ActionPasswordChange, "", nil)
	return message(c, http.StatusOK, "Password updated successfully")
}

// requestOTP handles POST /api/otp/request. Codes are not mailed anywhere
// yet; they are written to the debug log.
func (h *Handler) requestOTP(c echo.Context) error {
	var req models.OTPRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Purpose is required")
	}

	identity := auth.IdentityFromContext(c)
	otp, err := h.auth.RequestOTP(c.Request().Context(), identity.UserID, req.Purpose)
	switch {
	case errors.Is(err, auth.ErrMissingPurpose):
		return message(c, http.StatusBadRequest, "Purpose is required")
	case errors.Is(err, database.ErrUserNotFound):
		return message(c, http.StatusNotFound, "User not found")
	case err != nil:
		return h.serverError(c, err, "Failed to generate OTP")
	}

	h.log.Debug().
		Int64("user_id", identity.UserID).
		Str("purpose", otp.Purpose).
		Str("code", otp.Code).
		Msg("otp issued")
	h.recordFromContext(c, models.ActionOTPRequest, otp.Purpose, nil)

	return c.JSON(http.StatusOK, map[string]any{
		"message":    "OTP generated successfully",
		"expires_at": otp.ExpiresAt,
	})
}

// verifyOTP handles POST /api/otp/verify
func (h *Handler) verifyOTP(c echo.Context) error {
	var req models.OTPVerifyRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "OTP and purpose required")
	}

	identity := auth.IdentityFromContext(c)
	err := h.auth.VerifyOTP(c.Request().Context(), identity.UserID, req.OTP, req.Purpose)
	switch {
	case errors.Is(err, auth.ErrMissingOTP):
		return message(c, http.StatusBadRequest, "OTP and purpose required")
	case errors.Is(err, auth.ErrInvalidOTP):
		return message(c, http.StatusBadRequest, "Invalid or expired OTP")
	case errors.Is(err, database.ErrUserNotFound):
		return message(c, http.StatusNotFound, "User not found")
	case err != nil:
		return h.serverError(c, err, "Failed to verify OTP")
	}

	h.recordFromContext(c, models.ActionOTPVerify, req.Purpose, nil)
	return message(c, http.StatusOK, "OTP verified successfully")
}
