package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"schoolsite-backend/internal/auth"
	"schoolsite-backend/internal/database"
	"schoolsite-backend/internal/models"
)

// listUsers handles GET /api/admin/users
func (h *Handler) listUsers(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return h.serverError(c, err, "Failed to list users")
	}
	if users == nil {
		users = []*models.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// createUser handles POST /api/admin/users. New accounts default to USER.
func (h *Handler) createUser(c echo.Context) error {
	var req models.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return h.serverError(c, err, "Failed to create user")
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
	}
	err = h.users.Create(c.Request().Context(), user)
	if errors.Is(err, database.ErrUserAlreadyExists) {
		return message(c, http.StatusConflict, "User already exists")
	}
	if err != nil {
		return h.serverError(c, err, "Failed to create user")
	}

	h.recordFromContext(c, models.ActionUserCreate, user.Email, map[string]any{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return c.JSON(http.StatusCreated, user)
}

// setUserActive handles PUT /api/admin/users/:id/active
func (h *Handler) setUserActive(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	var req models.SetActiveRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	// Prevent locking yourself out
	if identity := auth.IdentityFromContext(c); identity != nil && identity.UserID == id && !*req.Active {
		return message(c, http.StatusBadRequest, "You cannot deactivate your own account")
	}

	ctx := c.Request().Context()
	err := h.users.SetActive(ctx, id, *req.Active)
	if errors.Is(err, database.ErrUserNotFound) {
		return message(c, http.StatusNotFound, "User not found")
	}
	if err != nil {
		return h.serverError(c, err, "Failed to update user")
	}

	user, err := h.users.GetByID(ctx, id)
	if err != nil {
		return h.serverError(c, err, "Failed to update user")
	}

	h.recordFromContext(c, models.ActionUserUpdate, strconv.FormatInt(id, 10), map[string]bool{
		"active": *req.Active,
	})
	return c.JSON(http.StatusOK, user)
}
