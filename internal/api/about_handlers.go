package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"schoolsite-backend/internal/database"
	"schoolsite-backend/internal/models"
)

// loadTrustInfo returns the saved trust block or the built-in default
func (h *Handler) loadTrustInfo(ctx context.Context) (models.TrustInfo, error) {
	info := models.DefaultTrustInfo()
	err := h.settings.GetJSON(ctx, database.SettingTrustInfo, &info)
	if errors.Is(err, database.ErrSettingNotFound) {
		return models.DefaultTrustInfo(), nil
	}
	return info, err
}

func (h *Handler) getTrustInfo(c echo.Context) error {
	info, err := h.loadTrustInfo(c.Request().Context())
	if err != nil {
		return h.serverError(c, err, "Failed to fetch trust info")
	}
	return c.JSON(http.StatusOK, info)
}

// updateTrustInfo merges the body into the current block. Fields missing
// from the body keep their value.
func (h *Handler) updateTrustInfo(c echo.Context) error {
	ctx := c.Request().Context()
	info, err := h.loadTrustInfo(ctx)
	if err != nil {
		return h.serverError(c, err, "Failed to update trust info")
	}

	if err := bindAndValidate(c, &info); err != nil {
		return err
	}

	if err := h.settings.SetJSON(ctx, database.SettingTrustInfo, info); err != nil {
		return h.serverError(c, err, "Failed to update trust info")
	}

	h.recordFromContext(c, models.ResourceAction(resourceTrustInfo, models.VerbUpdate), "", nil)
	return c.JSON(http.StatusOK, info)
}

// Trustees

func (h *Handler) listTrustees(c echo.Context) error {
	trustees, err := h.trustees.List(c.Request().Context())
	if err != nil {
		return h.serverError(c, err, "Failed to fetch trustees")
	}
	return c.JSON(http.StatusOK, trustees)
}

func (h *Handler) createTrustee(c echo.Context) error {
	var req models.TrusteeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	trustee := &models.Trustee{}
	req.Apply(trustee)
	if err := h.trustees.Create(c.Request().Context(), trustee); err != nil {
		return h.serverError(c, err, "Failed to create trustee")
	}

	h.recordMutation(c, resourceTrustee, models.VerbCreate, trustee.ID)
	return c.JSON(http.StatusCreated, trustee)
}

func (h *Handler) updateTrustee(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	var req models.TrusteeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	trustee, err := h.trustees.GetByID(ctx, id)
	if err == nil {
		req.Apply(trustee)
		err = h.trustees.Update(ctx, trustee)
	}
	if errors.Is(err, database.ErrTrusteeNotFound) {
		return message(c, http.StatusNotFound, "Trustee not found")
	}
	if err != nil {
		return h.serverError(c, err, "Failed to update trustee")
	}

	h.recordMutation(c, resourceTrustee, models.VerbUpdate, id)
	return c.JSON(http.StatusOK, trustee)
}

func (h *Handler) deleteTrustee(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	trustee, err := h.trustees.Delete(c.Request().Context(), id)
	if errors.Is(err, database.ErrTrusteeNotFound) {
		return message(c, http.StatusNotFound, "Trustee not found")
	}
	if err != nil {
		return h.serverError(c, err, "Failed to delete trustee")
	}

	h.recordMutation(c, resourceTrustee, models.VerbDelete, trustee.ID)
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"deleted": trustee,
	})
}
