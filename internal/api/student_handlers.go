package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"schoolsite-backend/internal/database"
	"schoolsite-backend/internal/models"
)

func (h *Handler) listStudentSections(c echo.Context) error {
	sections, err := h.studentSections.List(c.Request().Context())
	if err != nil {
		return h.serverError(c, err, "Failed to fetch student sections")
	}
	return c.JSON(http.StatusOK, sections)
}

func (h *Handler) createStudentSection(c echo.Context) error {
	var req models.StudentSectionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	section := &models.StudentSection{}
	req.Apply(section)
	if err := h.studentSections.Create(c.Request().Context(), section); err != nil {
		return h.serverError(c, err, "Failed to create student section")
	}

	h.recordMutation(c, resourceStudentSection, models.VerbCreate, section.ID)
	return c.JSON(http.StatusCreated, section)
}

func (h *Handler) updateStudentSection(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	var req models.StudentSectionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	section, err := h.studentSections.GetByID(ctx, id)
	if err == nil {
		req.Apply(section)
		err = h.studentSections.Update(ctx, section)
	}
	if errors.Is(err, database.ErrStudentSectionNotFound) {
		return message(c, http.StatusNotFound, "Section not found")
	}
	if err != nil {
		return h.serverError(c, err, "Failed to update student section")
	}

	h.recordMutation(c, resourceStudentSection, models.VerbUpdate, id)
	return c.JSON(http.StatusOK, section)
}

func (h *Handler) deleteStudentSection(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	err := h.studentSections.Delete(c.Request().Context(), id)
	if errors.Is(err, database.ErrStudentSectionNotFound) {
		return message(c, http.StatusNotFound, "Section not found")
	}
	if err != nil {
		return h.serverError(c, err, "Failed to delete student section")
	}

	h.recordMutation(c, resourceStudentSection, models.VerbDelete, id)
	return success(c)
}

// loadStudentStats returns the saved numbers or the built-in default
func (h *Handler) loadStudentStats(ctx context.Context) (models.StudentStats, error) {
	stats := models.DefaultStudentStats()
	err := h.settings.GetJSON(ctx, database.SettingStudentStats, &stats)
	if errors.Is(err, database.ErrSettingNotFound) {
		return models.DefaultStudentStats(), nil
	}
	return stats, err
}

func (h *Handler) getStudentStats(c echo.Context) error {
	stats, err := h.loadStudentStats(c.Request().Context())
	if err != nil {
		return h.serverError(c, err, "Failed to fetch student stats")
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) updateStudentStats(c echo.Context) error {
	ctx := c.Request().Context()
	stats, err := h.loadStudentStats(ctx)
	if err != nil {
		return h.serverError(c, err, "Failed to update student stats")
	}

	if err := bindAndValidate(c, &stats); err != nil {
		return err
	}

	if err := h.settings.SetJSON(ctx, database.SettingStudentStats, stats); err != nil {
		return h.serverError(c, err, "Failed to update student stats")
	}

	h.recordFromContext(c, models.ResourceAction(resourceStudentStats, models.VerbUpdate), "", nil)
	return c.JSON(http.StatusOK, stats)
}
