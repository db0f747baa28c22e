package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"schoolsite-backend/internal/models"
	"schoolsite-backend/internal/records"
	"schoolsite-backend/internal/validation"
)

// recordError writes the {success:false,error} body of the student record
// routes
func recordError(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]any{
		"success": false,
		"error":   msg,
	})
}

func (h *Handler) recordServerError(c echo.Context, err error, msg string) error {
	h.log.Error().Err(err).Str("path", c.Path()).Msg(msg)
	return recordError(c, http.StatusInternalServerError, msg)
}

// lookupStudent resolves the :id parameter. When it returns nil the error
// response has already been chosen.
func (h *Handler) lookupStudent(c echo.Context) (*records.Student, error) {
	id, err := records.ParseID(c.Param("id"))
	if err != nil {
		return nil, recordError(c, http.StatusBadRequest, "Invalid student ID")
	}

	student, err := h.records.Get(c.Request().Context(), id)
	if errors.Is(err, records.ErrNotFound) {
		return nil, recordError(c, http.StatusNotFound, "Student not found")
	}
	if err != nil {
		return nil, h.recordServerError(c, err, "Failed to fetch student")
	}
	return student, nil
}

func (h *Handler) listStudentRecords(c echo.Context) error {
	students, err := h.records.List(c.Request().Context())
	if err != nil {
		return h.recordServerError(c, err, "Failed to fetch students")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"count":   len(students),
		"data":    students,
	})
}

func (h *Handler) getStudentRecord(c echo.Context) error {
	student, err := h.lookupStudent(c)
	if student == nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    student,
	})
}

func (h *Handler) createStudentRecord(c echo.Context) error {
	var in records.StudentInput
	if err := c.Bind(&in); err != nil {
		return recordError(c, http.StatusBadRequest, "Invalid request body")
	}

	student := records.NewStudent(in, h.now())
	if err := c.Validate(student); err != nil {
		return recordError(c, http.StatusBadRequest, validation.Message(err))
	}

	err := h.records.Create(c.Request().Context(), student)
	if errors.Is(err, records.ErrDuplicateEmail) {
		return recordError(c, http.StatusBadRequest, "Email already exists")
	}
	if err != nil {
		return h.recordServerError(c, err, "Failed to create student")
	}

	h.recordFromContext(c, models.ResourceAction(resourceStudentRecord, models.VerbCreate), student.ID.Hex(), nil)
	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"data":    student,
	})
}

// updateStudentRecord applies the fields present in the body and validates
// the merged record
func (h *Handler) updateStudentRecord(c echo.Context) error {
	student, err := h.lookupStudent(c)
	if student == nil {
		return err
	}

	var in records.StudentInput
	if err := c.Bind(&in); err != nil {
		return recordError(c, http.StatusBadRequest, "Invalid request body")
	}
	in.Apply(student)
	if err := c.Validate(student); err != nil {
		return recordError(c, http.StatusBadRequest, validation.Message(err))
	}

	err = h.records.Replace(c.Request().Context(), student)
	switch {
	case errors.Is(err, records.ErrDuplicateEmail):
		return recordError(c, http.StatusBadRequest, "Email already exists")
	case errors.Is(err, records.ErrNotFound):
		return recordError(c, http.StatusNotFound, "Student not found")
	case err != nil:
		return h.recordServerError(c, err, "Failed to update student")
	}

	h.recordFromContext(c, models.ResourceAction(resourceStudentRecord, models.VerbUpdate), student.ID.Hex(), nil)
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    student,
	})
}

func (h *Handler) deleteStudentRecord(c echo.Context) error {
	id, err := records.ParseID(c.Param("id"))
	if err != nil {
		return recordError(c, http.StatusBadRequest, "Invalid student ID")
	}

	err = h.records.Delete(c.Request().Context(), id)
	if errors.Is(err, records.ErrNotFound) {
		return recordError(c, http.StatusNotFound, "Student not found")
	}
	if err != nil {
		return h.recordServerError(c, err, "Failed to delete student")
	}

	h.recordFromContext(c, models.ResourceAction(resourceStudentRecord, models.VerbDelete), id.Hex(), nil)
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]any{},
	})
}
