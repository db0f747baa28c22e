package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"schoolsite-backend/internal/models"
	"schoolsite-backend/internal/storage"
)

// uploadImage handles POST /api/upload/:kind with the file in the "image"
// multipart field
func (h *Handler) uploadImage(c echo.Context) error {
	kind, err := storage.LookupKind(c.Param("kind"))
	if err != nil {
		return message(c, http.StatusNotFound, "Unknown upload type")
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return message(c, http.StatusBadRequest, "No file uploaded")
	}

	file, err := fh.Open()
	if err != nil {
		return h.serverError(c, err, "Failed to read upload")
	}
	defer file.Close()

	img, err := h.images.Upload(c.Request().Context(), kind.Folder, file, fh.Size, fh.Header.Get(echo.HeaderContentType))
	switch {
	case errors.Is(err, storage.ErrFileTooBig):
		return message(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, storage.ErrInvalidFileType):
		return message(c, http.StatusBadRequest, err.Error())
	case err != nil:
		return h.serverError(c, err, "Failed to upload image")
	}

	img.Type = kind.Type
	h.recordFromContext(c, models.ActionImageUpload, img.PublicID, map[string]string{
		"kind": c.Param("kind"),
	})
	return c.JSON(http.StatusOK, img)
}
