package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"schoolsite-backend/internal/database"
	"schoolsite-backend/internal/models"
)

// Audit resource names
const (
	resourceTeacher        = "teacher"
	resourceAlumnus        = "alumnus"
	resourceCampusSection  = "campus_section"
	resourceSport          = "sport"
	resourceGalleryImage   = "gallery_image"
	resourceTrustee        = "trustee"
	resourceTrustInfo      = "trust_info"
	resourceStudentSection = "student_section"
	resourceStudentStats   = "student_stats"
	resourceStudentRecord  = "student_record"
)

func invalidID(c echo.Context) error {
	return message(c, http.StatusBadRequest, "invalid ID")
}

func success(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) recordMutation(c echo.Context, resource, verb string, id int64) {
	h.recordFromContext(c, models.ResourceAction(resource, verb), strconv.FormatInt(id, 10), nil)
}

// Teachers

func (h *Handler) listTeachers(c echo.Context) error {
	teachers, err := h.teachers.List(c.Request().Context())
	if err != nil {
		return h.serverError(c, err, "Failed to fetch teachers")
	}
	return c.JSON(http.StatusOK, teachers)
}

func (h *Handler) createTeacher(c echo.Context) error {
	var req models.TeacherRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	teacher := &models.Teacher{}
	req.Apply(teacher)
	if err := h.teachers.Create(c.Request().Context(), teacher); err != nil {
		return h.serverError(c, err, "Failed to create teacher")
	}

	h.recordMutation(c, resourceTeacher, models.VerbCreate, teacher.ID)
	return c.JSON(http.StatusCreated, teacher)
}

// updateTeacher replaces a teacher. A photo that is no longer referenced is
// removed from the image store.
func (h *Handler) updateTeacher(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	var req models.TeacherRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	teacher, err := h.teachers.GetByID(ctx, id)
	if errors.Is(err, database.ErrTeacherNotFound) {
		return message(c, http.StatusNotFound, "Teacher not found")
	}
	if err != nil {
		return h.serverError(c, err, "Failed to update teacher")
	}

	oldPublicID := teacher.PhotoPublicID
	req.Apply(teacher)
	err = h.teachers.Update(ctx, teacher)
	if errors.Is(err, database.ErrTeacherNotFound) {
		return message(c, http.StatusNotFound, "Teacher not found")
	}
	if err != nil {
		return h.serverError(c, err, "Failed to update teacher")
	}

	if oldPublicID != teacher.PhotoPublicID {
		h.removeImage(ctx, oldPublicID)
	}

	h.recordMutation(c, resourceTeacher, models.VerbUpdate, teacher.ID)
	return c.JSON(http.StatusOK, teacher)
}

func (h *Handler) deleteTeacher(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	ctx := c.Request().Context()
	teacher, err := h.teachers.GetByID(ctx, id)
	if errors.Is(err, database.ErrTeacherNotFound) {
		return message(c, http.StatusNotFound, "Teacher not found")
	}
	if err != nil {
		return h.serverError(c, err, "Failed to delete teacher")
	}

	err = h.teachers.Delete(ctx, id)
	if errors.Is(err, database.ErrTeacherNotFound) {
		return message(c, http.StatusNotFound, "Teacher not found")
	}
	if err != nil {
		return h.serverError(c, err, "Failed to delete teacher")
	}

	h.removeImage(ctx, teacher.PhotoPublicID)
	h.recordMutation(c, resourceTeacher, models.VerbDelete, id)
	return message(c, http.StatusOK, "Teacher deleted successfully")
}

// Alumni

func (h *Handler) listAlumni(c echo.Context) error {
	alumni, err := h.alumni.List(c.Request().Context())
	if err != nil {
		return h.serverError(c, err, "Failed to fetch alumni")
	}
	return c.JSON(http.StatusOK, alumni)
}

func (h *Handler) createAlumnus(c echo.Context) error {
	var req models.AlumnusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	alumnus := &models.Alumnus{}
	req.Apply(alumnus)
	if err := h.alumni.Create(c.Request().Context(), alumnus); err != nil {
		return h.serverError(c, err, "Failed to create alumnus")
	}

	h.recordMutation(c, resourceAlumnus, models.VerbCreate, alumnus.ID)
	return c.JSON(http.StatusCreated, alumnus)
}

func (h *Handler) updateAlumnus(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	var req models.AlumnusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	alumnus, err := h.alumni.GetByID(ctx, id)
	if err == nil {
		req.Apply(alumnus)
		err = h.alumni.Update(ctx, alumnus)
	}
	if errors.Is(err, database.ErrAlumnusNotFound) {
		return message(c, http.StatusNotFound, "Alumnus not found")
	}
	if err != nil {
		return h.serverError(c, err, "Failed to update alumnus")
	}

	h.recordMutation(c, resourceAlumnus, models.VerbUpdate, id)
	return c.JSON(http.StatusOK, alumnus)
}

func (h *Handler) deleteAlumnus(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	err := h.alumni.Delete(c.Request().Context(), id)
	if errors.Is(err, database.ErrAlumnusNotFound) {
		return message(c, http.StatusNotFound, "Alumnus not found")
	}
	if err != nil {
		return h.serverError(c, err, "Failed to delete alumnus")
	}

	h.recordMutation(c, resourceAlumnus, models.VerbDelete, id)
	return success(c)
}

// Campus

func (h *Handler) listCampusSections(c echo.Context) error {
	sections, err := h.campus.List(c.Request().Context())
	if err != nil {
		return h.serverError(c, err, "Failed to fetch campus sections")
	}
	return c.JSON(http.StatusOK, sections)
}

func (h *Handler) createCampusSection(c echo.Context) error {
	var req models.CampusSectionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	section := &models.CampusSection{}
	req.Apply(section)
	if err := h.campus.Create(c.Request().Context(), section); err != nil {
		return h.serverError(c, err, "Failed to create campus section")
	}

	h.recordMutation(c, resourceCampusSection, models.VerbCreate, section.ID)
	return c.JSON(http.StatusCreated, section)
}

func (h *Handler) updateCampusSection(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	var req models.CampusSectionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	section, err := h.campus.GetByID(ctx, id)
	if err == nil {
		req.Apply(section)
		err = h.campus.Update(ctx, section)
	}
	if errors.Is(err, database.ErrCampusSectionNotFound) {
		return message(c, http.StatusNotFound, "Campus section not found")
	}
	if err != nil {
		return h.serverError(c, err, "Failed to update campus section")
	}

	h.recordMutation(c, resourceCampusSection, models.VerbUpdate, id)
	return c.JSON(http.StatusOK, section)
}

func (h *Handler) deleteCampusSection(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	err := h.campus.Delete(c.Request().Context(), id)
	if errors.Is(err, database.ErrCampusSectionNotFound) {
		return message(c, http.StatusNotFound, "Campus section not found")
	}
	if err != nil {
		return h.serverError(c, err, "Failed to delete campus section")
	}

	h.recordMutation(c, resourceCampusSection, models.VerbDelete, id)
	return success(c)
}

// Sports

func (h *Handler) listSports(c echo.Context) error {
	sports, err := h.sports.List(c.Request().Context())
	if err != nil {
		return h.serverError(c, err, "Failed to fetch sports")
	}
	return c.JSON(http.StatusOK, sports)
}

func (h *Handler) createSport(c echo.Context) error {
	var req models.SportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sport := &models.Sport{}
	req.Apply(sport)
	if err := h.sports.Create(c.Request().Context(), sport); err != nil {
		return h.serverError(c, err, "Failed to create sport")
	}

	h.recordMutation(c, resourceSport, models.VerbCreate, sport.ID)
	return c.JSON(http.StatusCreated, sport)
}

func (h *Handler) updateSport(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	var req models.SportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	sport, err := h.sports.GetByID(ctx, id)
	if err == nil {
		req.Apply(sport)
		err = h.sports.Update(ctx, sport)
	}
	if errors.Is(err, database.ErrSportNotFound) {
		return message(c, http.StatusNotFound, "Sport not found")
	}
	if err != nil {
		return h.serverError(c, err, "Failed to update sport")
	}

	h.recordMutation(c, resourceSport, models.VerbUpdate, id)
	return c.JSON(http.StatusOK, sport)
}

func (h *Handler) deleteSport(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	err := h.sports.Delete(c.Request().Context(), id)
	if errors.Is(err, database.ErrSportNotFound) {
		return message(c, http.StatusNotFound, "Sport not found")
	}
	if err != nil {
		return h.serverError(c, err, "Failed to delete sport")
	}

	h.recordMutation(c, resourceSport, models.VerbDelete, id)
	return success(c)
}

// Gallery

func (h *Handler) listGallery(c echo.Context) error {
	images, err := h.gallery.List(c.Request().Context())
	if err != nil {
		return h.serverError(c, err, "Failed to fetch gallery")
	}
	return c.JSON(http.StatusOK, images)
}

func (h *Handler) createGalleryImage(c echo.Context) error {
	var req models.GalleryImageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	img := &models.GalleryImage{Image: req.Image}
	if err := h.gallery.Create(c.Request().Context(), img); err != nil {
		return h.serverError(c, err, "Failed to add image")
	}

	h.recordMutation(c, resourceGalleryImage, models.VerbCreate, img.ID)
	return c.JSON(http.StatusCreated, img)
}

func (h *Handler) deleteGalleryImage(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	err := h.gallery.Delete(c.Request().Context(), id)
	if errors.Is(err, database.ErrGalleryImageNotFound) {
		return message(c, http.StatusNotFound, "Image not found")
	}
	if err != nil {
		return h.serverError(c, err, "Failed to delete image")
	}

	h.recordMutation(c, resourceGalleryImage, models.VerbDelete, id)
	return success(c)
}
