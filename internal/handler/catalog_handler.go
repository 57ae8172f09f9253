package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/response"
	"github.com/stemsi/unierp-backend/internal/service"
	"github.com/stemsi/unierp-backend/internal/validator"
)

// CatalogHandler handles course, prerequisite and offering endpoints.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListCourses godoc
// GET /api/v1/courses?department=&search=&page=&per_page=
// Lists courses with pagination. ?all=true returns the whole catalog unpaginated.
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	if c.Query("all") == "true" {
		courses, err := h.catalogService.ListAllCourses(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"courses": courses})
		return
	}

	page, perPage := pageParams(c)
	courses, pagination, err := h.catalogService.ListCourses(c.Request.Context(), c.Query("department"), c.Query("search"), page, perPage)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"courses": courses}, pagination)
}

// GetCourse godoc
// GET /api/v1/courses/:id
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	course, err := h.catalogService.GetCourse(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// CreateCourse godoc
// POST /api/v1/admin/courses
func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	var req model.CreateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	course, err := h.catalogService.CreateCourse(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

// UpdateCourse godoc
// PATCH /api/v1/admin/courses/:id
func (h *CatalogHandler) UpdateCourse(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var upd model.CourseUpdate
	if fields := validator.Bind(c, &upd); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	course, err := h.catalogService.UpdateCourse(c.Request.Context(), id, upd)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// DeleteCourse godoc
// DELETE /api/v1/admin/courses/:id
// Fails with DEPENDENCY_EXISTS while offerings or dependent courses reference it.
func (h *CatalogHandler) DeleteCourse(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteCourse(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "course deleted"})
}

// AddPrerequisite godoc
// POST /api/v1/admin/courses/:id/prerequisites
func (h *CatalogHandler) AddPrerequisite(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req model.AddPrerequisiteRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	course, err := h.catalogService.AddPrerequisite(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// RemovePrerequisite godoc
// DELETE /api/v1/admin/courses/:id/prerequisites/:prereq_id
func (h *CatalogHandler) RemovePrerequisite(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	prereqID, ok := uuidParam(c, "prereq_id")
	if !ok {
		return
	}
	if err := h.catalogService.RemovePrerequisite(c.Request.Context(), id, prereqID); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "prerequisite removed"})
}

// ListCourseOfferings godoc
// GET /api/v1/courses/:id/offerings
func (h *CatalogHandler) ListCourseOfferings(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	offerings, err := h.catalogService.ListCourseOfferings(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"offerings": offerings})
}

// ListOfferings godoc
// GET /api/v1/offerings?semester=Fall&year=2025
func (h *CatalogHandler) ListOfferings(c *gin.Context) {
	var q model.TermQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidQuery, fields)
		return
	}
	offerings, err := h.catalogService.ListOfferings(c.Request.Context(), q.Semester, q.Year)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"offerings": offerings})
}

// GetOffering godoc
// GET /api/v1/offerings/:id
func (h *CatalogHandler) GetOffering(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	offering, err := h.catalogService.GetOffering(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"offering": offering})
}

// CreateOffering godoc
// POST /api/v1/admin/offerings
func (h *CatalogHandler) CreateOffering(c *gin.Context) {
	var req model.CreateOfferingRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	offering, err := h.catalogService.CreateOffering(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"offering": offering})
}

// UpdateOffering godoc
// PATCH /api/v1/admin/offerings/:id
func (h *CatalogHandler) UpdateOffering(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var upd model.OfferingUpdate
	if fields := validator.Bind(c, &upd); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	offering, err := h.catalogService.UpdateOffering(c.Request.Context(), id, upd)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"offering": offering})
}

// ReplaceSchedule godoc
// PUT /api/v1/admin/offerings/:id/schedule
// Replaces every weekly slot of the offering. An empty list clears the schedule.
func (h *CatalogHandler) ReplaceSchedule(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req model.ReplaceScheduleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	offering, err := h.catalogService.ReplaceSchedule(c.Request.Context(), id, req.Schedule)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"offering": offering})
}

// DeleteOffering godoc
// DELETE /api/v1/admin/offerings/:id
func (h *CatalogHandler) DeleteOffering(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteOffering(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "offering deleted"})
}
