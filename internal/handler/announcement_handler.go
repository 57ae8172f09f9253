package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/unierp-backend/internal/middleware"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/response"
	"github.com/stemsi/unierp-backend/internal/service"
	"github.com/stemsi/unierp-backend/internal/validator"
)

// AnnouncementHandler handles announcement feeds and posting.
type AnnouncementHandler struct {
	announcementService *service.AnnouncementService
}

// NewAnnouncementHandler creates a new AnnouncementHandler.
func NewAnnouncementHandler(announcementService *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

// Feed godoc
// GET /api/v1/announcements
// Students see campus-wide posts and those of offerings they are enrolled in.
func (h *AnnouncementHandler) Feed(c *gin.Context) {
	items, err := h.announcementService.Feed(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"announcements": items})
}

// CreateAnnouncement godoc
// POST /api/v1/announcements
// Omit offering_id for a campus-wide post (administrators only).
func (h *AnnouncementHandler) CreateAnnouncement(c *gin.Context) {
	var req model.CreateAnnouncementRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	a, err := h.announcementService.Create(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"announcement": a})
}

// DeleteAnnouncement godoc
// DELETE /api/v1/announcements/:id
func (h *AnnouncementHandler) DeleteAnnouncement(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.announcementService.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "announcement deleted"})
}
