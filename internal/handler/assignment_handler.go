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

// AssignmentHandler handles offering assignments.
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignmentService *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// ListAssignments godoc
// GET /api/v1/offerings/:id/assignments
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	offeringID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	assignments, err := h.assignmentService.ListForOffering(c.Request.Context(), middleware.GetActor(c), offeringID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assignments": assignments})
}

// CreateAssignment godoc
// POST /api/v1/offerings/:id/assignments
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	offeringID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req model.CreateAssignmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	a, err := h.assignmentService.Create(c.Request.Context(), middleware.GetActor(c), offeringID, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"assignment": a})
}

// UpdateAssignment godoc
// PATCH /api/v1/assignments/:id
func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var upd model.AssignmentUpdate
	if fields := validator.Bind(c, &upd); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	a, err := h.assignmentService.Update(c.Request.Context(), middleware.GetActor(c), id, upd)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assignment": a})
}

// DeleteAssignment godoc
// DELETE /api/v1/assignments/:id
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.assignmentService.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "assignment deleted"})
}
