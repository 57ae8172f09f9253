package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/unierp-backend/internal/middleware"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/registration"
	"github.com/stemsi/unierp-backend/internal/response"
	"github.com/stemsi/unierp-backend/internal/service"
	"github.com/stemsi/unierp-backend/internal/validator"
)

// RegistrationHandler handles course registration and drop.
type RegistrationHandler struct {
	registrationService *service.RegistrationService
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(registrationService *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

// Register godoc
// POST /api/v1/student/registrations
// A refused registration is an expected result, not an error: it answers 200
// with success=false, a reason and a message. A new enrollment answers 201.
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.register(c, middleware.GetActor(c).ID, req.OfferingID)
}

// RegisterStudent godoc
// POST /api/v1/admin/students/:id/registrations
// Registers a student on their behalf. Every check still applies, and :id
// must belong to a student.
func (h *RegistrationHandler) RegisterStudent(c *gin.Context) {
	studentID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	out, err := h.registrationService.RegisterOnBehalf(c.Request.Context(), studentID, req.OfferingID)
	h.respond(c, out, err)
}

func (h *RegistrationHandler) register(c *gin.Context, studentID, offeringID uuid.UUID) {
	out, err := h.registrationService.Register(c.Request.Context(), studentID, offeringID)
	h.respond(c, out, err)
}

func (h *RegistrationHandler) respond(c *gin.Context, out *registration.Outcome, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	status := http.StatusOK
	if out.Success {
		status = http.StatusCreated
	}
	response.Success(c, status, out)
}

// Drop godoc
// DELETE /api/v1/student/registrations/:offering_id
// Only an active enrollment can be dropped; otherwise success=false, reason=not_enrolled.
func (h *RegistrationHandler) Drop(c *gin.Context) {
	offeringID, ok := uuidParam(c, "offering_id")
	if !ok {
		return
	}
	out, err := h.registrationService.Drop(c.Request.Context(), middleware.GetActor(c).ID, offeringID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// PreCheck godoc
// GET /api/v1/student/registrations/:offering_id/check
// Runs prerequisite, credit and conflict checks together without enrolling.
func (h *RegistrationHandler) PreCheck(c *gin.Context) {
	offeringID, ok := uuidParam(c, "offering_id")
	if !ok {
		return
	}
	ev, err := h.registrationService.PreCheck(c.Request.Context(), middleware.GetActor(c).ID, offeringID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, ev)
}
