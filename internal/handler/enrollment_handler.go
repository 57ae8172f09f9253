package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/unierp-backend/internal/middleware"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/response"
	"github.com/stemsi/unierp-backend/internal/service"
	"github.com/stemsi/unierp-backend/internal/validator"
)

// EnrollmentHandler handles enrollment listings, timetables, rosters and grading.
type EnrollmentHandler struct {
	enrollmentService *service.EnrollmentService
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(enrollmentService *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService}
}

// MyEnrollments godoc
// GET /api/v1/student/enrollments?status=enrolled
func (h *EnrollmentHandler) MyEnrollments(c *gin.Context) {
	h.listEnrollments(c, middleware.GetActor(c).ID)
}

// StudentEnrollments godoc
// GET /api/v1/admin/students/:id/enrollments?status=
func (h *EnrollmentHandler) StudentEnrollments(c *gin.Context) {
	studentID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	h.listEnrollments(c, studentID)
}

func (h *EnrollmentHandler) listEnrollments(c *gin.Context, studentID uuid.UUID) {
	var q model.EnrollmentQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidQuery, fields)
		return
	}
	enrollments, err := h.enrollmentService.ListForStudent(c.Request.Context(), studentID, q.Status)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"enrollments": enrollments})
}

// MyTimetable godoc
// GET /api/v1/student/timetable
// Weekly timetable of enrolled offerings, Monday first, each day ordered by start time.
func (h *EnrollmentHandler) MyTimetable(c *gin.Context) {
	days, err := h.enrollmentService.StudentTimetable(c.Request.Context(), middleware.GetActor(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"timetable": days})
}

// MyHistory godoc
// GET /api/v1/student/history?limit=50
func (h *EnrollmentHandler) MyHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	events, err := h.enrollmentService.History(c.Request.Context(), middleware.GetActor(c).ID, limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"events": events})
}

// TeachingOfferings godoc
// GET /api/v1/professor/offerings
func (h *EnrollmentHandler) TeachingOfferings(c *gin.Context) {
	offerings, err := h.enrollmentService.TaughtOfferings(c.Request.Context(), middleware.GetActor(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"offerings": offerings})
}

// TeachingTimetable godoc
// GET /api/v1/professor/timetable?semester=Fall&year=2025
func (h *EnrollmentHandler) TeachingTimetable(c *gin.Context) {
	var q model.TermQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidQuery, fields)
		return
	}
	days, err := h.enrollmentService.ProfessorTimetable(c.Request.Context(), middleware.GetActor(c).ID, q.Semester, q.Year)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"timetable": days})
}

// Roster godoc
// GET /api/v1/offerings/:id/roster
// Professors see only offerings they teach; admins see all.
func (h *EnrollmentHandler) Roster(c *gin.Context) {
	offeringID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	roster, err := h.enrollmentService.Roster(c.Request.Context(), middleware.GetActor(c), offeringID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"roster": roster})
}

// SetGrade godoc
// PUT /api/v1/enrollments/:id/grade
// Records the final grade and completes the enrollment.
func (h *EnrollmentHandler) SetGrade(c *gin.Context) {
	enrollmentID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req model.SetGradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	e, err := h.enrollmentService.SetGrade(c.Request.Context(), middleware.GetActor(c), enrollmentID, req.Grade)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"enrollment": e})
}

// AdminDrop godoc
// POST /api/v1/admin/enrollments/:id/drop
// Marks the enrollment dropped. The row stays for the academic record.
func (h *EnrollmentHandler) AdminDrop(c *gin.Context) {
	enrollmentID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	e, err := h.enrollmentService.AdminDrop(c.Request.Context(), enrollmentID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"enrollment": e})
}
