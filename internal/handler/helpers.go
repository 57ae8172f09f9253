package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/registration"
	"github.com/stemsi/unierp-backend/internal/repository"
	"github.com/stemsi/unierp-backend/internal/response"
	"github.com/stemsi/unierp-backend/internal/service"
)

// errorMapping pairs a domain sentinel with its HTTP status and API code.
type errorMapping struct {
	target error
	status int
	code   response.ErrCode
}

// Order matters: the first match wins.
var errorMappings = []errorMapping{
	{registration.ErrOfferingNotFound, http.StatusNotFound, response.ErrOfferingNotFound},
	{repository.ErrNotFound, http.StatusNotFound, response.ErrNotFound},
	{repository.ErrNotActive, http.StatusConflict, response.ErrEnrollmentNotActive},
	{repository.ErrDuplicate, http.StatusConflict, response.ErrConflict},
	{repository.ErrReferenced, http.StatusConflict, response.ErrDependencyExists},
	{repository.ErrCheck, http.StatusBadRequest, response.ErrValidation},
	{service.ErrNotOfferingProfessor, http.StatusForbidden, response.ErrNotOfferingProfessor},
	{service.ErrNotEnrolled, http.StatusForbidden, response.ErrNotEnrolledInCourse},
	{service.ErrForbidden, http.StatusForbidden, response.ErrActionForbidden},
	{service.ErrSelfPrerequisite, http.StatusBadRequest, response.ErrSelfPrerequisite},
	{service.ErrPrerequisiteCycle, http.StatusConflict, response.ErrPrerequisiteCycle},
	{service.ErrInvalidProfessor, http.StatusBadRequest, response.ErrInvalidProfessor},
	{service.ErrStudentNumberRole, http.StatusBadRequest, response.ErrValidation},
	{service.ErrStudentNotFound, http.StatusNotFound, response.ErrStudentNotFound},
	{service.ErrNotStudent, http.StatusBadRequest, response.ErrNotStudent},
	{model.ErrInvalidSlot, http.StatusBadRequest, response.ErrInvalidSchedule},
}

// fail writes the error envelope for a service error. Unmapped errors are
// recorded on the context for the request logger and answered with 500.
func fail(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			response.Fail(c, m.status, m.code)
			return
		}
	}
	_ = c.Error(err)
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}

// uuidParam parses a UUID path parameter, answering 400 when it is malformed.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrInvalidID, name+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	return page, perPage
}
