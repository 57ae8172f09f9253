package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindBody(t *testing.T, body string, dst any) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	Setup()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return Bind(c, dst)
}

func TestBindGrade(t *testing.T) {
	var ok model.SetGradeRequest
	assert.Nil(t, bindBody(t, `{"grade":"B+"}`, &ok))
	assert.Equal(t, model.Grade("B+"), ok.Grade)

	var bad model.SetGradeRequest
	fields := bindBody(t, `{"grade":"E"}`, &bad)
	require.Contains(t, fields, "grade")
	assert.Contains(t, fields["grade"], "letter grade")
}

func TestBindSchedule(t *testing.T) {
	var req model.ReplaceScheduleRequest
	fields := bindBody(t, `{"schedule":[{"day_of_week":"Monday","start_time":"09:00","end_time":"10:30"}]}`, &req)
	assert.Nil(t, fields)
	require.Len(t, req.Schedule, 1)
	assert.Equal(t, "09:00:00", req.Schedule[0].Start.String())

	fields = bindBody(t, `{"schedule":[{"day_of_week":"monday","start_time":"09:00","end_time":"10:30"}]}`, &req)
	assert.Contains(t, fields, "day_of_week")

	fields = bindBody(t, `{"schedule":[{"day_of_week":"Friday","start_time":"11:00","end_time":"10:00"}]}`, &req)
	assert.Contains(t, fields, "end_time")

	fields = bindBody(t, `{"schedule":[{"day_of_week":"Friday","start_time":"25:00","end_time":"26:00"}]}`, &req)
	assert.Contains(t, fields, "detail")
}
