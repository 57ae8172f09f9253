package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/unierp-backend/internal/config"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/response"
	"github.com/stemsi/unierp-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth() *service.AuthService {
	return service.NewAuthService(&config.Config{JWTSecret: "mw-secret", JWTExpiry: time.Hour})
}

func token(t *testing.T, auth *service.AuthService, role model.Role) string {
	t.Helper()
	tok, err := auth.GenerateToken(uuid.New(), "", role, 0)
	require.NoError(t, err)
	return tok
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) response.ErrCode {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error.Code
}

func protected(auth *service.AuthService, mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append([]gin.HandlerFunc{RequireJWT(auth)}, mw...)
	chain = append(chain, func(c *gin.Context) {
		c.String(http.StatusOK, string(GetActor(c).Role))
	})
	r.GET("/", chain...)
	return r
}

func TestRequireJWT(t *testing.T) {
	auth := newAuth()
	r := protected(auth)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrTokenRequired, errorCode(t, w))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, response.ErrTokenInvalid, errorCode(t, w))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, auth, model.RoleProfessor))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "professor", w.Body.String())
}

func TestRequirePermissionAndRole(t *testing.T) {
	auth := newAuth()
	grades := protected(auth, RequirePermission(model.PermissionGradesWrite))
	adminOnly := protected(auth, RequireRole(model.RoleAdmin))

	cases := []struct {
		name   string
		r      *gin.Engine
		role   model.Role
		status int
	}{
		{"professor grades", grades, model.RoleProfessor, http.StatusOK},
		{"student grades", grades, model.RoleStudent, http.StatusForbidden},
		{"admin grades", grades, model.RoleAdmin, http.StatusOK},
		{"professor admin route", adminOnly, model.RoleProfessor, http.StatusForbidden},
		{"admin admin route", adminOnly, model.RoleAdmin, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+token(t, auth, tc.role))
			w := httptest.NewRecorder()
			tc.r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestRequireStudentWSAuth(t *testing.T) {
	auth := newAuth()
	r := gin.New()
	r.GET("/ws", RequireStudentWSAuth(auth), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+token(t, auth, model.RoleProfessor), nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+token(t, auth, model.RoleStudent), nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
