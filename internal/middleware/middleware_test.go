package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims *Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	handlers = append(handlers, func(c *gin.Context) {
		v := GetViewer(c)
		c.JSON(http.StatusOK, gin.H{"emp_id": v.EmpID, "isSA": v.IsSA})
	})
	r.GET("/x", handlers...)
	return r
}

func TestJWTAuth(t *testing.T) {
	r := newRouter(JWTAuth(testSecret))
	valid := signToken(t, &Claims{
		EmpID: "E1",
		IsRJ:  true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)
	expired := signToken(t, &Claims{
		EmpID: "E1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}, testSecret)

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"bearer", "Bearer " + valid, "", http.StatusOK},
		{"query fallback", "", "?token=" + valid, http.StatusOK},
		{"expired", "Bearer " + expired, "", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, &Claims{EmpID: "E1"}, "other"), "", http.StatusUnauthorized},
		{"no emp id", "Bearer " + signToken(t, &Claims{}, testSecret), "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestRequireSuperAdmin(t *testing.T) {
	r := newRouter(JWTAuth(testSecret), RequireSuperAdmin())

	for _, tc := range []struct {
		isSA   bool
		status int
	}{{true, http.StatusOK}, {false, http.StatusForbidden}} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, &Claims{EmpID: "E1", IsSA: tc.isSA}, testSecret))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.status, w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
