package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/bitfantasy/perfeval/internal/middleware"
	"github.com/bitfantasy/perfeval/internal/scoring"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const JWTSecret = "perfeval-test-secret"

// SetupMockDB 基于 sqlmock 的 gorm 连接，测试结束时校验期望
func SetupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("Failed to open gorm on sqlmock: %v", err)
	}

	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sql expectations: %v", err)
		}
		sqlDB.Close()
	})
	return db, mock
}

// SetupRedis 基于 miniredis 的 Redis 客户端
func SetupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates a route group with JWT auth middleware for testing
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid JWT token for the viewer
func GenerateTestToken(viewer scoring.Viewer) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      viewer.EmpID,
		"emp_id":   viewer.EmpID,
		"emp_name": "Test " + viewer.EmpID,
		"isSA":     viewer.IsSA,
		"isRJ":     viewer.IsRJ,
		"isPJ":     viewer.IsPJ,
		"iss":      "perfeval",
		"iat":      now.Unix(),
		"exp":      now.Add(time.Hour).Unix(),
		"jti":      fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// AdminToken returns a token for a super-admin test user
func AdminToken() string {
	return GenerateTestToken(scoring.Viewer{EmpID: "SA001", IsSA: true})
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// EmployeeColumns users 表列，供 sqlmock 构造结果行
var EmployeeColumns = []string{
	"emp_id", "emp_name", "position", "department", "is_sa", "is_rj", "is_pj",
	"immediate_leader", "direct_judge_id", "top_leader", "product_group", "is_manage", "department_id",
}

// EmployeeRow 一行员工数据
func EmployeeRow(rows *sqlmock.Rows, empID, name, leader, judge string, viewer scoring.Viewer) *sqlmock.Rows {
	return rows.AddRow(empID, name, "工程师", "研发部", viewer.IsSA, viewer.IsRJ, viewer.IsPJ,
		leader, judge, "", "", false, nil)
}
