package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bitfantasy/perfeval/internal/perf/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers 绩效处理器集合
type Handlers struct {
	Auth        *AuthHandler
	Employee    *EmployeeHandler
	Table       *TableHandler
	Score       *ScoreHandler
	Performance *PerformanceHandler
}

// NewHandlers 创建绩效处理器集合
func NewHandlers(svc *service.Services, logger *zap.Logger) *Handlers {
	return &Handlers{
		Auth:        NewAuthHandler(svc.Auth),
		Employee:    NewEmployeeHandler(svc.Employee),
		Table:       NewTableHandler(svc.Table),
		Score:       NewScoreHandler(svc.Score, logger),
		Performance: NewPerformanceHandler(svc.Performance),
	}
}

// === 响应辅助函数 ===
// 评分页面直接读取返回的 JSON，成功时不加外层包装，失败时返回 {"error": "..."}

type ErrorResponse struct {
	Error string `json:"error"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// statusOf 服务层错误对应的 HTTP 状态码
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrScoreOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrEmployeeNotFound),
		errors.Is(err, service.ErrTableNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// HandleError 按错误类型返回，未知错误不暴露细节
func HandleError(c *gin.Context, err error, fallback string) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		c.Error(err)
		InternalError(c, fallback)
		return
	}
	Error(c, status, err.Error())
}

func GetEmpID(c *gin.Context) string {
	return c.GetString("emp_id")
}

func GetPage(c *gin.Context) int {
	page := 1
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	return page
}
