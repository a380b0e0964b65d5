package handler

import (
	"net/url"
	"strconv"

	"github.com/bitfantasy/perfeval/internal/perf/service"
	"github.com/gin-gonic/gin"
)

// PerformanceHandler 绩效查询处理器
type PerformanceHandler struct {
	svc *service.PerformanceService
}

func NewPerformanceHandler(svc *service.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{svc: svc}
}

// Search 按条件查询
func (h *PerformanceHandler) Search(c *gin.Context) {
	var req service.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, service.ErrInvalidInput.Error())
		return
	}

	rows, err := h.svc.Search(c.Request.Context(), &req)
	if err != nil {
		HandleError(c, err, "查询失败")
		return
	}
	Success(c, rows)
}

// Page 分页查询，总数通过 X-Total-Count 返回
func (h *PerformanceHandler) Page(c *gin.Context) {
	rows, total, err := h.svc.Page(c.Request.Context(), GetPage(c))
	if err != nil {
		HandleError(c, err, "查询失败")
		return
	}
	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	Success(c, rows)
}

// Export 导出xlsx
func (h *PerformanceHandler) Export(c *gin.Context) {
	f, filename, err := h.svc.Export(c.Request.Context())
	if err != nil {
		HandleError(c, err, "导出失败")
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	if err := f.Write(c.Writer); err != nil {
		c.Error(err)
	}
}
