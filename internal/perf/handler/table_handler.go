package handler

import (
	"github.com/bitfantasy/perfeval/internal/perf/service"
	"github.com/gin-gonic/gin"
)

// TableHandler 考核表处理器
type TableHandler struct {
	svc *service.TableService
}

func NewTableHandler(svc *service.TableService) *TableHandler {
	return &TableHandler{svc: svc}
}

// TableResponse 评分页面读取的考核表，score_rule 与 description 为 JSON 字符串
type TableResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Period      string `json:"period,omitempty"`
	ScoreRule   string `json:"score_rule"`
	Description string `json:"description"`
}

// List 考核表列表
func (h *TableHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		HandleError(c, err, "获取考核表失败")
		return
	}
	Success(c, items)
}

// Get 考核表详情
func (h *TableHandler) Get(c *gin.Context) {
	id, err := service.ParseTableID(c.Query("table_id"))
	if err != nil {
		HandleError(c, err, "")
		return
	}

	table, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err, "获取考核表失败")
		return
	}
	Success(c, TableResponse{
		ID:          table.ID,
		Name:        table.Name,
		Period:      table.Period,
		ScoreRule:   table.ScoreRule,
		Description: table.Description,
	})
}

// Publish 发布考核表
func (h *TableHandler) Publish(c *gin.Context) {
	var req service.PublishTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	table, err := h.svc.Publish(c.Request.Context(), GetEmpID(c), &req)
	if err != nil {
		HandleError(c, err, "发布考核表失败")
		return
	}
	Success(c, gin.H{"success": true, "id": table.ID})
}
