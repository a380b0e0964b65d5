package handler

import (
	"net/http"

	"github.com/bitfantasy/perfeval/internal/middleware"
	"github.com/bitfantasy/perfeval/internal/perf/service"
	"github.com/bitfantasy/perfeval/internal/scoring"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScoreHandler 评分处理器
type ScoreHandler struct {
	svc    *service.ScoreService
	logger *zap.Logger
}

func NewScoreHandler(svc *service.ScoreService, logger *zap.Logger) *ScoreHandler {
	return &ScoreHandler{svc: svc, logger: logger}
}

// SubmitResponse 评分提交结果
type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty"`
}

// Submit 提交评分
func (h *ScoreHandler) Submit(c *gin.Context) {
	var sub scoring.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, SubmitResponse{Message: "评分数据格式错误"})
		return
	}

	record, err := h.svc.Submit(c.Request.Context(), middleware.GetViewer(c), &sub)
	if err != nil {
		status := statusOf(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			h.logger.Error("保存评分失败", zap.String("emp_id", sub.EmpID), zap.Error(err))
			msg = "保存评分失败"
		}
		c.JSON(status, SubmitResponse{Message: msg})
		return
	}
	c.JSON(http.StatusOK, SubmitResponse{Success: true, ID: record.ID})
}

// History 员工评分历史
func (h *ScoreHandler) History(c *gin.Context) {
	items, err := h.svc.History(c.Request.Context(), c.Param("emp_id"))
	if err != nil {
		HandleError(c, err, "获取评分记录失败")
		return
	}
	Success(c, items)
}
