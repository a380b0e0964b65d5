package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/bitfantasy/perfeval/internal/middleware"
	"github.com/bitfantasy/perfeval/internal/perf/service"
	"github.com/gin-gonic/gin"
)

// maxImportSize 花名册文件大小上限
const maxImportSize = 10 << 20

// EmployeeHandler 员工处理器
type EmployeeHandler struct {
	svc *service.EmployeeService
}

func NewEmployeeHandler(svc *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

// GetEmployeeInfo 员工信息
func (h *EmployeeHandler) GetEmployeeInfo(c *gin.Context) {
	empID := strings.TrimSpace(c.Query("emp_id"))
	if empID == "" {
		BadRequest(c, "缺少 emp_id")
		return
	}

	emp, err := h.svc.Get(c.Request.Context(), empID)
	if err != nil {
		HandleError(c, err, "获取员工信息失败")
		return
	}
	Success(c, emp)
}

type staffCheckedRequest struct {
	UserInfo *struct {
		EmpID string `json:"emp_id"`
	} `json:"userinfo"`
}

// StaffChecked 当前评分人可评分的员工
func (h *EmployeeHandler) StaffChecked(c *gin.Context) {
	var req staffCheckedRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, service.ErrInvalidInput.Error())
			return
		}
	}

	viewer := middleware.GetViewer(c)
	if req.UserInfo != nil && req.UserInfo.EmpID != "" && req.UserInfo.EmpID != viewer.EmpID && !viewer.IsSA {
		Forbidden(c, "无权查看其他评分人的员工列表")
		return
	}

	items, err := h.svc.StaffChecked(c.Request.Context(), viewer)
	if err != nil {
		HandleError(c, err, "获取员工列表失败")
		return
	}
	Success(c, items)
}

// ShowAllDepartment 部门列表
func (h *EmployeeHandler) ShowAllDepartment(c *gin.Context) {
	items, err := h.svc.Departments(c.Request.Context())
	if err != nil {
		HandleError(c, err, "获取部门列表失败")
		return
	}
	Success(c, gin.H{"data": items})
}

// Import 导入花名册
func (h *EmployeeHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "请上传文件")
		return
	}
	defer file.Close()

	result, err := h.svc.Import(c.Request.Context(), filepath.Base(header.Filename), file)
	if err != nil {
		HandleError(c, err, "导入失败")
		return
	}
	Success(c, result)
}
