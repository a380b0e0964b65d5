package handler

import (
	"github.com/bitfantasy/perfeval/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册绩效接口。路径沿用评分页面使用的地址
func RegisterRoutes(r *gin.Engine, h *Handlers, jwtSecret string) {
	r.POST("/api/login", h.Auth.Login)
	r.POST("/api/change_password", h.Auth.ChangePassword)

	authorized := r.Group("")
	authorized.Use(middleware.JWTAuth(jwtSecret))
	{
		authorized.GET("/api/me", h.Auth.Me)

		authorized.GET("/get_employee_info", h.Employee.GetEmployeeInfo)
		authorized.POST("/staffChecked", h.Employee.StaffChecked)
		authorized.GET("/showalldepartment", h.Employee.ShowAllDepartment)

		authorized.GET("/showtablelist", h.Table.List)
		authorized.GET("/get_evaluation_table", h.Table.Get)

		authorized.POST("/submit_score", h.Score.Submit)

		authorized.POST("/api/search-performance", h.Performance.Search)
		authorized.GET("/api/performance-data", h.Performance.Page)

		admin := authorized.Group("")
		admin.Use(middleware.RequireSuperAdmin())
		{
			admin.POST("/api/submit_evaluation", h.Table.Publish)
			admin.POST("/api/submit-evaluation", h.Table.Publish)
			admin.POST("/api/import-employees", h.Employee.Import)
			admin.GET("/api/performance-export", h.Performance.Export)
			admin.GET("/api/scores/:emp_id", h.Score.History)
		}
	}
}
