package handler

import (
	"errors"

	"github.com/bitfantasy/perfeval/internal/perf/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login 登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, service.ErrInvalidInput.Error())
		return
	}

	result, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		HandleError(c, err, "登录失败")
		return
	}
	Success(c, result)
}

// ChangePassword 修改密码
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req service.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, service.ErrInvalidInput.Error())
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), &req); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			Unauthorized(c, "用户名或旧密码错误")
			return
		}
		HandleError(c, err, "修改密码失败")
		return
	}
	Success(c, gin.H{"message": "密码修改成功"})
}

// Me 当前登录用户
func (h *AuthHandler) Me(c *gin.Context) {
	emp, err := h.svc.Me(c.Request.Context(), GetEmpID(c))
	if err != nil {
		HandleError(c, err, "获取用户信息失败")
		return
	}
	Success(c, gin.H{"userinfo": emp})
}
