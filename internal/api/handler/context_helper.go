package handler

import (
	"github.com/gin-gonic/gin"

	"relief-hub/backend/internal/api/middleware"
	"relief-hub/backend/internal/service"
	"relief-hub/backend/pkg/response"
)

// CallerFrom 从 Gin 上下文中取出调用方；匿名访问返回 nil
func CallerFrom(c *gin.Context) *service.Caller {
	v, exists := c.Get(middleware.CallerKey)
	if !exists {
		return nil
	}
	caller, _ := v.(*service.Caller)
	return caller
}

// MustGetCaller 从 Gin 上下文中安全提取已登录的调用方。
// 如果会话中间件未注入调用方，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetCaller(c *gin.Context) (*service.Caller, bool) {
	caller := CallerFrom(c)
	if !caller.Authenticated() {
		response.Unauthorized(c, 10002, "请先登录")
		return nil, false
	}
	return caller, true
}

// MustGetID 提取路径参数 :id
func MustGetID(c *gin.Context, label string) (string, bool) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, label+"ID不能为空")
		return "", false
	}
	return id, true
}
