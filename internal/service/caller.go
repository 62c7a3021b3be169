package service

import "relief-hub/backend/internal/model"

// Caller 当前请求的调用方（来自会话）；匿名访问时为 nil
type Caller struct {
	UserID             string
	Name               string
	Role               string
	AuthorizedCenterID string // 为空表示不限制站点
}

// Authenticated 是否为已登录账号
func (c *Caller) Authenticated() bool {
	return c != nil && c.UserID != ""
}

// IsAdmin 是否为管理员
func (c *Caller) IsAdmin() bool {
	return c.Authenticated() && c.Role == model.RoleAdmin
}

// Restricted 是否被限制为只能为单一站点申领
func (c *Caller) Restricted() bool {
	return c.Authenticated() && c.AuthorizedCenterID != ""
}

func (c *Caller) userIDPtr() *string {
	if !c.Authenticated() {
		return nil
	}
	id := c.UserID
	return &id
}
