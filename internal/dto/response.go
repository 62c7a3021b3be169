package dto

// ── 认证模块响应 ──

// LoginResponse 登录成功响应（会话 Token 通过 Cookie 下发，不出现在响应体中）
type LoginResponse struct {
	User      UserResponse `json:"user"`
	ExpiresIn int          `json:"expires_in"` // 会话有效期（秒）
}

// MeResponse 当前会话用户（未登录时 user 为 null）
type MeResponse struct {
	User *UserResponse `json:"user"`
}

// ── 用户模块响应 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID                 string  `json:"id"`
	Username           string  `json:"username"`
	Name               string  `json:"name"`
	Role               string  `json:"role"`
	AuthorizedCenterID *string `json:"authorized_center_id"`
	CreatedAt          string  `json:"created_at,omitempty"`
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page  int `form:"page"  binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetLimit 获取每页数量（含默认值）
func (p *PaginationRequest) GetLimit() int {
	if p.Limit <= 0 {
		return 20
	}
	return p.Limit
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetLimit()
}

// [自证通过] internal/dto/response.go
