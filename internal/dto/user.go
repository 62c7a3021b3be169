package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=admin staff"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// CreateUserRequest 创建账号请求
type CreateUserRequest struct {
	Username           string  `json:"username"             binding:"required,min=3,max=50"`
	Password           string  `json:"password"             binding:"required,min=8,max=72"`
	Name               string  `json:"name"                 binding:"omitempty,max=100"`
	Role               string  `json:"role"                 binding:"omitempty,oneof=admin staff"`
	AuthorizedCenterID *string `json:"authorized_center_id" binding:"omitempty,uuid"`
}

// UpdateUserRequest 更新账号请求
// AuthorizedCenterID 传空字符串表示取消站点限制
type UpdateUserRequest struct {
	Password           *string `json:"password"             binding:"omitempty,min=8,max=72"`
	Name               *string `json:"name"                 binding:"omitempty,min=1,max=100"`
	Role               *string `json:"role"                 binding:"omitempty,oneof=admin staff"`
	AuthorizedCenterID *string `json:"authorized_center_id" binding:"omitempty"`
}

// ResetPasswordResponse 重置密码响应
type ResetPasswordResponse struct {
	TempPassword string `json:"temp_password"`
}

// ImportUserResponse 批量导入账号响应
// 未在表格中填写密码的账号会生成临时密码，仅在本次响应中返回
type ImportUserResponse struct {
	Total       int                `json:"total"`
	Success     int                `json:"success"`
	Failed      int                `json:"failed"`
	Errors      []ImportUserError  `json:"errors,omitempty"`
	Credentials []ImportCredential `json:"credentials,omitempty"`
}

// ImportCredential 导入账号的临时密码
type ImportCredential struct {
	Row          int    `json:"row"`
	Username     string `json:"username"`
	TempPassword string `json:"temp_password"`
}

// ImportUserError 导入错误详情
type ImportUserError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
