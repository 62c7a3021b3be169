package dto

// ── 站点模块 DTO ──

// CreateCenterRequest 创建站点请求
type CreateCenterRequest struct {
	Name           string   `json:"name"            binding:"required,min=1,max=200"`
	Location       string   `json:"location"        binding:"omitempty,max=500"`
	District       string   `json:"district"        binding:"required,max=100"`
	Subdistrict    string   `json:"subdistrict"     binding:"omitempty,max=100"`
	PhoneNumbers   []string `json:"phone_numbers"   binding:"omitempty,max=10,dive,min=3,max=20"`
	Capacity       int      `json:"capacity"        binding:"omitempty,min=0"`
	CapacityStatus string   `json:"capacity_status" binding:"omitempty,max=50"`
	Status         string   `json:"status"          binding:"omitempty,oneof=active closed"`
	Type           string   `json:"type"            binding:"required,oneof=DONATION_POINT SHELTER"`
	ContactPerson  string   `json:"contact_person"  binding:"omitempty,max=100"`
	ShelterType    string   `json:"shelter_type"    binding:"omitempty,max=100"`
}

// UpdateCenterRequest 更新站点请求（乐观锁：需携带读取时的 version）
type UpdateCenterRequest struct {
	Name           *string   `json:"name"            binding:"omitempty,min=1,max=200"`
	Location       *string   `json:"location"        binding:"omitempty,max=500"`
	District       *string   `json:"district"        binding:"omitempty,min=1,max=100"`
	Subdistrict    *string   `json:"subdistrict"     binding:"omitempty,max=100"`
	PhoneNumbers   *[]string `json:"phone_numbers"   binding:"omitempty,max=10,dive,min=3,max=20"`
	Capacity       *int      `json:"capacity"        binding:"omitempty,min=0"`
	CapacityStatus *string   `json:"capacity_status" binding:"omitempty,max=50"`
	Status         *string   `json:"status"          binding:"omitempty,oneof=active closed"`
	Type           *string   `json:"type"            binding:"omitempty,oneof=DONATION_POINT SHELTER"`
	ContactPerson  *string   `json:"contact_person"  binding:"omitempty,max=100"`
	ShelterType    *string   `json:"shelter_type"    binding:"omitempty,max=100"`
	Version        int       `json:"version"         binding:"required,min=1"`
}

// CenterListRequest 站点列表查询参数
// All=true 时不分页，一次返回全部匹配站点（下拉框等场景）
type CenterListRequest struct {
	PaginationRequest
	Type     string `form:"type"      binding:"omitempty,oneof=DONATION_POINT SHELTER"`
	Status   string `form:"status"    binding:"omitempty,oneof=active closed"`
	Search   string `form:"search"    binding:"omitempty,max=100"`
	DateFrom string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"date_to"   binding:"omitempty,datetime=2006-01-02"`
	All      bool   `form:"all"`
}

// CenterResponse 站点信息响应
type CenterResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Location       string   `json:"location,omitempty"`
	District       string   `json:"district"`
	Subdistrict    string   `json:"subdistrict,omitempty"`
	PhoneNumbers   []string `json:"phone_numbers"`
	Capacity       int      `json:"capacity"`
	CapacityStatus string   `json:"capacity_status,omitempty"`
	Status         string   `json:"status"`
	Type           string   `json:"type"`
	ContactPerson  *string  `json:"contact_person,omitempty"`
	ShelterType    *string  `json:"shelter_type,omitempty"`
	Version        int      `json:"version"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}
