package dto

// ── 物资目录 DTO ──

// CreateItemRequest 直接创建目录物资
type CreateItemRequest struct {
	Name     string `json:"name"     binding:"required,min=1,max=200"`
	Category string `json:"category" binding:"required,max=100"`
	Unit     string `json:"unit"     binding:"omitempty,max=50"`
}

// UpdateItemRequest 编辑目录物资（只允许修改名称 / 分类 / 单位，库存不可直接修改）
type UpdateItemRequest struct {
	Name     *string `json:"name"     binding:"omitempty,min=1,max=200"`
	Category *string `json:"category" binding:"omitempty,max=100"`
	Unit     *string `json:"unit"     binding:"omitempty,min=1,max=50"`
}

// ItemListRequest 物资列表查询参数
// CenterID 非空时额外返回该站点的派生库存
type ItemListRequest struct {
	PaginationRequest
	Category string `form:"category"`
	Search   string `form:"search"    binding:"omitempty,max=100"`
	InStock  bool   `form:"in_stock"`
	DateFrom string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"date_to"   binding:"omitempty,datetime=2006-01-02"`
	CenterID string `form:"center_id" binding:"omitempty,uuid"`
}

// ItemResponse 物资信息响应
type ItemResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	Unit           string `json:"unit"`
	Category       string `json:"category"`
	CenterQuantity *int64 `json:"center_quantity,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}
