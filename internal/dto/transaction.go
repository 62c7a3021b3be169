package dto

// ── 出入库流水 DTO ──

// SubmitLine 申报中的一行物资
// 入库可只填 item_name（自由填写），出库必须引用已有 item_id
type SubmitLine struct {
	ItemID   string `json:"item_id"   binding:"omitempty,uuid"`
	ItemName string `json:"item_name" binding:"omitempty,max=200"`
	Unit     string `json:"unit"      binding:"omitempty,max=50"`
	Category string `json:"category"  binding:"omitempty,max=100"`
	Quantity int    `json:"quantity"  binding:"required,min=1,max=1000000"`
}

// SubmitTransactionRequest 批量申报（POST /transactions/bulk）
// 每个站点 × 每行物资生成一条流水，共享同一 group_id
type SubmitTransactionRequest struct {
	Type             string       `json:"type"               binding:"required,oneof=IN OUT"`
	Status           string       `json:"status"             binding:"omitempty,oneof=PENDING COMPLETED"`
	Items            []SubmitLine `json:"items"              binding:"required,min=1,dive"`
	CenterIDs        []string     `json:"center_ids"         binding:"omitempty,dive,uuid"`
	DonorName        string       `json:"donor_name"         binding:"omitempty,max=200"`
	RequesterName    string       `json:"requester_name"     binding:"omitempty,max=200"`
	ContactPhone     string       `json:"contact_phone"      binding:"omitempty"`
	ProofURL         string       `json:"proof_url"          binding:"omitempty,url,max=1000"`
	IsPickupRequired bool         `json:"is_pickup_required"`
	PickupLocation   string       `json:"pickup_location"    binding:"omitempty,max=500"`
}

// CreateTransactionRequest 单条申报（POST /transactions）
type CreateTransactionRequest struct {
	Type             string `json:"type"               binding:"required,oneof=IN OUT"`
	Status           string `json:"status"             binding:"omitempty,oneof=PENDING COMPLETED"`
	ItemID           string `json:"item_id"            binding:"omitempty,uuid"`
	ItemName         string `json:"item_name"          binding:"omitempty,max=200"`
	Unit             string `json:"unit"               binding:"omitempty,max=50"`
	Category         string `json:"category"           binding:"omitempty,max=100"`
	Quantity         int    `json:"quantity"           binding:"required,min=1,max=1000000"`
	CenterID         string `json:"center_id"          binding:"omitempty,uuid"`
	DonorName        string `json:"donor_name"         binding:"omitempty,max=200"`
	RequesterName    string `json:"requester_name"     binding:"omitempty,max=200"`
	ContactPhone     string `json:"contact_phone"      binding:"omitempty"`
	ProofURL         string `json:"proof_url"          binding:"omitempty,url,max=1000"`
	IsPickupRequired bool   `json:"is_pickup_required"`
	PickupLocation   string `json:"pickup_location"    binding:"omitempty,max=500"`
}

// ToSubmit 转换为单行、至多一个站点的批量申报
func (r *CreateTransactionRequest) ToSubmit() *SubmitTransactionRequest {
	req := &SubmitTransactionRequest{
		Type:   r.Type,
		Status: r.Status,
		Items: []SubmitLine{{
			ItemID:   r.ItemID,
			ItemName: r.ItemName,
			Unit:     r.Unit,
			Category: r.Category,
			Quantity: r.Quantity,
		}},
		DonorName:        r.DonorName,
		RequesterName:    r.RequesterName,
		ContactPhone:     r.ContactPhone,
		ProofURL:         r.ProofURL,
		IsPickupRequired: r.IsPickupRequired,
		PickupLocation:   r.PickupLocation,
	}
	if r.CenterID != "" {
		req.CenterIDs = []string{r.CenterID}
	}
	return req
}

// SubmitResult 申报结果
type SubmitResult struct {
	Count          int      `json:"count"`
	GroupID        *string  `json:"group_id,omitempty"`
	TransactionIDs []string `json:"transaction_ids"`
}

// ReviewTransactionRequest 审批请求（PUT /transactions/:id）
// COMPLETED 时可用 quantity 覆盖实收 / 实发数量；CANCELLED 时必须填写 rejection_reason
type ReviewTransactionRequest struct {
	Status          string `json:"status"           binding:"required,oneof=COMPLETED CANCELLED"`
	RejectionReason string `json:"rejection_reason" binding:"omitempty,max=500"`
	ApproverName    string `json:"approver_name"    binding:"omitempty,max=200"`
	Quantity        *int   `json:"quantity"         binding:"omitempty,min=1,max=1000000"`
	ProofURL        string `json:"proof_url"        binding:"omitempty,url,max=1000"`
}

// TransactionListRequest 流水列表查询参数
type TransactionListRequest struct {
	PaginationRequest
	Status   string `form:"status"    binding:"omitempty,oneof=PENDING COMPLETED CANCELLED"`
	Type     string `form:"type"      binding:"omitempty,oneof=IN OUT"`
	Month    int    `form:"month"     binding:"omitempty,min=1,max=12"`
	Year     int    `form:"year"      binding:"omitempty,min=2000,max=2100"`
	Search   string `form:"search"    binding:"omitempty,max=100"`
	CenterID string `form:"center_id" binding:"omitempty,uuid"`
	GroupID  string `form:"group_id"  binding:"omitempty,max=64"`
}

// TransactionResponse 流水响应
// 物资仍存在时展示当前名称，否则回退到申报时的快照
type TransactionResponse struct {
	ID               string  `json:"id"`
	Type             string  `json:"type"`
	ItemID           string  `json:"item_id"`
	ItemName         string  `json:"item_name"`
	ItemUnit         string  `json:"item_unit"`
	ItemCategory     string  `json:"item_category"`
	ItemDeleted      bool    `json:"item_deleted"`
	CenterID         *string `json:"center_id"`
	CenterName       string  `json:"center_name,omitempty"`
	Quantity         int     `json:"quantity"`
	DonorName        *string `json:"donor_name,omitempty"`
	RequesterName    *string `json:"requester_name,omitempty"`
	Status           string  `json:"status"`
	ProofURL         *string `json:"proof_url,omitempty"`
	RejectionReason  *string `json:"rejection_reason,omitempty"`
	ContactPhone     *string `json:"contact_phone,omitempty"`
	IsPickupRequired bool    `json:"is_pickup_required"`
	PickupLocation   *string `json:"pickup_location,omitempty"`
	ApproverName     *string `json:"approver_name,omitempty"`
	ApprovedAt       string  `json:"approved_at,omitempty"`
	GroupID          *string `json:"group_id,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

// UploadProofResponse 凭证上传响应
type UploadProofResponse struct {
	URL string `json:"url"`
}
