package model

import (
	"time"

	"gorm.io/gorm"
)

// 流水方向
const (
	TxTypeIn  = "IN"  // 捐赠入库
	TxTypeOut = "OUT" // 申领出库
)

// 流水状态：PENDING → COMPLETED | CANCELLED，终态不可再变
const (
	TxStatusPending   = "PENDING"
	TxStatusCompleted = "COMPLETED"
	TxStatusCancelled = "CANCELLED"
)

// Transaction 出入库流水，对应 transactions
// ItemName / ItemUnit / ItemCategory 为申报时的物资快照，物资删除后仍可追溯
type Transaction struct {
	TransactionID    string     `gorm:"type:uuid;primaryKey"        json:"id"`
	Type             string     `gorm:"type:varchar(10);not null"   json:"type"`
	ItemID           string     `gorm:"type:uuid;not null"          json:"item_id"`
	CenterID         *string    `gorm:"type:uuid"                   json:"center_id"`
	Quantity         int        `gorm:"not null"                    json:"quantity"`
	ItemName         string     `gorm:"type:varchar(200);not null"  json:"item_name"`
	ItemUnit         string     `gorm:"type:varchar(50);not null"   json:"item_unit"`
	ItemCategory     string     `gorm:"type:varchar(100);not null"  json:"item_category"`
	DonorName        *string    `gorm:"type:varchar(200)"           json:"donor_name,omitempty"`
	RequesterName    *string    `gorm:"type:varchar(200)"           json:"requester_name,omitempty"`
	Status           string     `gorm:"type:varchar(20);not null"   json:"status"`
	ProofURL         *string    `gorm:"type:varchar(1000)"          json:"proof_url,omitempty"`
	RejectionReason  *string    `gorm:"type:varchar(500)"           json:"rejection_reason,omitempty"`
	ContactPhone     *string    `gorm:"type:varchar(20)"            json:"contact_phone,omitempty"`
	IsPickupRequired bool       `gorm:"not null;default:false"      json:"is_pickup_required"`
	PickupLocation   *string    `gorm:"type:varchar(500)"           json:"pickup_location,omitempty"`
	ApproverName     *string    `gorm:"type:varchar(200)"           json:"approver_name,omitempty"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	ApprovedBy       *string    `gorm:"type:uuid"                   json:"approved_by,omitempty"`
	GroupID          *string    `gorm:"type:varchar(64)"            json:"group_id,omitempty"`
	BaseModel

	// 关联（只读，物资可能已被删除）
	Item   *Item   `gorm:"foreignKey:ItemID;references:ItemID"     json:"-"`
	Center *Center `gorm:"foreignKey:CenterID;references:CenterID" json:"-"`
}

// TableName 指定表名
func (Transaction) TableName() string { return "transactions" }

// BeforeCreate 生成主键
func (t *Transaction) BeforeCreate(*gorm.DB) error {
	newID(&t.TransactionID)
	return nil
}

// IsTerminal 是否已处于终态
func (t *Transaction) IsTerminal() bool {
	return t.Status == TxStatusCompleted || t.Status == TxStatusCancelled
}
