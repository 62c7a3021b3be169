package model

import "gorm.io/gorm"

// 站点类型
const (
	CenterTypeDonationPoint = "DONATION_POINT"
	CenterTypeShelter       = "SHELTER"
)

// 站点状态
const (
	CenterStatusActive = "active"
	CenterStatusClosed = "closed"
)

// Center 捐赠点 / 避难所，对应 centers
type Center struct {
	CenterID       string     `gorm:"type:uuid;primaryKey"               json:"id"`
	Name           string     `gorm:"type:varchar(200);not null"         json:"name"`
	Location       string     `gorm:"type:varchar(500)"                  json:"location,omitempty"`
	District       string     `gorm:"type:varchar(100);not null"         json:"district"`
	Subdistrict    string     `gorm:"type:varchar(100)"                  json:"subdistrict,omitempty"`
	PhoneNumbers   StringList `gorm:"type:jsonb;not null;default:'[]'"   json:"phone_numbers"`
	Capacity       int        `gorm:"not null;default:0"                 json:"capacity"`
	CapacityStatus string     `gorm:"type:varchar(50)"                   json:"capacity_status,omitempty"`
	Status         string     `gorm:"type:varchar(20);not null"          json:"status"`
	Type           string     `gorm:"type:varchar(20);not null"          json:"type"`
	ContactPerson  *string    `gorm:"type:varchar(100)"                  json:"contact_person,omitempty"`
	ShelterType    *string    `gorm:"type:varchar(100)"                  json:"shelter_type,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (Center) TableName() string { return "centers" }

// BeforeCreate 生成主键
func (c *Center) BeforeCreate(*gorm.DB) error {
	newID(&c.CenterID)
	return nil
}
