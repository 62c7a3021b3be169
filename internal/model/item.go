package model

import "gorm.io/gorm"

// 物资分类
const (
	CategoryFoodWater = "อาหารและน้ำดื่ม"
	CategoryMedicine  = "ยาและเวชภัณฑ์"
	CategoryClothing  = "เครื่องนุ่งห่ม"
	CategoryHousehold = "ของใช้ทั่วไป"
	CategoryBedding   = "อุปกรณ์การนอน"

	// CategoryGeneral 通用捐赠物资，占位物资审批入库后归入此类
	CategoryGeneral = "ของบริจาคทั่วไป"
	// CategoryPending 待核实占位分类，由公众自由填写的捐赠自动创建
	CategoryPending = "รอตรวจสอบ"

	DefaultUnit = "ชิ้น"
)

// Categories 可在目录中直接选择的分类
var Categories = []string{
	CategoryFoodWater,
	CategoryMedicine,
	CategoryClothing,
	CategoryHousehold,
	CategoryBedding,
	CategoryGeneral,
}

// IsValidCategory 判断分类是否合法（含待核实占位分类）
func IsValidCategory(c string) bool {
	return c == CategoryPending || IsCatalogCategory(c)
}

// IsCatalogCategory 目录维护时可选的分类；占位分类只由申报自动产生
func IsCatalogCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Item 物资目录，对应 items
// Quantity 为全局库存，只由审批 / 即时入出库的条件更新修改
type Item struct {
	ItemID   string `gorm:"type:uuid;primaryKey"       json:"id"`
	Name     string `gorm:"type:varchar(200);not null" json:"name"`
	Quantity int    `gorm:"not null;default:0"         json:"quantity"`
	Unit     string `gorm:"type:varchar(50);not null"  json:"unit"`
	Category string `gorm:"type:varchar(100);not null" json:"category"`
	BaseModel
}

// TableName 指定表名
func (Item) TableName() string { return "items" }

// BeforeCreate 生成主键
func (i *Item) BeforeCreate(*gorm.DB) error {
	newID(&i.ItemID)
	return nil
}

// IsPlaceholder 是否为待核实占位物资
func (i *Item) IsPlaceholder() bool {
	return i.Category == CategoryPending
}
