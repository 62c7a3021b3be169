package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"relief-hub/backend/internal/model"
	pkgerrors "relief-hub/backend/pkg/errors"
)

// ItemFilter 物资列表过滤条件
type ItemFilter struct {
	Category string
	Search   string
	InStock  bool
	DateFrom *time.Time
	DateTo   *time.Time // 不含当天之后，调用方传入次日零点
	Offset   int
	Limit    int
}

// ItemRepository 物资目录数据访问接口
type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	GetByID(ctx context.Context, id string) (*model.Item, error)
	FindByName(ctx context.Context, name string) (*model.Item, error)
	FindCanonicalByName(ctx context.Context, name, excludeID string) (*model.Item, error)
	List(ctx context.Context, f ItemFilter) ([]model.Item, int64, error)
	UpdateCatalog(ctx context.Context, item *model.Item) error
	Delete(ctx context.Context, id string) error
	// TakePlaceholder 删除仍为占位分类的物资并返回其删除时的库存
	// 已不存在或已被提升时返回 gorm.ErrRecordNotFound
	TakePlaceholder(ctx context.Context, id string) (int, error)

	// 库存变更：只允许条件更新，不做读后写
	Increment(ctx context.Context, id string, n int) error
	Decrement(ctx context.Context, id string, n int) error
	Promote(ctx context.Context, id, from, to string) error

	// CenterStock 站点派生库存：该站点 COMPLETED 入库 − COMPLETED 出库
	CenterStock(ctx context.Context, centerID string, itemIDs []string) (map[string]int64, error)
}

type itemRepo struct {
	db *gorm.DB
}

// NewItemRepo 创建 ItemRepository 实例
func NewItemRepo(db *gorm.DB) ItemRepository {
	return &itemRepo{db: db}
}

func (r *itemRepo) Create(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepo) GetByID(ctx context.Context, id string) (*model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).
		Where("item_id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByName 按名称精确匹配，同名多条时取最早创建的一条
func (r *itemRepo) FindByName(ctx context.Context, name string) (*model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Order("created_at ASC").
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindCanonicalByName 查找同名的非占位物资（用于合并占位物资）
func (r *itemRepo) FindCanonicalByName(ctx context.Context, name, excludeID string) (*model.Item, error) {
	var item model.Item
	q := r.db.WithContext(ctx).
		Where("name = ? AND category <> ?", name, model.CategoryPending)
	if excludeID != "" {
		q = q.Where("item_id <> ?", excludeID)
	}
	err := q.Order("created_at ASC").First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) List(ctx context.Context, f ItemFilter) ([]model.Item, int64, error) {
	var items []model.Item
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Item{})

	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}
	if f.Search != "" {
		db = db.Where("name ILIKE ?", "%"+escapeLike(f.Search)+"%")
	}
	if f.InStock {
		db = db.Where("quantity > 0")
	}
	if f.DateFrom != nil {
		db = db.Where("created_at >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		db = db.Where("created_at < ?", *f.DateTo)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit > 0 {
		db = db.Offset(f.Offset).Limit(f.Limit)
	}
	if err := db.Order("updated_at DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// UpdateCatalog 只更新目录字段，库存不经由此方法修改
func (r *itemRepo) UpdateCatalog(ctx context.Context, item *model.Item) error {
	result := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("item_id = ?", item.ItemID).
		Updates(map[string]interface{}{
			"name":       item.Name,
			"category":   item.Category,
			"unit":       item.Unit,
			"updated_by": item.UpdatedBy,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 物理删除；历史流水通过快照字段保留物资信息
func (r *itemRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("item_id = ?", id).
		Delete(&model.Item{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *itemRepo) TakePlaceholder(ctx context.Context, id string) (int, error) {
	var item model.Item
	result := r.db.WithContext(ctx).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "quantity"}}}).
		Where("item_id = ? AND category = ?", id, model.CategoryPending).
		Delete(&item)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return item.Quantity, nil
}

func (r *itemRepo) Increment(ctx context.Context, id string, n int) error {
	result := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("item_id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", n),
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Decrement 条件扣减：库存不足或物资不存在时不修改任何行，返回 ErrStockShortage
func (r *itemRepo) Decrement(ctx context.Context, id string, n int) error {
	result := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("item_id = ? AND quantity >= ?", id, n).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", n),
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStockShortage
	}
	return nil
}

// Promote 仅当分类仍为 from 时改为 to
func (r *itemRepo) Promote(ctx context.Context, id, from, to string) error {
	return r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("item_id = ? AND category = ?", id, from).
		Updates(map[string]interface{}{
			"category":   to,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

type centerStockRow struct {
	ItemID   string
	Quantity int64
}

func (r *itemRepo) CenterStock(ctx context.Context, centerID string, itemIDs []string) (map[string]int64, error) {
	q := sq.Select(
		"item_id",
		"COALESCE(SUM(CASE WHEN type = 'IN' THEN quantity ELSE -quantity END), 0) AS quantity",
	).
		From(model.Transaction{}.TableName()).
		Where(sq.Eq{
			"center_id": centerID,
			"status":    model.TxStatusCompleted,
		}).
		GroupBy("item_id")

	if len(itemIDs) > 0 {
		q = q.Where(sq.Eq{"item_id": itemIDs})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []centerStockRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.ItemID] = row.Quantity
	}
	return out, nil
}
