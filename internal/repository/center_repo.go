package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"relief-hub/backend/internal/model"
	pkgerrors "relief-hub/backend/pkg/errors"
)

// CenterFilter 站点列表过滤条件
// Limit <= 0 表示不分页
type CenterFilter struct {
	Type     string
	Status   string
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	Offset   int
	Limit    int
}

// CenterRepository 站点数据访问接口
type CenterRepository interface {
	Create(ctx context.Context, center *model.Center) error
	GetByID(ctx context.Context, id string) (*model.Center, error)
	List(ctx context.Context, f CenterFilter) ([]model.Center, int64, error)
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
	Update(ctx context.Context, center *model.Center) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type centerRepo struct {
	db *gorm.DB
}

// NewCenterRepo 创建 CenterRepository 实例
func NewCenterRepo(db *gorm.DB) CenterRepository {
	return &centerRepo{db: db}
}

func (r *centerRepo) Create(ctx context.Context, center *model.Center) error {
	return r.db.WithContext(ctx).Create(center).Error
}

func (r *centerRepo) GetByID(ctx context.Context, id string) (*model.Center, error) {
	var center model.Center
	err := r.db.WithContext(ctx).
		Where("center_id = ?", id).
		First(&center).Error
	if err != nil {
		return nil, err
	}
	return &center, nil
}

func (r *centerRepo) List(ctx context.Context, f CenterFilter) ([]model.Center, int64, error) {
	var centers []model.Center
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Center{})

	if f.Type != "" {
		db = db.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		kw := "%" + escapeLike(f.Search) + "%"
		db = db.Where("name ILIKE ? OR district ILIKE ? OR subdistrict ILIKE ?", kw, kw, kw)
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
	if err := db.Order("name ASC").Find(&centers).Error; err != nil {
		return nil, 0, err
	}

	return centers, total, nil
}

// ExistingIDs 返回 ids 中真实存在（未删除）的站点 ID
func (r *centerRepo) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []string
	err := r.db.WithContext(ctx).
		Model(&model.Center{}).
		Where("center_id IN ?", ids).
		Pluck("center_id", &found).Error
	return found, err
}

// Update 乐观锁更新：version 不匹配时返回 ErrOptimisticLock
func (r *centerRepo) Update(ctx context.Context, center *model.Center) error {
	oldVersion := center.Version
	result := r.db.WithContext(ctx).
		Model(&model.Center{}).
		Where("center_id = ? AND version = ?", center.CenterID, oldVersion).
		Updates(map[string]interface{}{
			"name":            center.Name,
			"location":        center.Location,
			"district":        center.District,
			"subdistrict":     center.Subdistrict,
			"phone_numbers":   center.PhoneNumbers,
			"capacity":        center.Capacity,
			"capacity_status": center.CapacityStatus,
			"status":          center.Status,
			"type":            center.Type,
			"contact_person":  center.ContactPerson,
			"shelter_type":    center.ShelterType,
			"updated_by":      center.UpdatedBy,
			"updated_at":      gorm.Expr("NOW()"),
			"version":         oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	center.Version = oldVersion + 1
	return nil
}

// Delete 软删除，历史流水仍可引用该站点
func (r *centerRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Center{}).
		Where("center_id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
