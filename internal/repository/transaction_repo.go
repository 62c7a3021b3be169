package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"relief-hub/backend/internal/model"
	pkgerrors "relief-hub/backend/pkg/errors"
)

// TransactionFilter 流水列表过滤条件
type TransactionFilter struct {
	Status   string
	Type     string
	From     *time.Time
	To       *time.Time
	Search   string
	CenterID string
	GroupID  string
	Offset   int
	Limit    int
}

// TransactionRepository 出入库流水数据访问接口（流水不删除）
type TransactionRepository interface {
	BatchCreate(ctx context.Context, txs []model.Transaction) error
	GetByID(ctx context.Context, id string) (*model.Transaction, error)
	List(ctx context.Context, f TransactionFilter) ([]model.Transaction, int64, error)
	Finish(ctx context.Context, t *model.Transaction) error
	RepointItem(ctx context.Context, fromItemID, toItemID string) (int64, error)
}

type transactionRepo struct {
	db *gorm.DB
}

// NewTransactionRepo 创建 TransactionRepository 实例
func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) BatchCreate(ctx context.Context, txs []model.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Omit("Item", "Center").
		CreateInBatches(txs, 100).Error
}

// preloadRefs 关联当前物资与站点（已软删除的站点也需展示名称）
func preloadRefs(db *gorm.DB) *gorm.DB {
	return db.Preload("Item").
		Preload("Center", func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() })
}

func (r *transactionRepo) GetByID(ctx context.Context, id string) (*model.Transaction, error) {
	var t model.Transaction
	err := preloadRefs(r.db.WithContext(ctx)).
		Where("transaction_id = ?", id).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepo) List(ctx context.Context, f TransactionFilter) ([]model.Transaction, int64, error) {
	var txs []model.Transaction
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Transaction{})

	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		db = db.Where("type = ?", f.Type)
	}
	if f.From != nil {
		db = db.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("created_at < ?", *f.To)
	}
	if f.CenterID != "" {
		db = db.Where("center_id = ?", f.CenterID)
	}
	if f.GroupID != "" {
		db = db.Where("group_id = ?", f.GroupID)
	}
	if f.Search != "" {
		kw := "%" + escapeLike(f.Search) + "%"
		db = db.Where("item_name ILIKE ? OR donor_name ILIKE ? OR requester_name ILIKE ?", kw, kw, kw)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit > 0 {
		db = db.Offset(f.Offset).Limit(f.Limit)
	}
	if err := preloadRefs(db).Order("created_at DESC").Find(&txs).Error; err != nil {
		return nil, 0, err
	}

	return txs, total, nil
}

// Finish 终态写入：仅当流水仍为 PENDING 时生效，否则返回 ErrStatusChanged
func (r *transactionRepo) Finish(ctx context.Context, t *model.Transaction) error {
	result := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("transaction_id = ? AND status = ?", t.TransactionID, model.TxStatusPending).
		Updates(map[string]interface{}{
			"status":           t.Status,
			"item_id":          t.ItemID,
			"quantity":         t.Quantity,
			"proof_url":        t.ProofURL,
			"rejection_reason": t.RejectionReason,
			"approver_name":    t.ApproverName,
			"approved_at":      t.ApprovedAt,
			"approved_by":      t.ApprovedBy,
			"updated_by":       t.UpdatedBy,
			"updated_at":       gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStatusChanged
	}
	return nil
}

// RepointItem 将引用 fromItemID 的全部流水改指向 toItemID
func (r *transactionRepo) RepointItem(ctx context.Context, fromItemID, toItemID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("item_id = ?", fromItemID).
		Updates(map[string]interface{}{
			"item_id":    toItemID,
			"updated_at": gorm.Expr("NOW()"),
		})
	return result.RowsAffected, result.Error
}
