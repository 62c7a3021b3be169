package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"relief-hub/backend/internal/model"
	"relief-hub/backend/internal/repository"
)

// mergePlaceholder 占位物资并入同名正式物资
// 占位物资删除时的库存与本次入库数量 extra 一并计入正式物资，引用占位物资的流水改指向正式物资。
// 返回实际承接入库的物资 ID。
// 占位物资已被并发事务合并时只计入 extra；已被提升为正式物资时 extra 计入它本身。
func mergePlaceholder(ctx context.Context, tx *repository.Repository, placeholderID string, canonical *model.Item, extra int, logger *zap.Logger) (string, error) {
	held, err := tx.Item.TakePlaceholder(ctx, placeholderID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		if _, err := tx.Item.GetByID(ctx, placeholderID); err == nil {
			if err := tx.Item.Increment(ctx, placeholderID, extra); err != nil {
				return "", err
			}
			return placeholderID, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		held = 0
	}

	if err := tx.Item.Increment(ctx, canonical.ItemID, held+extra); err != nil {
		return "", err
	}
	moved, err := tx.Transaction.RepointItem(ctx, placeholderID, canonical.ItemID)
	if err != nil {
		return "", err
	}

	logger.Info("占位物资已合并",
		zap.String("placeholder_id", placeholderID),
		zap.String("item_id", canonical.ItemID),
		zap.String("name", canonical.Name),
		zap.Int("carried", held),
		zap.Int64("repointed", moved),
	)
	return canonical.ItemID, nil
}
