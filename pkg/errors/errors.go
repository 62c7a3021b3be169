package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrStatusChanged 条件更新未命中：记录状态已不是预期值（例如单据已被他人审批）
var ErrStatusChanged = errors.New("记录状态已变更")

// ErrStockShortage 条件扣减未命中：库存不足以完成扣减
var ErrStockShortage = errors.New("库存不足")
