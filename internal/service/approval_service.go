package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"relief-hub/backend/internal/dto"
	"relief-hub/backend/internal/model"
	"relief-hub/backend/internal/repository"
	pkgerrors "relief-hub/backend/pkg/errors"
)

// ── 审批模块业务错误 ──

var (
	ErrTransactionNotFound     = errors.New("流水不存在")
	ErrTransactionProcessed    = errors.New("该流水已处理，不能重复审批")
	ErrRejectionReasonRequired = errors.New("驳回时必须填写原因")
)

// ApprovalService 审批业务接口
// 审批通过时在同一数据库事务内变更库存并写入终态
type ApprovalService interface {
	Review(ctx context.Context, id string, req *dto.ReviewTransactionRequest, caller *Caller) (*dto.TransactionResponse, error)
}

type approvalService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewApprovalService 创建 ApprovalService 实例
func NewApprovalService(repo *repository.Repository, logger *zap.Logger) ApprovalService {
	return &approvalService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Review ──────────────────────

func (s *approvalService) Review(ctx context.Context, id string, req *dto.ReviewTransactionRequest, caller *Caller) (*dto.TransactionResponse, error) {
	reason := strings.TrimSpace(req.RejectionReason)
	if req.Status == model.TxStatusCancelled && reason == "" {
		return nil, ErrRejectionReasonRequired
	}

	approver := strings.TrimSpace(req.ApproverName)
	if approver == "" {
		approver = caller.Name
	}

	err := s.repo.Tx.RunInTx(ctx, func(tx *repository.Repository) error {
		t, err := tx.Transaction.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}
		if t.IsTerminal() {
			return ErrTransactionProcessed
		}
		if t.Type == model.TxTypeOut && caller.Restricted() &&
			(t.CenterID == nil || *t.CenterID != caller.AuthorizedCenterID) {
			return ErrCenterNotAuthorized
		}

		now := s.now()
		t.Status = req.Status
		t.ApproverName = optionalString(approver)
		t.ApprovedAt = &now
		t.ApprovedBy = caller.userIDPtr()
		t.UpdatedBy = caller.userIDPtr()

		switch req.Status {
		case model.TxStatusCompleted:
			if req.Quantity != nil {
				t.Quantity = *req.Quantity
			}
			if req.ProofURL != "" {
				t.ProofURL = &req.ProofURL
			}
			if err := s.applyStock(ctx, tx, t); err != nil {
				return err
			}
		case model.TxStatusCancelled:
			t.RejectionReason = &reason
		default:
			return fmt.Errorf("%w: status=%s", ErrInvalidSubmission, req.Status)
		}

		// 条件终态写入：并发审批时只有一个能命中 PENDING，其余整体回滚
		if err := tx.Transaction.Finish(ctx, t); err != nil {
			if errors.Is(err, pkgerrors.ErrStatusChanged) {
				return ErrTransactionProcessed
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !isReviewError(err) {
			s.logger.Error("审批流水失败", zap.String("id", id), zap.String("status", req.Status), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("流水已审批",
		zap.String("id", id),
		zap.String("status", req.Status),
		zap.String("approver", approver),
	)

	t, err := s.repo.Transaction.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("查询流水失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toTransactionResponse(t), nil
}

// applyStock 审批通过时的库存变更
// 出库：条件扣减，库存不足时保持 PENDING
// 入库：占位物资与同名正式物资合并，否则提升为通用捐赠分类
func (s *approvalService) applyStock(ctx context.Context, tx *repository.Repository, t *model.Transaction) error {
	item, err := tx.Item.GetByID(ctx, t.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return err
	}

	switch t.Type {
	case model.TxTypeOut:
		if err := tx.Item.Decrement(ctx, item.ItemID, t.Quantity); err != nil {
			if errors.Is(err, pkgerrors.ErrStockShortage) {
				return fmt.Errorf("%w: %s 需要 %d，现有 %d", ErrInsufficientStock, item.Name, t.Quantity, item.Quantity)
			}
			return err
		}
		return nil

	case model.TxTypeIn:
		if !item.IsPlaceholder() {
			return tx.Item.Increment(ctx, item.ItemID, t.Quantity)
		}

		canonical, err := tx.Item.FindCanonicalByName(ctx, item.Name, item.ItemID)
		switch {
		case err == nil:
			target, err := mergePlaceholder(ctx, tx, item.ItemID, canonical, t.Quantity, s.logger)
			if err != nil {
				return err
			}
			t.ItemID = target
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if err := tx.Item.Increment(ctx, item.ItemID, t.Quantity); err != nil {
			return err
		}
		return tx.Item.Promote(ctx, item.ItemID, model.CategoryPending, model.CategoryGeneral)
	}

	return fmt.Errorf("%w: type=%s", ErrInvalidSubmission, t.Type)
}

func isReviewError(err error) bool {
	for _, target := range []error{
		ErrTransactionNotFound, ErrTransactionProcessed, ErrItemNotFound,
		ErrInsufficientStock, ErrCenterNotAuthorized, ErrInvalidSubmission,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
