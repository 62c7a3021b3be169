package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"relief-hub/backend/internal/dto"
	"relief-hub/backend/internal/model"
	"relief-hub/backend/internal/repository"
)

// TransactionService 流水查询接口
type TransactionService interface {
	List(ctx context.Context, req *dto.TransactionListRequest) ([]dto.TransactionResponse, int64, error)
	GetByID(ctx context.Context, id string) (*dto.TransactionResponse, error)
}

type transactionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTransactionService 创建 TransactionService 实例
func NewTransactionService(repo *repository.Repository, logger *zap.Logger) TransactionService {
	return &transactionService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *transactionService) List(ctx context.Context, req *dto.TransactionListRequest) ([]dto.TransactionResponse, int64, error) {
	from, to := monthRange(req.Year, req.Month, time.Now())

	txs, total, err := s.repo.Transaction.List(ctx, repository.TransactionFilter{
		Status:   req.Status,
		Type:     req.Type,
		From:     from,
		To:       to,
		Search:   strings.TrimSpace(req.Search),
		CenterID: req.CenterID,
		GroupID:  req.GroupID,
		Offset:   req.GetOffset(),
		Limit:    req.GetLimit(),
	})
	if err != nil {
		s.logger.Error("列出流水失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.TransactionResponse, 0, len(txs))
	for i := range txs {
		result = append(result, *toTransactionResponse(&txs[i]))
	}
	return result, total, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *transactionService) GetByID(ctx context.Context, id string) (*dto.TransactionResponse, error) {
	t, err := s.repo.Transaction.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		s.logger.Error("查询流水失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toTransactionResponse(t), nil
}

// ── 内部辅助方法 ──

// toTransactionResponse 物资仍存在时展示当前信息，已删除时回退到快照
func toTransactionResponse(t *model.Transaction) *dto.TransactionResponse {
	resp := &dto.TransactionResponse{
		ID:               t.TransactionID,
		Type:             t.Type,
		ItemID:           t.ItemID,
		ItemName:         t.ItemName,
		ItemUnit:         t.ItemUnit,
		ItemCategory:     t.ItemCategory,
		ItemDeleted:      t.Item == nil,
		CenterID:         t.CenterID,
		Quantity:         t.Quantity,
		DonorName:        t.DonorName,
		RequesterName:    t.RequesterName,
		Status:           t.Status,
		ProofURL:         t.ProofURL,
		RejectionReason:  t.RejectionReason,
		ContactPhone:     t.ContactPhone,
		IsPickupRequired: t.IsPickupRequired,
		PickupLocation:   t.PickupLocation,
		ApproverName:     t.ApproverName,
		GroupID:          t.GroupID,
		CreatedAt:        formatTime(t.CreatedAt),
	}
	if t.Item != nil {
		resp.ItemName = t.Item.Name
		resp.ItemUnit = t.Item.Unit
		resp.ItemCategory = t.Item.Category
	}
	if t.Center != nil {
		resp.CenterName = t.Center.Name
	}
	if t.ApprovedAt != nil {
		resp.ApprovedAt = formatTime(*t.ApprovedAt)
	}
	return resp
}
