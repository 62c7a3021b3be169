package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"relief-hub/backend/internal/dto"
	"relief-hub/backend/internal/model"
	"relief-hub/backend/internal/repository"
)

// ── 物资目录模块业务错误 ──

var (
	ErrItemNotFound    = errors.New("物资不存在")
	ErrInvalidCategory = errors.New("物资分类不合法")
	ErrItemNameEmpty   = errors.New("物资名称不能为空")
)

// CatalogService 物资目录业务接口
type CatalogService interface {
	List(ctx context.Context, req *dto.ItemListRequest) ([]dto.ItemResponse, int64, error)
	GetByID(ctx context.Context, id string) (*dto.ItemResponse, error)
	Create(ctx context.Context, req *dto.CreateItemRequest, caller *Caller) (*dto.ItemResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateItemRequest, caller *Caller) (*dto.ItemResponse, error)
	Delete(ctx context.Context, id string) error
}

type catalogService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCatalogService 创建 CatalogService 实例
func NewCatalogService(repo *repository.Repository, logger *zap.Logger) CatalogService {
	return &catalogService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *catalogService) List(ctx context.Context, req *dto.ItemListRequest) ([]dto.ItemResponse, int64, error) {
	from, to, err := parseDateRange(req.DateFrom, req.DateTo)
	if err != nil {
		return nil, 0, err
	}
	if req.Category != "" && !model.IsValidCategory(req.Category) {
		return nil, 0, ErrInvalidCategory
	}

	items, total, err := s.repo.Item.List(ctx, repository.ItemFilter{
		Category: req.Category,
		Search:   strings.TrimSpace(req.Search),
		InStock:  req.InStock,
		DateFrom: from,
		DateTo:   to,
		Offset:   req.GetOffset(),
		Limit:    req.GetLimit(),
	})
	if err != nil {
		s.logger.Error("列出物资失败", zap.Error(err))
		return nil, 0, err
	}

	// 站点派生库存：与全局库存是两个独立视图，不做对账
	var centerStock map[string]int64
	if req.CenterID != "" && len(items) > 0 {
		ids := make([]string, 0, len(items))
		for i := range items {
			ids = append(ids, items[i].ItemID)
		}
		centerStock, err = s.repo.Item.CenterStock(ctx, req.CenterID, ids)
		if err != nil {
			s.logger.Error("统计站点库存失败", zap.String("center_id", req.CenterID), zap.Error(err))
			return nil, 0, err
		}
	}

	result := make([]dto.ItemResponse, 0, len(items))
	for i := range items {
		resp := toItemResponse(&items[i])
		if req.CenterID != "" {
			q := centerStock[items[i].ItemID]
			resp.CenterQuantity = &q
		}
		result = append(result, *resp)
	}

	return result, total, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *catalogService) GetByID(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := s.repo.Item.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		s.logger.Error("查询物资失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toItemResponse(item), nil
}

// ────────────────────── Create ──────────────────────

func (s *catalogService) Create(ctx context.Context, req *dto.CreateItemRequest, caller *Caller) (*dto.ItemResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrItemNameEmpty
	}
	if !model.IsCatalogCategory(req.Category) {
		return nil, ErrInvalidCategory
	}

	item := &model.Item{
		Name:     name,
		Quantity: 0,
		Unit:     unitOrDefault(req.Unit),
		Category: req.Category,
	}
	item.CreatedBy = caller.userIDPtr()
	item.UpdatedBy = caller.userIDPtr()

	if err := s.repo.Item.Create(ctx, item); err != nil {
		s.logger.Error("创建物资失败", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	return toItemResponse(item), nil
}

// ────────────────────── Update ──────────────────────

func (s *catalogService) Update(ctx context.Context, id string, req *dto.UpdateItemRequest, caller *Caller) (*dto.ItemResponse, error) {
	item, err := s.repo.Item.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		s.logger.Error("查询物资失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrItemNameEmpty
		}
		item.Name = name
	}
	if req.Category != nil {
		if !model.IsCatalogCategory(*req.Category) {
			return nil, ErrInvalidCategory
		}
		item.Category = *req.Category
	}
	if req.Unit != nil {
		item.Unit = unitOrDefault(*req.Unit)
	}
	item.UpdatedBy = caller.userIDPtr()

	if err := s.repo.Item.UpdateCatalog(ctx, item); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		s.logger.Error("更新物资失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toItemResponse(item), nil
}

// ────────────────────── Delete ──────────────────────

func (s *catalogService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Item.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		s.logger.Error("删除物资失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func unitOrDefault(unit string) string {
	if u := strings.TrimSpace(unit); u != "" {
		return u
	}
	return model.DefaultUnit
}

func toItemResponse(item *model.Item) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:        item.ItemID,
		Name:      item.Name,
		Quantity:  item.Quantity,
		Unit:      item.Unit,
		Category:  item.Category,
		CreatedAt: formatTime(item.CreatedAt),
		UpdatedAt: formatTime(item.UpdatedAt),
	}
}
