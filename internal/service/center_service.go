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
	pkgerrors "relief-hub/backend/pkg/errors"
)

// ── 站点模块业务错误 ──

var (
	ErrCenterNotFound = errors.New("站点不存在")
	ErrCenterConflict = errors.New("站点已被其他操作修改，请刷新后重试")
)

// CenterService 站点业务接口
type CenterService interface {
	List(ctx context.Context, req *dto.CenterListRequest, caller *Caller) ([]dto.CenterResponse, int64, error)
	GetByID(ctx context.Context, id string, caller *Caller) (*dto.CenterResponse, error)
	Create(ctx context.Context, req *dto.CreateCenterRequest, caller *Caller) (*dto.CenterResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCenterRequest, caller *Caller) (*dto.CenterResponse, error)
	Delete(ctx context.Context, id string, caller *Caller) error
}

type centerService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCenterService 创建 CenterService 实例
func NewCenterService(repo *repository.Repository, logger *zap.Logger) CenterService {
	return &centerService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

// List 匿名访问只能看到 active 站点
func (s *centerService) List(ctx context.Context, req *dto.CenterListRequest, caller *Caller) ([]dto.CenterResponse, int64, error) {
	from, to, err := parseDateRange(req.DateFrom, req.DateTo)
	if err != nil {
		return nil, 0, err
	}

	f := repository.CenterFilter{
		Type:     req.Type,
		Status:   req.Status,
		Search:   strings.TrimSpace(req.Search),
		DateFrom: from,
		DateTo:   to,
	}
	if !caller.Authenticated() {
		f.Status = model.CenterStatusActive
	}
	if !req.All {
		f.Offset = req.GetOffset()
		f.Limit = req.GetLimit()
	}

	centers, total, err := s.repo.Center.List(ctx, f)
	if err != nil {
		s.logger.Error("列出站点失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.CenterResponse, 0, len(centers))
	for i := range centers {
		result = append(result, *toCenterResponse(&centers[i]))
	}
	return result, total, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *centerService) GetByID(ctx context.Context, id string, caller *Caller) (*dto.CenterResponse, error) {
	center, err := s.getCenter(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Authenticated() && center.Status != model.CenterStatusActive {
		return nil, ErrCenterNotFound
	}
	return toCenterResponse(center), nil
}

// ────────────────────── Create ──────────────────────

func (s *centerService) Create(ctx context.Context, req *dto.CreateCenterRequest, caller *Caller) (*dto.CenterResponse, error) {
	center := &model.Center{
		Name:           strings.TrimSpace(req.Name),
		Location:       req.Location,
		District:       strings.TrimSpace(req.District),
		Subdistrict:    req.Subdistrict,
		PhoneNumbers:   cleanPhones(req.PhoneNumbers),
		Capacity:       req.Capacity,
		CapacityStatus: req.CapacityStatus,
		Status:         req.Status,
		Type:           req.Type,
		ContactPerson:  optionalString(req.ContactPerson),
		ShelterType:    optionalString(req.ShelterType),
	}
	if center.Status == "" {
		center.Status = model.CenterStatusActive
	}
	center.Version = 1
	normalizeCenterType(center)
	center.CreatedBy = caller.userIDPtr()
	center.UpdatedBy = caller.userIDPtr()

	if err := s.repo.Center.Create(ctx, center); err != nil {
		s.logger.Error("创建站点失败", zap.String("name", center.Name), zap.Error(err))
		return nil, err
	}

	return toCenterResponse(center), nil
}

// ────────────────────── Update ──────────────────────

func (s *centerService) Update(ctx context.Context, id string, req *dto.UpdateCenterRequest, caller *Caller) (*dto.CenterResponse, error) {
	center, err := s.getCenter(ctx, id)
	if err != nil {
		return nil, err
	}
	if center.Version != req.Version {
		return nil, ErrCenterConflict
	}

	if req.Name != nil {
		center.Name = strings.TrimSpace(*req.Name)
	}
	if req.Location != nil {
		center.Location = *req.Location
	}
	if req.District != nil {
		center.District = strings.TrimSpace(*req.District)
	}
	if req.Subdistrict != nil {
		center.Subdistrict = *req.Subdistrict
	}
	if req.PhoneNumbers != nil {
		center.PhoneNumbers = cleanPhones(*req.PhoneNumbers)
	}
	if req.Capacity != nil {
		center.Capacity = *req.Capacity
	}
	if req.CapacityStatus != nil {
		center.CapacityStatus = *req.CapacityStatus
	}
	if req.Status != nil {
		center.Status = *req.Status
	}
	if req.Type != nil {
		center.Type = *req.Type
	}
	if req.ContactPerson != nil {
		center.ContactPerson = optionalString(*req.ContactPerson)
	}
	if req.ShelterType != nil {
		center.ShelterType = optionalString(*req.ShelterType)
	}
	normalizeCenterType(center)
	center.UpdatedBy = caller.userIDPtr()

	if err := s.repo.Center.Update(ctx, center); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrCenterConflict
		}
		s.logger.Error("更新站点失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toCenterResponse(center), nil
}

// ────────────────────── Delete ──────────────────────

func (s *centerService) Delete(ctx context.Context, id string, caller *Caller) error {
	if err := s.repo.Center.Delete(ctx, id, caller.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCenterNotFound
		}
		s.logger.Error("删除站点失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *centerService) getCenter(ctx context.Context, id string) (*model.Center, error) {
	center, err := s.repo.Center.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCenterNotFound
		}
		s.logger.Error("查询站点失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return center, nil
}

// normalizeCenterType 类型专属字段只对对应类型保留
func normalizeCenterType(c *model.Center) {
	switch c.Type {
	case model.CenterTypeDonationPoint:
		c.ShelterType = nil
	case model.CenterTypeShelter:
		c.ContactPerson = nil
	}
}

func cleanPhones(in []string) model.StringList {
	out := make(model.StringList, 0, len(in))
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func toCenterResponse(c *model.Center) *dto.CenterResponse {
	phones := []string(c.PhoneNumbers)
	if phones == nil {
		phones = []string{}
	}
	return &dto.CenterResponse{
		ID:             c.CenterID,
		Name:           c.Name,
		Location:       c.Location,
		District:       c.District,
		Subdistrict:    c.Subdistrict,
		PhoneNumbers:   phones,
		Capacity:       c.Capacity,
		CapacityStatus: c.CapacityStatus,
		Status:         c.Status,
		Type:           c.Type,
		ContactPerson:  c.ContactPerson,
		ShelterType:    c.ShelterType,
		Version:        c.Version,
		CreatedAt:      formatTime(c.CreatedAt),
		UpdatedAt:      formatTime(c.UpdatedAt),
	}
}
