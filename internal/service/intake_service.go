package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"relief-hub/backend/config"
	"relief-hub/backend/internal/dto"
	"relief-hub/backend/internal/model"
	"relief-hub/backend/internal/repository"
	pkgerrors "relief-hub/backend/pkg/errors"
	"relief-hub/backend/pkg/idgen"
)

// ── 申报模块业务错误 ──

var (
	ErrInvalidSubmission   = errors.New("申报内容不合法")
	ErrLoginRequired       = errors.New("直接入库 / 出库需要工作人员登录")
	ErrItemRequired        = errors.New("请选择目录中的物资")
	ErrInvalidItem         = errors.New("物资不存在")
	ErrInvalidCenter       = errors.New("站点不存在")
	ErrCenterRequired      = errors.New("请至少选择一个站点")
	ErrCenterNotAuthorized = errors.New("无权为该站点申领物资")
	ErrInsufficientStock   = errors.New("库存不足")
	ErrInvalidPhone        = errors.New("联系电话须为 10 位数字")
	ErrPickupLocation      = errors.New("需要上门取件时必须填写取件地址")
	ErrTooManyLines        = errors.New("单次申报的物资行数超出上限")
	ErrTooManyCenters      = errors.New("单次申报的站点数量超出上限")
	ErrContactNameRequired = errors.New("请填写联系人姓名")
)

const (
	minLineQuantity = 1
	maxLineQuantity = 1_000_000
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// IntakeService 出入库申报业务接口
type IntakeService interface {
	// Submit 创建流水；grouped 为 true 时所有行共享一个 group_id
	Submit(ctx context.Context, req *dto.SubmitTransactionRequest, caller *Caller, grouped bool) (*dto.SubmitResult, error)
}

type intakeService struct {
	cfg    *config.IntakeConfig
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewIntakeService 创建 IntakeService 实例
func NewIntakeService(cfg *config.IntakeConfig, repo *repository.Repository, logger *zap.Logger) IntakeService {
	return &intakeService{cfg: cfg, repo: repo, logger: logger, now: time.Now}
}

// resolvedLine 已确定物资的申报行
type resolvedLine struct {
	item     *model.Item
	quantity int
}

// ────────────────────── Submit ──────────────────────

func (s *intakeService) Submit(ctx context.Context, req *dto.SubmitTransactionRequest, caller *Caller, grouped bool) (*dto.SubmitResult, error) {
	kind, err := classify(req.Type, resolveStatus(req.Status, caller))
	if err != nil {
		return nil, err
	}
	rules := kind.rules()

	centerIDs, err := s.validate(req, caller, rules)
	if err != nil {
		return nil, err
	}

	if err := s.checkCenters(ctx, centerIDs); err != nil {
		return nil, err
	}

	var groupID *string
	if grouped {
		id := idgen.GroupID()
		groupID = &id
	}

	var created []model.Transaction
	err = s.repo.Tx.RunInTx(ctx, func(tx *repository.Repository) error {
		lines, err := s.resolveLines(ctx, tx, req.Items, rules, caller)
		if err != nil {
			return err
		}
		if rules.applyStock && rules.txType == model.TxTypeIn {
			if err := s.absorbPlaceholders(ctx, tx, lines); err != nil {
				return err
			}
		}

		demand := totalDemand(lines, len(centerIDs))
		if rules.checkStock {
			if err := checkDemand(lines, demand); err != nil {
				return err
			}
		}

		created = s.buildRows(req, rules, lines, centerIDs, groupID, caller)
		if err := tx.Transaction.BatchCreate(ctx, created); err != nil {
			return err
		}

		if rules.applyStock {
			return applyDemand(ctx, tx, rules.txType, lines, demand)
		}
		return nil
	})
	if err != nil {
		if isIntakeError(err) {
			return nil, err
		}
		s.logger.Error("创建申报流水失败",
			zap.String("kind", kind.String()),
			zap.Int("lines", len(req.Items)),
			zap.Int("centers", len(centerIDs)),
			zap.Error(err),
		)
		return nil, err
	}

	ids := make([]string, 0, len(created))
	for i := range created {
		ids = append(ids, created[i].TransactionID)
	}

	s.logger.Info("申报已创建",
		zap.String("kind", kind.String()),
		zap.Int("count", len(created)),
		zap.Stringp("group_id", groupID),
	)

	return &dto.SubmitResult{
		Count:          len(created),
		GroupID:        groupID,
		TransactionIDs: ids,
	}, nil
}

// ── 校验 ──

// resolveStatus 未指定状态时：登录账号默认直接完成，匿名默认待审批
func resolveStatus(status string, caller *Caller) string {
	if status != "" {
		return status
	}
	if caller.Authenticated() {
		return model.TxStatusCompleted
	}
	return model.TxStatusPending
}

// validate 执行不依赖数据库的校验，返回去重后的站点列表
func (s *intakeService) validate(req *dto.SubmitTransactionRequest, caller *Caller, rules intakeRules) ([]string, error) {
	if rules.staffOnly && !caller.Authenticated() {
		return nil, ErrLoginRequired
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: 请至少填写一行物资", ErrInvalidSubmission)
	}
	if s.cfg.MaxLines > 0 && len(req.Items) > s.cfg.MaxLines {
		return nil, ErrTooManyLines
	}

	for i, line := range req.Items {
		if line.Quantity < minLineQuantity || line.Quantity > maxLineQuantity {
			return nil, fmt.Errorf("%w: 第 %d 行数量须在 %d 到 %d 之间", ErrInvalidSubmission, i+1, minLineQuantity, maxLineQuantity)
		}
		if line.ItemID == "" {
			if !rules.allowFreeText {
				return nil, fmt.Errorf("%w: 第 %d 行", ErrItemRequired, i+1)
			}
			if strings.TrimSpace(line.ItemName) == "" {
				return nil, fmt.Errorf("%w: 第 %d 行缺少物资名称", ErrInvalidSubmission, i+1)
			}
		}
		if line.Category != "" && !model.IsValidCategory(line.Category) {
			return nil, fmt.Errorf("%w: 第 %d 行", ErrInvalidCategory, i+1)
		}
	}

	if req.ContactPhone != "" && !phonePattern.MatchString(req.ContactPhone) {
		return nil, ErrInvalidPhone
	}
	if req.IsPickupRequired && strings.TrimSpace(req.PickupLocation) == "" {
		return nil, ErrPickupLocation
	}

	if !caller.Authenticated() {
		switch rules.txType {
		case model.TxTypeIn:
			if strings.TrimSpace(req.DonorName) == "" {
				return nil, ErrContactNameRequired
			}
		case model.TxTypeOut:
			if strings.TrimSpace(req.RequesterName) == "" {
				return nil, ErrContactNameRequired
			}
		}
	}

	centerIDs := dedupe(req.CenterIDs)
	if s.cfg.MaxCenters > 0 && len(centerIDs) > s.cfg.MaxCenters {
		return nil, ErrTooManyCenters
	}

	// 受限账号只能为授权站点申领
	if rules.txType == model.TxTypeOut && caller.Restricted() {
		if len(centerIDs) == 0 {
			centerIDs = []string{caller.AuthorizedCenterID}
		}
		for _, id := range centerIDs {
			if id != caller.AuthorizedCenterID {
				return nil, ErrCenterNotAuthorized
			}
		}
	}

	if rules.requireCenter && len(centerIDs) == 0 {
		return nil, ErrCenterRequired
	}

	return centerIDs, nil
}

func (s *intakeService) checkCenters(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.repo.Center.ExistingIDs(ctx, ids)
	if err != nil {
		s.logger.Error("校验站点失败", zap.Error(err))
		return err
	}
	exists := make(map[string]bool, len(found))
	for _, id := range found {
		exists[id] = true
	}
	for _, id := range ids {
		if !exists[id] {
			return fmt.Errorf("%w: %s", ErrInvalidCenter, id)
		}
	}
	return nil
}

// ── 物资解析 ──

// resolveLines 将每行解析为目录物资；自由填写的名称按精确匹配查找，不存在时以 0 库存新建
func (s *intakeService) resolveLines(ctx context.Context, tx *repository.Repository, lines []dto.SubmitLine, rules intakeRules, caller *Caller) ([]resolvedLine, error) {
	out := make([]resolvedLine, 0, len(lines))
	for i, line := range lines {
		var item *model.Item
		var err error

		if line.ItemID != "" {
			item, err = tx.Item.GetByID(ctx, line.ItemID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, fmt.Errorf("%w: 第 %d 行 %s", ErrInvalidItem, i+1, line.ItemID)
				}
				return nil, err
			}
		} else {
			item, err = s.findOrCreateItem(ctx, tx, line, rules, caller)
			if err != nil {
				return nil, err
			}
		}

		out = append(out, resolvedLine{item: item, quantity: line.Quantity})
	}
	return out, nil
}

func (s *intakeService) findOrCreateItem(ctx context.Context, tx *repository.Repository, line dto.SubmitLine, rules intakeRules, caller *Caller) (*model.Item, error) {
	name := strings.TrimSpace(line.ItemName)

	// 优先匹配正式物资，仅剩占位物资时才沿用占位物资
	item, err := tx.Item.FindCanonicalByName(ctx, name, "")
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	item, err = tx.Item.FindByName(ctx, name)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := line.Category
	if category == "" {
		category = rules.newItemCategory
	}
	item = &model.Item{
		Name:     name,
		Quantity: 0,
		Unit:     unitOrDefault(line.Unit),
		Category: category,
	}
	item.CreatedBy = caller.userIDPtr()
	item.UpdatedBy = caller.userIDPtr()

	if err := tx.Item.Create(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info("自由填写的物资已建档",
		zap.String("item_id", item.ItemID),
		zap.String("name", name),
		zap.String("category", category),
	)
	return item, nil
}

// absorbPlaceholders 即时入库前把引用的占位物资并入同名正式物资
func (s *intakeService) absorbPlaceholders(ctx context.Context, tx *repository.Repository, lines []resolvedLine) error {
	for i := range lines {
		item := lines[i].item
		if !item.IsPlaceholder() {
			continue
		}
		canonical, err := tx.Item.FindCanonicalByName(ctx, item.Name, item.ItemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return err
		}

		target, err := mergePlaceholder(ctx, tx, item.ItemID, canonical, 0, s.logger)
		if err != nil {
			return err
		}
		if target != canonical.ItemID {
			if canonical, err = tx.Item.GetByID(ctx, target); err != nil {
				return err
			}
		}
		lines[i].item = canonical
	}
	return nil
}

// ── 库存 ──

// totalDemand 每个物资的总量：Σ 行数量 × 站点数（无站点按 1 计）
func totalDemand(lines []resolvedLine, centers int) map[string]int {
	if centers == 0 {
		centers = 1
	}
	demand := make(map[string]int, len(lines))
	for _, l := range lines {
		demand[l.item.ItemID] += l.quantity * centers
	}
	return demand
}

// checkDemand 写入前校验全部物资，任何一项不足则整批失败
func checkDemand(lines []resolvedLine, demand map[string]int) error {
	for _, l := range lines {
		need := demand[l.item.ItemID]
		if l.item.Quantity < need {
			return fmt.Errorf("%w: %s 需要 %d，现有 %d", ErrInsufficientStock, l.item.Name, need, l.item.Quantity)
		}
	}
	return nil
}

// applyDemand 在同一事务内以条件更新变更库存
func applyDemand(ctx context.Context, tx *repository.Repository, txType string, lines []resolvedLine, demand map[string]int) error {
	done := make(map[string]bool, len(demand))
	for _, l := range lines {
		id := l.item.ItemID
		if done[id] {
			continue
		}
		done[id] = true

		switch txType {
		case model.TxTypeIn:
			if err := tx.Item.Increment(ctx, id, demand[id]); err != nil {
				return err
			}
			if l.item.IsPlaceholder() {
				if err := tx.Item.Promote(ctx, id, model.CategoryPending, model.CategoryGeneral); err != nil {
					return err
				}
			}
		case model.TxTypeOut:
			if err := tx.Item.Decrement(ctx, id, demand[id]); err != nil {
				if errors.Is(err, pkgerrors.ErrStockShortage) {
					return fmt.Errorf("%w: %s", ErrInsufficientStock, l.item.Name)
				}
				return err
			}
		}
	}
	return nil
}

// ── 落库 ──

// buildRows 每个站点 × 每行生成一条流水；无站点时每行一条
func (s *intakeService) buildRows(req *dto.SubmitTransactionRequest, rules intakeRules, lines []resolvedLine, centerIDs []string, groupID *string, caller *Caller) []model.Transaction {
	targets := make([]*string, 0, len(centerIDs))
	for i := range centerIDs {
		targets = append(targets, &centerIDs[i])
	}
	if len(targets) == 0 {
		targets = append(targets, nil)
	}

	requester := strings.TrimSpace(req.RequesterName)
	if requester == "" && rules.txType == model.TxTypeOut && caller.Authenticated() {
		requester = caller.Name
	}

	var approvedAt *time.Time
	var approver *string
	if rules.status == model.TxStatusCompleted {
		now := s.now()
		approvedAt = &now
		approver = optionalString(caller.Name)
	}

	rows := make([]model.Transaction, 0, len(targets)*len(lines))
	for _, centerID := range targets {
		for _, l := range lines {
			t := model.Transaction{
				Type:             rules.txType,
				ItemID:           l.item.ItemID,
				CenterID:         centerID,
				Quantity:         l.quantity,
				ItemName:         l.item.Name,
				ItemUnit:         l.item.Unit,
				ItemCategory:     l.item.Category,
				DonorName:        optionalString(req.DonorName),
				RequesterName:    optionalString(requester),
				Status:           rules.status,
				ProofURL:         optionalString(req.ProofURL),
				ContactPhone:     optionalString(req.ContactPhone),
				IsPickupRequired: req.IsPickupRequired,
				PickupLocation:   optionalString(req.PickupLocation),
				ApproverName:     approver,
				ApprovedAt:       approvedAt,
				GroupID:          groupID,
			}
			if approvedAt != nil {
				t.ApprovedBy = caller.userIDPtr()
			}
			t.CreatedBy = caller.userIDPtr()
			t.UpdatedBy = caller.userIDPtr()
			rows = append(rows, t)
		}
	}
	return rows
}

// ── 内部辅助方法 ──

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func isIntakeError(err error) bool {
	for _, target := range []error{
		ErrInvalidSubmission, ErrItemRequired, ErrInvalidItem, ErrInvalidCenter,
		ErrCenterRequired, ErrInsufficientStock, ErrInvalidCategory,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
