package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"relief-hub/backend/internal/dto"
	"relief-hub/backend/internal/model"
	"relief-hub/backend/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrUserSelfDelete     = errors.New("不能删除自己")
	ErrUserSelfRoleChange = errors.New("不能修改自己的角色")
	ErrUsernameExists     = errors.New("用户名已存在")
)

// UserService 用户业务接口（仅管理员可用）
type UserService interface {
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Create(ctx context.Context, req *dto.CreateUserRequest, caller *Caller) (*dto.UserResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest, caller *Caller) (*dto.UserResponse, error)
	Delete(ctx context.Context, id string, caller *Caller) error
	ResetPassword(ctx context.Context, id string, caller *Caller) (*dto.ResetPasswordResponse, error)
	ParseImportFile(reader io.Reader) ([]ImportUserRow, error)
	ImportUsers(ctx context.Context, rows []ImportUserRow, caller *Caller) (*dto.ImportUserResponse, error)
}

// ImportUserRow Excel 导入解析后的单行数据
type ImportUserRow struct {
	Row      int
	Username string
	Name     string
	Role     string
	CenterID string
	Password string
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, repository.UserFilter{
		Role:    req.Role,
		Keyword: strings.TrimSpace(req.Keyword),
		Offset:  req.GetOffset(),
		Limit:   req.GetLimit(),
	})
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}

	return result, total, nil
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest, caller *Caller) (*dto.UserResponse, error) {
	username := strings.TrimSpace(req.Username)

	// 检查用户名唯一性
	if _, err := s.repo.User.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	centerID, err := s.checkAuthorizedCenter(ctx, req.AuthorizedCenterID)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Username:           username,
		PasswordHash:       string(hash),
		Name:               nameOrDefault(req.Name),
		Role:               roleOrDefault(req.Role),
		AuthorizedCenterID: centerID,
	}
	user.CreatedBy = caller.userIDPtr()
	user.UpdatedBy = caller.userIDPtr()

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.String("username", username), zap.Error(err))
		return nil, err
	}

	return toUserResponse(user), nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest, caller *Caller) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Role != nil && *req.Role != user.Role && id == caller.UserID {
		return nil, ErrUserSelfRoleChange
	}

	// 应用更新字段（仅更新非 nil 字段）
	if req.Name != nil {
		user.Name = nameOrDefault(*req.Name)
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.AuthorizedCenterID != nil {
		centerID, err := s.checkAuthorizedCenter(ctx, req.AuthorizedCenterID)
		if err != nil {
			return nil, err
		}
		user.AuthorizedCenterID = centerID
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			s.logger.Error("密码哈希失败", zap.Error(err))
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	user.UpdatedBy = caller.userIDPtr()

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toUserResponse(user), nil
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, id string, caller *Caller) error {
	if id == caller.UserID {
		return ErrUserSelfDelete
	}

	if err := s.repo.User.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("删除用户失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── ResetPassword ──────────────────────

func (s *userService) ResetPassword(ctx context.Context, id string, caller *Caller) (*dto.ResetPasswordResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 生成 10 位随机密码（保证包含字母和数字）
	tempPassword, err := generateTempPassword(10)
	if err != nil {
		s.logger.Error("生成临时密码失败", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user.PasswordHash = string(hash)
	user.UpdatedBy = caller.userIDPtr()

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("重置密码失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return &dto.ResetPasswordResponse{TempPassword: tempPassword}, nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 500

var (
	ErrImportNoData      = errors.New("Excel 文件无数据行（第一行为表头）")
	ErrImportTooManyRows = fmt.Errorf("数据行数超过上限 %d 行", maxImportRows)
	ErrImportBadHeader   = errors.New("Excel 表头缺少必要列（username / name）")
)

// ParseImportFile 解析导入 Excel 文件，返回解析后的行数据
func (s *userService) ParseImportFile(reader io.Reader) ([]ImportUserRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("无法解析 Excel 文件: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}

	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	// 解析表头（支持灵活列序）
	colIndex := parseHeaderIndex(excelRows[0])
	if colIndex["username"] < 0 || colIndex["name"] < 0 {
		return nil, ErrImportBadHeader
	}

	cell := func(row []string, key string) string {
		idx := colIndex[key]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var rows []ImportUserRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportUserRow{
			Row:      i + 1,
			Username: cell(row, "username"),
			Name:     cell(row, "name"),
			Role:     strings.ToLower(cell(row, "role")),
			CenterID: cell(row, "center_id"),
			Password: cell(row, "password"),
		}

		// 跳过全空行
		if item.Username == "" && item.Name == "" && item.Role == "" && item.CenterID == "" && item.Password == "" {
			continue
		}

		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}

	return rows, nil
}

// parseHeaderIndex 解析 Excel 表头，返回列名 -> 列索引映射
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"username":  -1,
		"name":      -1,
		"role":      -1,
		"center_id": -1,
		"password":  -1,
	}
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(h))
		switch lower {
		case "username", "ชื่อผู้ใช้":
			idx["username"] = i
		case "name", "ชื่อ":
			idx["name"] = i
		case "role", "บทบาท":
			idx["role"] = i
		case "center_id", "center", "ศูนย์":
			idx["center_id"] = i
		case "password", "รหัสผ่าน":
			idx["password"] = i
		}
	}
	return idx
}

// ────────────────────── ImportUsers ──────────────────────

func (s *userService) ImportUsers(ctx context.Context, rows []ImportUserRow, caller *Caller) (*dto.ImportUserResponse, error) {
	resp := &dto.ImportUserResponse{Total: len(rows)}

	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportUserError{Row: row, Reason: reason})
	}

	// 第一阶段：数据预校验（不接触数据库写操作）
	type validatedRow struct {
		row      ImportUserRow
		user     *model.User
		tempPass string
	}
	var validRows []validatedRow
	seen := make(map[string]bool, len(rows))

	for _, row := range rows {
		if row.Username == "" {
			fail(row.Row, "用户名为空")
			continue
		}
		if len(row.Username) < 3 || len(row.Username) > 50 {
			fail(row.Row, "用户名长度须在 3-50 之间")
			continue
		}
		if seen[row.Username] {
			fail(row.Row, fmt.Sprintf("文件内用户名重复: %s", row.Username))
			continue
		}
		if row.Role != "" && row.Role != model.RoleAdmin && row.Role != model.RoleStaff {
			fail(row.Row, fmt.Sprintf("角色不合法: %s", row.Role))
			continue
		}

		if _, err := s.repo.User.GetByUsername(ctx, row.Username); err == nil {
			fail(row.Row, fmt.Sprintf("用户名已存在: %s", row.Username))
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		var centerID *string
		if row.CenterID != "" {
			id := row.CenterID
			c, err := s.checkAuthorizedCenter(ctx, &id)
			if err != nil {
				if errors.Is(err, ErrInvalidCenter) {
					fail(row.Row, fmt.Sprintf("站点不存在: %s", row.CenterID))
					continue
				}
				return nil, err
			}
			centerID = c
		}

		password, tempPass := row.Password, ""
		if password == "" {
			p, err := generateTempPassword(10)
			if err != nil {
				return nil, err
			}
			password, tempPass = p, p
		} else if len(password) < 8 {
			fail(row.Row, "密码长度不能少于 8 位")
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			fail(row.Row, "密码哈希失败")
			continue
		}

		seen[row.Username] = true
		user := &model.User{
			Username:           row.Username,
			PasswordHash:       string(hash),
			Name:               nameOrDefault(row.Name),
			Role:               roleOrDefault(row.Role),
			AuthorizedCenterID: centerID,
		}
		user.CreatedBy = caller.userIDPtr()
		user.UpdatedBy = caller.userIDPtr()
		validRows = append(validRows, validatedRow{row: row, user: user, tempPass: tempPass})
	}

	// 第二阶段：在事务中批量创建所有通过校验的账号
	if len(validRows) > 0 {
		err := s.repo.Tx.RunInTx(ctx, func(tx *repository.Repository) error {
			for _, vr := range validRows {
				if err := tx.User.Create(ctx, vr.user); err != nil {
					s.logger.Error("导入账号写入失败，事务回滚",
						zap.Int("row", vr.row.Row), zap.Error(err))
					return fmt.Errorf("第 %d 行写入数据库失败，已回滚全部导入: %w", vr.row.Row, err)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		for _, vr := range validRows {
			resp.Success++
			if vr.tempPass != "" {
				resp.Credentials = append(resp.Credentials, dto.ImportCredential{
					Row:          vr.row.Row,
					Username:     vr.row.Username,
					TempPassword: vr.tempPass,
				})
			}
		}
	}

	return resp, nil
}

// ── 内部辅助方法 ──

// checkAuthorizedCenter 校验授权站点；空字符串表示取消限制
func (s *userService) checkAuthorizedCenter(ctx context.Context, id *string) (*string, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil, nil
	}
	centerID := strings.TrimSpace(*id)
	if _, err := s.repo.Center.GetByID(ctx, centerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCenter
		}
		return nil, err
	}
	return &centerID, nil
}

func nameOrDefault(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return "Staff"
}

func roleOrDefault(role string) string {
	if role == "" {
		return model.RoleStaff
	}
	return role
}

// GenerateTempPassword 生成 10 位临时密码，供运维工具创建账号使用
func GenerateTempPassword() (string, error) {
	return generateTempPassword(10)
}

// generateTempPassword 生成指定长度的临时密码（保证包含字母和数字）
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < 4 {
		length = 8
	}

	result := make([]byte, length)

	// 保证至少1个字母+1个数字
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
	if err != nil {
		return "", err
	}
	result[0] = letters[n.Int64()]

	n, err = rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
	if err != nil {
		return "", err
	}
	result[1] = digits[n.Int64()]

	// 剩余位随机填充
	for i := 2; i < length; i++ {
		n, err = rand.Int(rand.Reader, big.NewInt(int64(len(all))))
		if err != nil {
			return "", err
		}
		result[i] = all[n.Int64()]
	}

	// Fisher-Yates 洗牌
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}

	return string(result), nil
}
