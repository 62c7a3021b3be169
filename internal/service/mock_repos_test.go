package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"relief-hub/backend/config"
	"relief-hub/backend/internal/model"
	"relief-hub/backend/internal/repository"
	pkgerrors "relief-hub/backend/pkg/errors"
)

// ── 内存存储 ──
// 所有 mock repository 共享同一个 memStore；事务失败时整体恢复快照

type memStore struct {
	items   map[string]*model.Item
	centers map[string]*model.Center
	txs     map[string]*model.Transaction
	users   map[string]*model.User
	seq     int

	// failBatchCreate 非 nil 时 BatchCreate 返回该错误（模拟写入失败）
	failBatchCreate error
}

func newMemStore() *memStore {
	return &memStore{
		items:   make(map[string]*model.Item),
		centers: make(map[string]*model.Center),
		txs:     make(map[string]*model.Transaction),
		users:   make(map[string]*model.User),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%04d", prefix, s.seq)
}

// tick 为每次写入生成递增时间，保证排序稳定
func (s *memStore) tick() time.Time {
	s.seq++
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(s.seq) * time.Second)
}

type memSnapshot struct {
	items   map[string]model.Item
	centers map[string]model.Center
	txs     map[string]model.Transaction
	users   map[string]model.User
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		items:   make(map[string]model.Item, len(s.items)),
		centers: make(map[string]model.Center, len(s.centers)),
		txs:     make(map[string]model.Transaction, len(s.txs)),
		users:   make(map[string]model.User, len(s.users)),
	}
	for k, v := range s.items {
		snap.items[k] = *v
	}
	for k, v := range s.centers {
		snap.centers[k] = *v
	}
	for k, v := range s.txs {
		snap.txs[k] = *v
	}
	for k, v := range s.users {
		snap.users[k] = *v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.items = make(map[string]*model.Item, len(snap.items))
	for k, v := range snap.items {
		v := v
		s.items[k] = &v
	}
	s.centers = make(map[string]*model.Center, len(snap.centers))
	for k, v := range snap.centers {
		v := v
		s.centers[k] = &v
	}
	s.txs = make(map[string]*model.Transaction, len(snap.txs))
	for k, v := range snap.txs {
		v := v
		s.txs[k] = &v
	}
	s.users = make(map[string]*model.User, len(snap.users))
	for k, v := range snap.users {
		v := v
		s.users[k] = &v
	}
}

// newMockRepository 组装基于 memStore 的 Repository 聚合
func newMockRepository(store *memStore) *repository.Repository {
	repo := &repository.Repository{
		Item:        &mockItemRepo{s: store},
		Center:      &mockCenterRepo{s: store},
		Transaction: &mockTransactionRepo{s: store},
		User:        &mockUserRepo{s: store},
	}
	repo.Tx = &mockTxRunner{s: store, repo: repo}
	return repo
}

// ── Mock TxRunner ──

type mockTxRunner struct {
	s    *memStore
	repo *repository.Repository
	runs int
}

func (m *mockTxRunner) RunInTx(_ context.Context, fn func(repo *repository.Repository) error) error {
	m.runs++
	snap := m.s.snapshot()
	if err := fn(m.repo); err != nil {
		m.s.restore(snap)
		return err
	}
	return nil
}

// ── Mock ItemRepository ──

type mockItemRepo struct {
	s *memStore
}

func (m *mockItemRepo) Create(_ context.Context, item *model.Item) error {
	if item.ItemID == "" {
		item.ItemID = m.s.nextID("item")
	}
	now := m.s.tick()
	item.CreatedAt, item.UpdatedAt = now, now
	cp := *item
	m.s.items[item.ItemID] = &cp
	return nil
}

func (m *mockItemRepo) GetByID(_ context.Context, id string) (*model.Item, error) {
	if it, ok := m.s.items[id]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockItemRepo) oldest(match func(*model.Item) bool) (*model.Item, error) {
	var found *model.Item
	for _, it := range m.s.items {
		if !match(it) {
			continue
		}
		if found == nil || it.CreatedAt.Before(found.CreatedAt) {
			found = it
		}
	}
	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *found
	return &cp, nil
}

func (m *mockItemRepo) FindByName(_ context.Context, name string) (*model.Item, error) {
	return m.oldest(func(it *model.Item) bool { return it.Name == name })
}

func (m *mockItemRepo) FindCanonicalByName(_ context.Context, name, excludeID string) (*model.Item, error) {
	return m.oldest(func(it *model.Item) bool {
		return it.Name == name && it.ItemID != excludeID && it.Category != model.CategoryPending
	})
}

func (m *mockItemRepo) List(_ context.Context, f repository.ItemFilter) ([]model.Item, int64, error) {
	var out []model.Item
	for _, it := range m.s.items {
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.InStock && it.Quantity <= 0 {
			continue
		}
		if f.DateFrom != nil && it.CreatedAt.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && !it.CreatedAt.Before(*f.DateTo) {
			continue
		}
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return paginate(out, f.Offset, f.Limit), int64(len(out)), nil
}

func (m *mockItemRepo) UpdateCatalog(_ context.Context, item *model.Item) error {
	it, ok := m.s.items[item.ItemID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	it.Name, it.Category, it.Unit, it.UpdatedBy = item.Name, item.Category, item.Unit, item.UpdatedBy
	it.UpdatedAt = m.s.tick()
	return nil
}

func (m *mockItemRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.s.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.s.items, id)
	return nil
}

func (m *mockItemRepo) TakePlaceholder(_ context.Context, id string) (int, error) {
	it, ok := m.s.items[id]
	if !ok || it.Category != model.CategoryPending {
		return 0, gorm.ErrRecordNotFound
	}
	delete(m.s.items, id)
	return it.Quantity, nil
}

func (m *mockItemRepo) Increment(_ context.Context, id string, n int) error {
	it, ok := m.s.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	it.Quantity += n
	it.UpdatedAt = m.s.tick()
	return nil
}

func (m *mockItemRepo) Decrement(_ context.Context, id string, n int) error {
	it, ok := m.s.items[id]
	if !ok || it.Quantity < n {
		return pkgerrors.ErrStockShortage
	}
	it.Quantity -= n
	it.UpdatedAt = m.s.tick()
	return nil
}

func (m *mockItemRepo) Promote(_ context.Context, id, from, to string) error {
	if it, ok := m.s.items[id]; ok && it.Category == from {
		it.Category = to
	}
	return nil
}

func (m *mockItemRepo) CenterStock(_ context.Context, centerID string, itemIDs []string) (map[string]int64, error) {
	want := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		want[id] = true
	}
	out := make(map[string]int64)
	for _, t := range m.s.txs {
		if t.Status != model.TxStatusCompleted || t.CenterID == nil || *t.CenterID != centerID || !want[t.ItemID] {
			continue
		}
		if t.Type == model.TxTypeIn {
			out[t.ItemID] += int64(t.Quantity)
		} else {
			out[t.ItemID] -= int64(t.Quantity)
		}
	}
	return out, nil
}

// ── Mock CenterRepository ──

type mockCenterRepo struct {
	s *memStore
}

func (m *mockCenterRepo) Create(_ context.Context, c *model.Center) error {
	if c.CenterID == "" {
		c.CenterID = m.s.nextID("center")
	}
	if c.Version == 0 {
		c.Version = 1
	}
	now := m.s.tick()
	c.CreatedAt, c.UpdatedAt = now, now
	cp := *c
	m.s.centers[c.CenterID] = &cp
	return nil
}

func (m *mockCenterRepo) live(id string) (*model.Center, bool) {
	c, ok := m.s.centers[id]
	if !ok || c.DeletedAt.Valid {
		return nil, false
	}
	return c, true
}

func (m *mockCenterRepo) GetByID(_ context.Context, id string) (*model.Center, error) {
	if c, ok := m.live(id); ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCenterRepo) List(_ context.Context, f repository.CenterFilter) ([]model.Center, int64, error) {
	var out []model.Center
	for _, c := range m.s.centers {
		if c.DeletedAt.Valid {
			continue
		}
		if f.Type != "" && c.Type != f.Type {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(c.Name, f.Search) && !strings.Contains(c.District, f.Search) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, f.Offset, f.Limit), int64(len(out)), nil
}

func (m *mockCenterRepo) ExistingIDs(_ context.Context, ids []string) ([]string, error) {
	var out []string
	for _, id := range ids {
		if _, ok := m.live(id); ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *mockCenterRepo) Update(_ context.Context, c *model.Center) error {
	cur, ok := m.live(c.CenterID)
	if !ok || cur.Version != c.Version {
		return pkgerrors.ErrOptimisticLock
	}
	c.Version++
	c.UpdatedAt = m.s.tick()
	cp := *c
	m.s.centers[c.CenterID] = &cp
	return nil
}

func (m *mockCenterRepo) Delete(_ context.Context, id string, deletedBy string) error {
	c, ok := m.live(id)
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.DeletedAt = gorm.DeletedAt{Time: m.s.tick(), Valid: true}
	c.DeletedBy = &deletedBy
	return nil
}

// ── Mock TransactionRepository ──

type mockTransactionRepo struct {
	s *memStore
}

func (m *mockTransactionRepo) BatchCreate(_ context.Context, txs []model.Transaction) error {
	if m.s.failBatchCreate != nil {
		return m.s.failBatchCreate
	}
	for i := range txs {
		if txs[i].TransactionID == "" {
			txs[i].TransactionID = m.s.nextID("tx")
		}
		now := m.s.tick()
		txs[i].CreatedAt, txs[i].UpdatedAt = now, now
		cp := txs[i]
		cp.Item, cp.Center = nil, nil
		m.s.txs[cp.TransactionID] = &cp
	}
	return nil
}

// withRefs 模拟 Preload：关联物资（已删除则为 nil）与站点（含软删除）
func (m *mockTransactionRepo) withRefs(t *model.Transaction) model.Transaction {
	cp := *t
	if it, ok := m.s.items[t.ItemID]; ok {
		item := *it
		cp.Item = &item
	}
	if t.CenterID != nil {
		if c, ok := m.s.centers[*t.CenterID]; ok {
			center := *c
			cp.Center = &center
		}
	}
	return cp
}

func (m *mockTransactionRepo) GetByID(_ context.Context, id string) (*model.Transaction, error) {
	t, ok := m.s.txs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := m.withRefs(t)
	return &cp, nil
}

func (m *mockTransactionRepo) List(_ context.Context, f repository.TransactionFilter) ([]model.Transaction, int64, error) {
	var out []model.Transaction
	for _, t := range m.s.txs {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if f.From != nil && t.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !t.CreatedAt.Before(*f.To) {
			continue
		}
		if f.CenterID != "" && (t.CenterID == nil || *t.CenterID != f.CenterID) {
			continue
		}
		if f.GroupID != "" && (t.GroupID == nil || *t.GroupID != f.GroupID) {
			continue
		}
		if f.Search != "" && !strings.Contains(t.ItemName, f.Search) {
			continue
		}
		out = append(out, m.withRefs(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, f.Offset, f.Limit), int64(len(out)), nil
}

func (m *mockTransactionRepo) Finish(_ context.Context, t *model.Transaction) error {
	cur, ok := m.s.txs[t.TransactionID]
	if !ok || cur.Status != model.TxStatusPending {
		return pkgerrors.ErrStatusChanged
	}
	cur.Status = t.Status
	cur.ItemID = t.ItemID
	cur.Quantity = t.Quantity
	cur.ProofURL = t.ProofURL
	cur.RejectionReason = t.RejectionReason
	cur.ApproverName = t.ApproverName
	cur.ApprovedAt = t.ApprovedAt
	cur.ApprovedBy = t.ApprovedBy
	cur.UpdatedBy = t.UpdatedBy
	cur.UpdatedAt = m.s.tick()
	return nil
}

func (m *mockTransactionRepo) RepointItem(_ context.Context, from, to string) (int64, error) {
	var n int64
	for _, t := range m.s.txs {
		if t.ItemID == from {
			t.ItemID = to
			n++
		}
	}
	return n, nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	s *memStore

	// failCreateFor 指定用户名写入时返回错误（模拟导入中途失败）
	failCreateFor string
}

func (m *mockUserRepo) Create(_ context.Context, u *model.User) error {
	if m.failCreateFor != "" && u.Username == m.failCreateFor {
		return errors.New("模拟写入失败")
	}
	for _, existing := range m.s.users {
		if existing.Username == u.Username {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	if u.UserID == "" {
		u.UserID = m.s.nextID("user")
	}
	now := m.s.tick()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	m.s.users[u.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, u *model.User) error {
	if _, ok := m.s.users[u.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *u
	m.s.users[u.UserID] = &cp
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.s.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.s.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, f repository.UserFilter) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range m.s.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Keyword != "" && !strings.Contains(u.Username, f.Keyword) && !strings.Contains(u.Name, f.Keyword) {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, f.Offset, f.Limit), int64(len(out)), nil
}

// ── 测试辅助 ──

func paginate[T any](in []T, offset, limit int) []T {
	if limit <= 0 {
		return in
	}
	if offset >= len(in) {
		return []T{}
	}
	end := offset + limit
	if end > len(in) {
		end = len(in)
	}
	return in[offset:end]
}

func testIntakeConfig() *config.IntakeConfig {
	return &config.IntakeConfig{MaxLines: 50, MaxCenters: 200}
}

func seedItem(store *memStore, name, category string, qty int) *model.Item {
	item := &model.Item{Name: name, Category: category, Quantity: qty, Unit: model.DefaultUnit}
	_ = (&mockItemRepo{s: store}).Create(context.Background(), item)
	return item
}

func seedCenter(store *memStore, name string) *model.Center {
	c := &model.Center{
		Name:   name,
		Type:   model.CenterTypeShelter,
		Status: model.CenterStatusActive,
	}
	_ = (&mockCenterRepo{s: store}).Create(context.Background(), c)
	return c
}

func stockOf(store *memStore, id string) int {
	if it, ok := store.items[id]; ok {
		return it.Quantity
	}
	return -1
}

var (
	staffCaller = &Caller{UserID: "user-staff", Name: "Staff A", Role: model.RoleStaff}
	adminCaller = &Caller{UserID: "user-admin", Name: "Admin", Role: model.RoleAdmin}
)

func nopLogger() *zap.Logger { return zap.NewNop() }
