package repository

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"
)

// TransactionManager 事务管理器接口
type TransactionManager interface {
	// BeginWithOptions 使用选项开始事务
	BeginWithOptions(ctx context.Context, opts *TxOptions) (*Transaction, error)
	// WithTransaction 在事务中执行函数
	WithTransaction(ctx context.Context, fn func(tx *Transaction) error) error
	// WithTransactionOptions 使用选项在事务中执行函数
	WithTransactionOptions(ctx context.Context, opts *TxOptions, fn func(tx *Transaction) error) error
}

// TxOptions 事务选项
type TxOptions struct {
	// IsolationLevel 事务隔离级别
	IsolationLevel sql.IsolationLevel
	// ReadOnly 是否只读事务
	ReadOnly bool
}

// Transaction 事务包装器
type Transaction struct {
	tx         *gorm.DB
	ctx        context.Context
	committed  bool
	rolledback bool

	pet         PetRepository
	petEvent    PetEventRepository
	wallet      WalletRepository
	transaction TransactionRepository
	collectible CollectibleRepository
}

// txManager 事务管理器实现
type txManager struct {
	db *gorm.DB
}

// NewTransactionManager 创建事务管理器
func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &txManager{db: db}
}

// BeginWithOptions 使用选项开始事务
// SQLite 不支持隔离级别设置，只在其他驱动上传递
func (m *txManager) BeginWithOptions(ctx context.Context, opts *TxOptions) (*Transaction, error) {
	var sqlOpts []*sql.TxOptions
	if opts != nil && m.db.Dialector.Name() != "sqlite" {
		sqlOpts = append(sqlOpts, &sql.TxOptions{
			Isolation: opts.IsolationLevel,
			ReadOnly:  opts.ReadOnly,
		})
	}

	tx := m.db.WithContext(ctx).Begin(sqlOpts...)
	if tx.Error != nil {
		return nil, tx.Error
	}

	return &Transaction{
		tx:  tx,
		ctx: ctx,
	}, nil
}

// WithTransaction 在事务中执行函数
func (m *txManager) WithTransaction(ctx context.Context, fn func(tx *Transaction) error) error {
	return m.WithTransactionOptions(ctx, nil, fn)
}

// WithTransactionOptions 使用选项在事务中执行函数
// fn 返回错误或 panic 时回滚
func (m *txManager) WithTransactionOptions(ctx context.Context, opts *TxOptions, fn func(tx *Transaction) error) error {
	tx, err := m.BeginWithOptions(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
		if !tx.committed && !tx.rolledback {
			tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// Commit 提交事务
func (t *Transaction) Commit() error {
	if t.committed {
		return fmt.Errorf("事务已提交")
	}
	if t.rolledback {
		return fmt.Errorf("事务已回滚")
	}

	if err := t.tx.Commit().Error; err != nil {
		return err
	}

	t.committed = true
	return nil
}

// Rollback 回滚事务
func (t *Transaction) Rollback() error {
	if t.committed {
		return fmt.Errorf("事务已提交，无法回滚")
	}
	if t.rolledback {
		return fmt.Errorf("事务已回滚")
	}

	if err := t.tx.Rollback().Error; err != nil {
		return err
	}

	t.rolledback = true
	return nil
}

// GetDB 获取事务中的数据库实例
func (t *Transaction) GetDB() *gorm.DB {
	return t.tx
}

// Context 事务所属的上下文
func (t *Transaction) Context() context.Context {
	return t.ctx
}

// Pet 获取事务中的宠物仓储
func (t *Transaction) Pet() PetRepository {
	if t.pet == nil {
		t.pet = &petRepo{BaseRepo: &BaseRepo{db: t.tx}}
	}
	return t.pet
}

// PetEvent 获取事务中的互动记录仓储
func (t *Transaction) PetEvent() PetEventRepository {
	if t.petEvent == nil {
		t.petEvent = &petEventRepo{BaseRepo: &BaseRepo{db: t.tx}}
	}
	return t.petEvent
}

// Wallet 获取事务中的代币账户仓储
func (t *Transaction) Wallet() WalletRepository {
	if t.wallet == nil {
		t.wallet = &walletRepo{BaseRepo: &BaseRepo{db: t.tx}}
	}
	return t.wallet
}

// TransactionRepo 获取事务中的流水仓储
func (t *Transaction) TransactionRepo() TransactionRepository {
	if t.transaction == nil {
		t.transaction = &transactionRepo{BaseRepo: &BaseRepo{db: t.tx}}
	}
	return t.transaction
}

// Collectible 获取事务中的收藏品仓储
func (t *Transaction) Collectible() CollectibleRepository {
	if t.collectible == nil {
		t.collectible = &collectibleRepo{BaseRepo: &BaseRepo{db: t.tx}}
	}
	return t.collectible
}
