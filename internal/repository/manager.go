package repository

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// Manager 仓储管理器，提供所有仓储的统一访问接口
type Manager struct {
	db *gorm.DB

	// 事务管理器
	txManager TransactionManager

	// 仓储实例（懒加载）
	petOnce sync.Once
	pet     PetRepository

	petEventOnce sync.Once
	petEvent     PetEventRepository

	walletOnce sync.Once
	wallet     WalletRepository

	transactionOnce sync.Once
	transaction     TransactionRepository

	collectibleOnce sync.Once
	collectible     CollectibleRepository
}

// NewManager 创建仓储管理器
func NewManager(db *gorm.DB) *Manager {
	return &Manager{
		db:        db,
		txManager: NewTransactionManager(db),
	}
}

// GetDB 获取数据库实例
func (m *Manager) GetDB() *gorm.DB {
	return m.db
}

// Transaction 获取事务管理器
func (m *Manager) Transaction() TransactionManager {
	return m.txManager
}

// Pet 获取宠物仓储
func (m *Manager) Pet() PetRepository {
	m.petOnce.Do(func() {
		m.pet = NewPetRepository(m.db)
	})
	return m.pet
}

// PetEvent 获取互动记录仓储
func (m *Manager) PetEvent() PetEventRepository {
	m.petEventOnce.Do(func() {
		m.petEvent = NewPetEventRepository(m.db)
	})
	return m.petEvent
}

// Wallet 获取代币账户仓储
func (m *Manager) Wallet() WalletRepository {
	m.walletOnce.Do(func() {
		m.wallet = NewWalletRepository(m.db)
	})
	return m.wallet
}

// TransactionRepo 获取流水仓储
func (m *Manager) TransactionRepo() TransactionRepository {
	m.transactionOnce.Do(func() {
		m.transaction = NewTransactionRepository(m.db)
	})
	return m.transaction
}

// Collectible 获取收藏品仓储
func (m *Manager) Collectible() CollectibleRepository {
	m.collectibleOnce.Do(func() {
		m.collectible = NewCollectibleRepository(m.db)
	})
	return m.collectible
}

// WithTransaction 在事务中执行操作
func (m *Manager) WithTransaction(ctx context.Context, fn func(tx *Transaction) error) error {
	return m.txManager.WithTransaction(ctx, fn)
}

// WithTransactionOptions 使用选项在事务中执行操作
func (m *Manager) WithTransactionOptions(ctx context.Context, opts *TxOptions, fn func(tx *Transaction) error) error {
	return m.txManager.WithTransactionOptions(ctx, opts, fn)
}
