package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/wfunc/pet-game/internal/errors"
	"github.com/wfunc/pet-game/internal/models"
)

// LedgerRef 流水关联信息
type LedgerRef struct {
	Type        string // burn, mint, grant
	RefID       string // 宠物ID等
	RefType     string
	Description string
	Metadata    models.JSONMap
}

// WalletRepository 代币账户仓储接口
type WalletRepository interface {
	BaseRepository
	FindByOwner(ctx context.Context, owner string) (*models.Wallet, error)
	GetOrCreate(ctx context.Context, owner string) (*models.Wallet, error)
	Debit(ctx context.Context, owner string, amount int64, ref LedgerRef) (*models.Transaction, error)
	Credit(ctx context.Context, owner string, amount int64, ref LedgerRef) (*models.Transaction, error)
}

// walletRepo 代币账户仓储实现
type walletRepo struct {
	*BaseRepo
}

// NewWalletRepository 创建代币账户仓储
func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// FindByOwner 根据持有人查找账户
func (r *walletRepo) FindByOwner(ctx context.Context, owner string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).Where("owner = ?", owner).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrWalletNotFound, owner)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return &wallet, nil
}

// GetOrCreate 查找账户，不存在时创建零余额账户
func (r *walletRepo) GetOrCreate(ctx context.Context, owner string) (*models.Wallet, error) {
	wallet := models.Wallet{Owner: owner}
	err := r.db.WithContext(ctx).
		Where(models.Wallet{Owner: owner}).
		FirstOrCreate(&wallet).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}
	return &wallet, nil
}

// Debit 扣减余额并记流水，余额不足返回 ErrInsufficientTokens
// 不存在的账户视为零余额
func (r *walletRepo) Debit(ctx context.Context, owner string, amount int64, ref LedgerRef) (*models.Transaction, error) {
	if amount < 0 {
		return nil, apperrors.Newf(apperrors.ErrInvalidAmount, "%d", amount)
	}
	if amount == 0 {
		return nil, nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("owner = ? AND balance >= ?", owner, amount).
		Updates(map[string]interface{}{
			"balance":      gorm.Expr("balance - ?", amount),
			"total_burned": gorm.Expr("total_burned + ?", amount),
		})
	if result.Error != nil {
		return nil, apperrors.Wrap(result.Error, apperrors.ErrDatabaseUpdate)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.Newf(apperrors.ErrInsufficientTokens, "owner=%s amount=%d", owner, amount)
	}

	wallet, err := r.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	return r.journal(ctx, owner, amount, wallet.Balance+amount, wallet.Balance, ref)
}

// Credit 增加余额并记流水，账户不存在时自动创建
func (r *walletRepo) Credit(ctx context.Context, owner string, amount int64, ref LedgerRef) (*models.Transaction, error) {
	if amount < 0 {
		return nil, apperrors.Newf(apperrors.ErrInvalidAmount, "%d", amount)
	}
	if amount == 0 {
		return nil, nil
	}

	if _, err := r.GetOrCreate(ctx, owner); err != nil {
		return nil, err
	}

	err := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("owner = ?", owner).
		Updates(map[string]interface{}{
			"balance":      gorm.Expr("balance + ?", amount),
			"total_minted": gorm.Expr("total_minted + ?", amount),
		}).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseUpdate)
	}

	wallet, err := r.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	return r.journal(ctx, owner, amount, wallet.Balance-amount, wallet.Balance, ref)
}

func (r *walletRepo) journal(ctx context.Context, owner string, amount, before, after int64, ref LedgerRef) (*models.Transaction, error) {
	tx := &models.Transaction{
		Owner:         owner,
		OrderNo:       ref.Type + "-" + uuid.NewString(),
		Type:          ref.Type,
		Amount:        amount,
		BeforeBalance: before,
		AfterBalance:  after,
		Status:        models.TxStatusSuccess,
		RefID:         ref.RefID,
		RefType:       ref.RefType,
		Description:   ref.Description,
		Metadata:      ref.Metadata,
	}
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}
	return tx, nil
}

// WithTx 使用事务
func (r *walletRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &walletRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// TransactionRepository 代币流水仓储接口
type TransactionRepository interface {
	BaseRepository
	FindByOrderNo(ctx context.Context, orderNo string) (*models.Transaction, error)
	FindByOwner(ctx context.Context, owner string, pagination *Pagination) ([]*models.Transaction, error)
	FindByRef(ctx context.Context, refType, refID string) ([]*models.Transaction, error)
	SumByType(ctx context.Context, owner, txType string) (int64, error)
}

// transactionRepo 代币流水仓储实现
type transactionRepo struct {
	*BaseRepo
}

// NewTransactionRepository 创建代币流水仓储
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// FindByOrderNo 根据流水号查找
func (r *transactionRepo) FindByOrderNo(ctx context.Context, orderNo string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).Where("order_no = ?", orderNo).First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound, "交易记录不存在")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return &tx, nil
}

// FindByOwner 分页查找持有人的流水，最新在前
func (r *transactionRepo) FindByOwner(ctx context.Context, owner string, pagination *Pagination) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	query := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("owner = ?", owner).Session(&gorm.Session{})

	if err := query.Count(&pagination.Total).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}

	err := query.Scopes(Paginate(pagination)).
		Order("created_at DESC").
		Order("id DESC").
		Find(&txs).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return txs, nil
}

// FindByRef 查找关联到指定对象的流水
func (r *transactionRepo) FindByRef(ctx context.Context, refType, refID string) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	err := r.db.WithContext(ctx).Where("ref_id = ?", refID).Order("id ASC").Find(&txs).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return txs, nil
}

// SumByType 统计某类流水总额
func (r *transactionRepo) SumByType(ctx context.Context, owner, txType string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("owner = ? AND type = ?", owner, txType).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return total, nil
}

// WithTx 使用事务
func (r *transactionRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &transactionRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
