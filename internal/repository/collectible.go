package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/wfunc/pet-game/internal/errors"
	"github.com/wfunc/pet-game/internal/models"
)

// CollectibleRepository 收藏品仓储接口
type CollectibleRepository interface {
	BaseRepository
	Create(ctx context.Context, c *models.Collectible) error
	FindByKey(ctx context.Context, kind, owner, seed string) (*models.Collectible, error)
	ListByOwner(ctx context.Context, owner, kind string, pagination *Pagination) ([]*models.Collectible, error)
}

// collectibleRepo 收藏品仓储实现
type collectibleRepo struct {
	*BaseRepo
}

// NewCollectibleRepository 创建收藏品仓储
func NewCollectibleRepository(db *gorm.DB) CollectibleRepository {
	return &collectibleRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 仅在 (kind, owner, seed) 未被占用时创建
func (r *collectibleRepo) Create(ctx context.Context, c *models.Collectible) error {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Collectible{}).
		Where("kind = ? AND owner = ? AND seed = ?", c.Kind, c.Owner, c.Seed).
		Count(&count).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	if count > 0 {
		return apperrors.Newf(apperrors.ErrCollectibleExists, "%s/%s/%s", c.Kind, c.Owner, c.Seed)
	}

	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if isDuplicateKey(err) {
			return apperrors.Newf(apperrors.ErrCollectibleExists, "%s/%s/%s", c.Kind, c.Owner, c.Seed)
		}
		return apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}
	return nil
}

// FindByKey 根据键查找
func (r *collectibleRepo) FindByKey(ctx context.Context, kind, owner, seed string) (*models.Collectible, error) {
	var c models.Collectible
	err := r.db.WithContext(ctx).
		Where("kind = ? AND owner = ? AND seed = ?", kind, owner, seed).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound, "收藏品不存在")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return &c, nil
}

// ListByOwner 分页查询，kind 为空时返回全部类型
func (r *collectibleRepo) ListByOwner(ctx context.Context, owner, kind string, pagination *Pagination) ([]*models.Collectible, error) {
	var items []*models.Collectible
	query := r.db.WithContext(ctx).Model(&models.Collectible{}).Where("owner = ?", owner)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	query = query.Session(&gorm.Session{})

	if err := query.Count(&pagination.Total).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}

	err := query.Scopes(Paginate(pagination)).Order("mint_time DESC").Order("id DESC").Find(&items).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return items, nil
}

// WithTx 使用事务
func (r *collectibleRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &collectibleRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
