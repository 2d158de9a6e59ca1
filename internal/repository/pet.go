package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/wfunc/pet-game/internal/errors"
	"github.com/wfunc/pet-game/internal/game/pet"
	"github.com/wfunc/pet-game/internal/models"
)

// PetRepository 宠物仓储接口
type PetRepository interface {
	BaseRepository
	Create(ctx context.Context, p *models.Pet) error
	FindByPetID(ctx context.Context, petID string) (*models.Pet, error)
	LockForUpdate(ctx context.Context, petID string) (*models.Pet, error)
	SaveState(ctx context.Context, petID string, state pet.State) error
	ListByOwner(ctx context.Context, owner string, pagination *Pagination) ([]*models.Pet, error)
}

// petRepo 宠物仓储实现
type petRepo struct {
	*BaseRepo
}

// NewPetRepository 创建宠物仓储
func NewPetRepository(db *gorm.DB) PetRepository {
	return &petRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建宠物，身份槽已占用时返回 ErrPetExists
func (r *petRepo) Create(ctx context.Context, p *models.Pet) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Pet{}).Where("pet_id = ?", p.PetID).Count(&count).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	if count > 0 {
		return apperrors.New(apperrors.ErrPetExists, p.PetID)
	}

	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if isDuplicateKey(err) {
			return apperrors.New(apperrors.ErrPetExists, p.PetID)
		}
		return apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}
	return nil
}

// FindByPetID 根据身份槽查找宠物
func (r *petRepo) FindByPetID(ctx context.Context, petID string) (*models.Pet, error) {
	var p models.Pet
	err := r.db.WithContext(ctx).Where("pet_id = ?", petID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrPetNotFound, petID)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return &p, nil
}

// LockForUpdate 锁定宠物行（悲观锁），需在事务中调用
func (r *petRepo) LockForUpdate(ctx context.Context, petID string) (*models.Pet, error) {
	var p models.Pet
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("pet_id = ?", petID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrPetNotFound, petID)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return &p, nil
}

// SaveState 写回属性和观测时间
func (r *petRepo) SaveState(ctx context.Context, petID string, state pet.State) error {
	err := r.db.WithContext(ctx).
		Model(&models.Pet{}).
		Where("pet_id = ?", petID).
		Updates(map[string]interface{}{
			"hunger":           uint8(state.Hunger),
			"strength":         uint8(state.Strength),
			"happiness":        uint8(state.Happiness),
			"energy":           uint8(state.Energy),
			"last_observed_at": state.LastObservedAt,
		}).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseUpdate)
	}
	return nil
}

// ListByOwner 查找主人的全部宠物
func (r *petRepo) ListByOwner(ctx context.Context, owner string, pagination *Pagination) ([]*models.Pet, error) {
	var pets []*models.Pet
	query := r.db.WithContext(ctx).Model(&models.Pet{}).Where("owner = ?", owner).Session(&gorm.Session{})

	if err := query.Count(&pagination.Total).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}

	err := query.Scopes(Paginate(pagination)).Order("id ASC").Find(&pets).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return pets, nil
}

// WithTx 使用事务
func (r *petRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &petRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// PetEventRepository 宠物互动记录仓储接口
type PetEventRepository interface {
	BaseRepository
	Create(ctx context.Context, event *models.PetEvent) error
	ListByPet(ctx context.Context, petID string, pagination *Pagination) ([]*models.PetEvent, error)
}

// petEventRepo 宠物互动记录仓储实现
type petEventRepo struct {
	*BaseRepo
}

// NewPetEventRepository 创建宠物互动记录仓储
func NewPetEventRepository(db *gorm.DB) PetEventRepository {
	return &petEventRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 写入互动记录
func (r *petEventRepo) Create(ctx context.Context, event *models.PetEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}
	return nil
}

// ListByPet 按时间倒序分页查询
func (r *petEventRepo) ListByPet(ctx context.Context, petID string, pagination *Pagination) ([]*models.PetEvent, error) {
	var events []*models.PetEvent
	query := r.db.WithContext(ctx).Model(&models.PetEvent{}).Where("pet_id = ?", petID).Session(&gorm.Session{})

	if err := query.Count(&pagination.Total).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}

	err := query.Scopes(Paginate(pagination)).
		Order("occurred_at DESC").
		Order("id DESC").
		Find(&events).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return events, nil
}

// WithTx 使用事务
func (r *petEventRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &petEventRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
