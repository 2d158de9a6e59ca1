package service

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	apperrors "github.com/wfunc/pet-game/internal/errors"
	"github.com/wfunc/pet-game/internal/models"
	"github.com/wfunc/pet-game/internal/repository"
)

// collectibleService 收藏品服务实现
type collectibleService struct {
	repos  *repository.Manager
	clock  clock.Clock
	logger *zap.Logger
}

// NewCollectibleService 创建收藏品服务
func NewCollectibleService(repos *repository.Manager, clk clock.Clock, log *zap.Logger) CollectibleService {
	return &collectibleService{repos: repos, clock: clk, logger: log}
}

// MintSkin 铸造皮肤
func (s *collectibleService) MintSkin(ctx context.Context, owner, seed, variantID, tier string) (*models.Collectible, error) {
	return s.mint(ctx, models.CollectibleSkin, owner, seed, variantID, tier)
}

// MintBackground 铸造背景
func (s *collectibleService) MintBackground(ctx context.Context, owner, seed, backgroundID, tier string) (*models.Collectible, error) {
	return s.mint(ctx, models.CollectibleBackground, owner, seed, backgroundID, tier)
}

func (s *collectibleService) mint(ctx context.Context, kind, owner, seed, itemID, tier string) (*models.Collectible, error) {
	// 种子和物品ID原样作为键，不做规范化
	switch {
	case owner == "":
		return nil, apperrors.New(apperrors.ErrAuthentication)
	case seed == "":
		return nil, apperrors.New(apperrors.ErrInvalidParam, "seed 不能为空")
	case itemID == "":
		return nil, apperrors.New(apperrors.ErrInvalidParam, "item_id 不能为空")
	}

	c := &models.Collectible{
		Kind:     kind,
		Owner:    owner,
		Seed:     seed,
		ItemID:   itemID,
		Tier:     tier,
		MintTime: s.clock.Now().Unix(),
	}
	if err := s.repos.Collectible().Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("收藏品铸造成功",
		zap.String("kind", kind),
		zap.String("owner", owner),
		zap.String("seed", seed),
		zap.String("item_id", itemID),
	)
	return c, nil
}

// List 列出主人的收藏品，kind 为空表示全部
func (s *collectibleService) List(ctx context.Context, owner, kind string, page, pageSize int) ([]*models.Collectible, int64, error) {
	if kind != "" && kind != models.CollectibleSkin && kind != models.CollectibleBackground {
		return nil, 0, apperrors.Newf(apperrors.ErrInvalidParam, "未知收藏品类型: %s", kind)
	}
	pagination := repository.NewPagination(page, pageSize)
	list, err := s.repos.Collectible().ListByOwner(ctx, owner, kind, pagination)
	if err != nil {
		return nil, 0, err
	}
	return list, pagination.Total, nil
}
