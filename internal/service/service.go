package service

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wfunc/pet-game/internal/events"
	"github.com/wfunc/pet-game/internal/game/pet"
	"github.com/wfunc/pet-game/internal/repository"
)

// Services 服务集合
type Services struct {
	Pet         PetService
	Wallet      WalletService
	Collectible CollectibleService
}

// NewServices 创建服务集合
func NewServices(db *gorm.DB, params pet.Params, clk clock.Clock, sink events.Sink, log *zap.Logger) (*Services, error) {
	if clk == nil {
		clk = clock.New()
	}

	// 初始化仓储
	repos := repository.NewManager(db)

	petService, err := NewPetService(repos, params, clk, sink, log.Named("pet"))
	if err != nil {
		return nil, err
	}

	return &Services{
		Pet:         petService,
		Wallet:      NewWalletService(repos, log.Named("wallet")),
		Collectible: NewCollectibleService(repos, clk, log.Named("collectible")),
	}, nil
}
