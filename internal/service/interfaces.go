package service

import (
	"context"

	"github.com/wfunc/pet-game/internal/game/pet"
	"github.com/wfunc/pet-game/internal/models"
)

// PetService 宠物服务接口
type PetService interface {
	// InitializePet 为身份槽创建宠物，调用者成为主人
	InitializePet(ctx context.Context, caller, petID string) (*PetView, error)
	// GetPet 返回衰减到当前时刻的视图，不落库
	GetPet(ctx context.Context, petID string) (*PetView, error)
	// ListPets 列出主人的宠物（衰减后视图）
	ListPets(ctx context.Context, owner string, page, pageSize int) ([]*PetView, int64, error)
	// Interact 执行一次互动：衰减、校验、结算、属性变化、记录，全部在一个事务内
	Interact(ctx context.Context, caller, petID string, kind pet.Kind) (*InteractResult, error)
	// ListEvents 宠物互动历史，最新在前
	ListEvents(ctx context.Context, petID string, page, pageSize int) ([]*models.PetEvent, int64, error)
	// ListLedger 宠物互动产生的代币流水，仅主人可见
	ListLedger(ctx context.Context, caller, petID string) ([]*models.Transaction, error)

	// Params 当前规则参数
	Params() pet.Params
	// UpdateParams 替换规则参数（配置热更新）
	UpdateParams(p pet.Params) error
}

// WalletService 代币账户服务接口
type WalletService interface {
	GetBalance(ctx context.Context, owner string) (*models.Wallet, error)
	// Summary 余额及按类型汇总的流水总额
	Summary(ctx context.Context, owner string) (*WalletSummary, error)
	ListTransactions(ctx context.Context, owner string, page, pageSize int) ([]*models.Transaction, int64, error)
	// GetTransaction 按流水号查询，只能查到自己的流水
	GetTransaction(ctx context.Context, owner, orderNo string) (*models.Transaction, error)
	// Grant 管理员发放代币（空投）
	Grant(ctx context.Context, operator, owner string, amount int64) (*models.Transaction, error)
}

// CollectibleService 收藏品服务接口
type CollectibleService interface {
	MintSkin(ctx context.Context, owner, seed, variantID, tier string) (*models.Collectible, error)
	MintBackground(ctx context.Context, owner, seed, backgroundID, tier string) (*models.Collectible, error)
	List(ctx context.Context, owner, kind string, page, pageSize int) ([]*models.Collectible, int64, error)
}

// PetView 宠物对外视图
type PetView struct {
	PetID          string    `json:"pet_id"`
	Owner          string    `json:"owner"`
	State          pet.State `json:"state"`
	PendingRewards int64     `json:"pending_rewards"`
	ObservedAt     int64     `json:"observed_at"` // 计算视图时的时刻
	Intervals      int       `json:"intervals"`   // 视图中已计入的未落库衰减周期
}

// WalletSummary 钱包汇总，金额为最小单位
type WalletSummary struct {
	Owner         string `json:"owner"`
	Balance       int64  `json:"balance"`
	TotalBurned   int64  `json:"total_burned"`
	TotalMinted   int64  `json:"total_minted"` // 含管理员发放
	TotalRewarded int64  `json:"total_rewarded"`
	TotalGranted  int64  `json:"total_granted"`
}

// InteractResult 互动结果
type InteractResult struct {
	Event       pet.Event           `json:"event"`
	Decay       pet.DecayResult     `json:"decay"`
	Settlement  pet.Settlement      `json:"settlement"`
	Transaction *models.Transaction `json:"transaction,omitempty"`
	Balance     int64               `json:"balance"`
}
