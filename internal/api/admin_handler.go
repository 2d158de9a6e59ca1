package api

import (
	"github.com/gin-gonic/gin"

	"github.com/wfunc/pet-game/internal/middleware"
	"github.com/wfunc/pet-game/internal/service"
)

// AdminHandler 管理员处理器
type AdminHandler struct {
	wallets service.WalletService
	pets    service.PetService
}

// NewAdminHandler 创建管理员处理器
func NewAdminHandler(wallets service.WalletService, pets service.PetService) *AdminHandler {
	return &AdminHandler{wallets: wallets, pets: pets}
}

// GrantRequest 发放代币请求，amount 为最小单位
type GrantRequest struct {
	Owner  string `json:"owner" binding:"required,max=128"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
}

// Grant 发放代币
// POST /api/v1/admin/grant
func (h *AdminHandler) Grant(c *gin.Context) {
	operator, _ := middleware.GetOwner(c)

	var req GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	record, err := h.wallets.Grant(c.Request.Context(), operator, req.Owner, req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, record)
}

// ParamsResponse 当前规则参数
type ParamsResponse struct {
	SecondsPerDecay    int64 `json:"seconds_per_decay"`
	MaxDecayIntervals  int   `json:"max_decay_intervals"`
	HungerDecay        int   `json:"hunger_decay"`
	HappinessDecay     int   `json:"happiness_decay"`
	StrengthDecay      int   `json:"strength_decay"`
	FeedHungerRelief   int   `json:"feed_hunger_relief"`
	FeedEnergyGain     int   `json:"feed_energy_gain"`
	TrainMinEnergy     int   `json:"train_min_energy"`
	TrainStrengthGain  int   `json:"train_strength_gain"`
	TrainEnergyCost    int   `json:"train_energy_cost"`
	TrainHungerGain    int   `json:"train_hunger_gain"`
	CleanHappinessGain int   `json:"clean_happiness_gain"`
	CostFeed           int64 `json:"cost_feed"`
	CostTrain          int64 `json:"cost_train"`
	RewardClean        int64 `json:"reward_clean"`
}

// GetParams 查看当前生效的规则参数
// GET /api/v1/admin/params
func (h *AdminHandler) GetParams(c *gin.Context) {
	p := h.pets.Params()
	ok(c, ParamsResponse{
		SecondsPerDecay:    p.SecondsPerDecay,
		MaxDecayIntervals:  p.MaxDecayIntervals,
		HungerDecay:        p.HungerDecay,
		HappinessDecay:     p.HappinessDecay,
		StrengthDecay:      p.StrengthDecay,
		FeedHungerRelief:   p.FeedHungerRelief,
		FeedEnergyGain:     p.FeedEnergyGain,
		TrainMinEnergy:     int(p.TrainMinEnergy),
		TrainStrengthGain:  p.TrainStrengthGain,
		TrainEnergyCost:    p.TrainEnergyCost,
		TrainHungerGain:    p.TrainHungerGain,
		CleanHappinessGain: p.CleanHappinessGain,
		CostFeed:           p.CostFeed,
		CostTrain:          p.CostTrain,
		RewardClean:        p.RewardClean,
	})
}
