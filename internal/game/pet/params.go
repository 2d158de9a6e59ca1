package pet

import (
	"errors"
	"fmt"
)

// Params 衰减与互动规则参数
// 由配置加载，作为显式参数传入衰减引擎与互动状态机
type Params struct {
	SecondsPerDecay   int64 // 每个衰减周期的秒数
	MaxDecayIntervals int   // 单次观测最多结算的周期数

	HungerDecay    int // 每周期饥饿上升
	HappinessDecay int // 每周期快乐下降
	StrengthDecay  int // 每周期力量下降

	FeedHungerRelief   int
	FeedEnergyGain     int
	TrainMinEnergy     Stat
	TrainStrengthGain  int
	TrainEnergyCost    int
	TrainHungerGain    int
	CleanHappinessGain int

	CostFeed    int64 // 最小单位
	CostTrain   int64
	RewardClean int64

	Initial State // 新宠物初始属性（LastObservedAt 忽略）
}

// MaxDecayIntervalsLimit 周期上限的最大可配置值
// 与不超过 MaxStat 的单周期变化量相乘时不会溢出
const MaxDecayIntervalsLimit = 1 << 16

// TokenUnit 返回 decimals 位小数对应的最小单位倍数
func TokenUnit(decimals int) int64 {
	unit := int64(1)
	for i := 0; i < decimals; i++ {
		unit *= 10
	}
	return unit
}

// DefaultParams 默认参数
func DefaultParams() Params {
	unit := TokenUnit(6)
	return Params{
		SecondsPerDecay:   3600,
		MaxDecayIntervals: 255,

		HungerDecay:    5,
		HappinessDecay: 5,
		StrengthDecay:  2,

		FeedHungerRelief:   20,
		FeedEnergyGain:     5,
		TrainMinEnergy:     20,
		TrainStrengthGain:  10,
		TrainEnergyCost:    20,
		TrainHungerGain:    10,
		CleanHappinessGain: 20,

		CostFeed:    10 * unit,
		CostTrain:   15 * unit,
		RewardClean: 5 * unit,

		Initial: State{
			Hunger:    0,
			Strength:  50,
			Happiness: 100,
			Energy:    100,
		},
	}
}

// Validate 校验参数
func (p Params) Validate() error {
	var errs []error
	if p.SecondsPerDecay <= 0 {
		errs = append(errs, fmt.Errorf("seconds_per_decay 必须为正数: %d", p.SecondsPerDecay))
	}
	if p.MaxDecayIntervals <= 0 || p.MaxDecayIntervals > MaxDecayIntervalsLimit {
		errs = append(errs, fmt.Errorf("max_decay_intervals 超出范围 (1-%d): %d", MaxDecayIntervalsLimit, p.MaxDecayIntervals))
	}
	for name, v := range map[string]int{
		"hunger_decay":         p.HungerDecay,
		"happiness_decay":      p.HappinessDecay,
		"strength_decay":       p.StrengthDecay,
		"feed_hunger_relief":   p.FeedHungerRelief,
		"feed_energy_gain":     p.FeedEnergyGain,
		"train_strength_gain":  p.TrainStrengthGain,
		"train_energy_cost":    p.TrainEnergyCost,
		"train_hunger_gain":    p.TrainHungerGain,
		"clean_happiness_gain": p.CleanHappinessGain,
	} {
		if v < 0 || v > int(MaxStat) {
			errs = append(errs, fmt.Errorf("%s 超出范围 (0-%d): %d", name, MaxStat, v))
		}
	}
	for name, v := range map[string]int64{
		"cost_feed":    p.CostFeed,
		"cost_train":   p.CostTrain,
		"reward_clean": p.RewardClean,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s 不能为负数: %d", name, v))
		}
	}
	if p.TrainMinEnergy > MaxStat {
		errs = append(errs, fmt.Errorf("train_min_energy 超出范围: %d", p.TrainMinEnergy))
	}
	if !p.Initial.InBounds() {
		errs = append(errs, errors.New("初始属性超出范围"))
	}
	return errors.Join(errs...)
}
