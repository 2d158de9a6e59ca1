package pet

// DecayResult 一次衰减计算的结果说明
type DecayResult struct {
	Intervals int  `json:"intervals"` // 实际结算的周期数
	Capped    bool `json:"capped"`    // 周期数是否被上限截断
	Regressed bool `json:"regressed"` // 观测时间早于上次观测（时钟回退）
}

// Decay 将状态按经过的时间推进到 now
//
// 时钟回退时视为零周期，状态原样返回。
// 周期数超过 MaxDecayIntervals 时按上限结算。
// 结算了至少一个周期时观测时间推到 now，不足一个周期的余量随之丢弃。
func (p Params) Decay(s State, now int64) (State, DecayResult) {
	var res DecayResult

	elapsed := now - s.LastObservedAt
	if elapsed < 0 {
		res.Regressed = true
		return s, res
	}

	period := p.SecondsPerDecay
	if period <= 0 {
		return s, res
	}

	intervals := elapsed / period
	if intervals == 0 {
		return s, res
	}

	limit := int64(p.MaxDecayIntervals)
	if limit > 0 && intervals > limit {
		intervals = limit
		res.Capped = true
	}
	n := int(intervals)
	res.Intervals = n

	s.Hunger = s.Hunger.Add(n * p.HungerDecay)
	s.Happiness = s.Happiness.Sub(n * p.HappinessDecay)
	s.Strength = s.Strength.Sub(n * p.StrengthDecay)

	s.LastObservedAt = now
	return s, res
}
