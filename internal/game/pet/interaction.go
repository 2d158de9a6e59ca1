package pet

import "errors"

var (
	// ErrUnsupportedInteraction 互动类型未实现
	ErrUnsupportedInteraction = errors.New("unsupported interaction")
	// ErrTired 能量不足，无法训练
	ErrTired = errors.New("pet is too tired to train")
)

// Supported 判断互动类型是否已实现
func (p Params) Supported(kind Kind) bool {
	switch kind {
	case KindFeed, KindTrain, KindClean:
		return true
	default:
		return false
	}
}

// Settlement 返回互动对应的代币结算
func (p Params) Settlement(kind Kind) (Settlement, error) {
	switch kind {
	case KindFeed:
		return Settlement{Direction: SettleDebit, Amount: p.CostFeed}, nil
	case KindTrain:
		return Settlement{Direction: SettleDebit, Amount: p.CostTrain}, nil
	case KindClean:
		return Settlement{Direction: SettleCredit, Amount: p.RewardClean}, nil
	default:
		return Settlement{}, ErrUnsupportedInteraction
	}
}

// Check 校验互动前置条件，s 必须是已衰减到当前时刻的状态
func (p Params) Check(kind Kind, s State) error {
	switch kind {
	case KindFeed, KindClean:
		return nil
	case KindTrain:
		if s.Energy < p.TrainMinEnergy {
			return ErrTired
		}
		return nil
	default:
		return ErrUnsupportedInteraction
	}
}

// Apply 应用互动的属性变化，不修改 LastObservedAt
func (p Params) Apply(kind Kind, s State) (State, error) {
	switch kind {
	case KindFeed:
		s.Hunger = s.Hunger.Sub(p.FeedHungerRelief)
		s.Energy = s.Energy.Add(p.FeedEnergyGain)
	case KindTrain:
		s.Strength = s.Strength.Add(p.TrainStrengthGain)
		s.Energy = s.Energy.Sub(p.TrainEnergyCost)
		s.Hunger = s.Hunger.Add(p.TrainHungerGain)
	case KindClean:
		s.Happiness = s.Happiness.Add(p.CleanHappinessGain)
	default:
		return s, ErrUnsupportedInteraction
	}
	return s, nil
}

// Outcome 一次互动的纯计算结果
type Outcome struct {
	Kind       Kind
	Decayed    State // 衰减后、互动前
	Next       State // 互动后
	Decay      DecayResult
	Settlement Settlement
}

// Resolve 按 衰减 -> 前置条件 -> 属性变化 的顺序计算互动结果
//
// 代币结算由调用方在提交 Next 之前完成；失败时 Outcome 中的 Decayed
// 仍可用于展示，但不得提交 Next。
func (p Params) Resolve(kind Kind, s State, now int64) (Outcome, error) {
	out := Outcome{Kind: kind}
	if !p.Supported(kind) {
		return out, ErrUnsupportedInteraction
	}

	out.Decayed, out.Decay = p.Decay(s, now)
	if err := p.Check(kind, out.Decayed); err != nil {
		return out, err
	}

	settlement, err := p.Settlement(kind)
	if err != nil {
		return out, err
	}
	out.Settlement = settlement

	next, err := p.Apply(kind, out.Decayed)
	if err != nil {
		return out, err
	}
	out.Next = next
	return out, nil
}
