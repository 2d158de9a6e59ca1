package pet

import (
	"fmt"
	"strings"
)

// 属性边界
const (
	MinStat Stat = 0
	MaxStat Stat = 100
)

// Stat 宠物属性值，取值范围 [0, 100]
type Stat uint8

// Add 饱和加法，结果不超过 MaxStat
func (s Stat) Add(delta int) Stat {
	return clampStat(int(s) + delta)
}

// Sub 饱和减法，结果不低于 MinStat
func (s Stat) Sub(delta int) Stat {
	return clampStat(int(s) - delta)
}

func clampStat(v int) Stat {
	if v < int(MinStat) {
		return MinStat
	}
	if v > int(MaxStat) {
		return MaxStat
	}
	return Stat(v)
}

// State 宠物状态快照
// Hunger 极性相反：0 表示吃饱，100 表示饥饿
type State struct {
	Hunger         Stat  `json:"hunger"`
	Strength       Stat  `json:"strength"`
	Happiness      Stat  `json:"happiness"`
	Energy         Stat  `json:"energy"`
	LastObservedAt int64 `json:"last_observed_at"` // Unix秒
}

// InBounds 检查所有属性是否在合法范围内
func (s State) InBounds() bool {
	for _, v := range []Stat{s.Hunger, s.Strength, s.Happiness, s.Energy} {
		if v > MaxStat {
			return false
		}
	}
	return true
}

// Kind 互动类型
type Kind int

const (
	KindFeed  Kind = iota // 喂食
	KindTrain             // 训练
	KindClean             // 清洁
	KindFight             // 战斗（保留，未实现）
)

var kindNames = map[Kind]string{
	KindFeed:  "feed",
	KindTrain: "train",
	KindClean: "clean",
	KindFight: "fight",
}

// String 返回互动名称
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind 解析互动名称（不区分大小写）
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedInteraction, name)
}

// SettlementDirection 代币结算方向
type SettlementDirection string

const (
	SettleNone   SettlementDirection = ""
	SettleDebit  SettlementDirection = "burn" // 扣除（销毁）
	SettleCredit SettlementDirection = "mint" // 发放（铸造）
)

// Settlement 一次互动需要的代币结算
type Settlement struct {
	Direction SettlementDirection `json:"direction"`
	Amount    int64               `json:"amount"` // 最小单位
}

// Event 互动成功后对外发布的事件
type Event struct {
	ID        string `json:"id"`
	PetID     string `json:"pet_id"`
	Owner     string `json:"owner"`
	Action    Kind   `json:"-"`
	Name      string `json:"action"`
	State     State  `json:"state"`
	Timestamp int64  `json:"timestamp"`
}
