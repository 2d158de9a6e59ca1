package models

import (
	"github.com/wfunc/pet-game/internal/game/pet"
)

// Pet 宠物表
// 宠物不会被删除，属性始终在 [0,100] 内
type Pet struct {
	BaseModel
	PetID          string `gorm:"uniqueIndex;size:128;not null" json:"pet_id"` // 身份槽，如NFT mint地址
	Owner          string `gorm:"size:128;not null;index" json:"owner"`
	Hunger         uint8  `gorm:"not null" json:"hunger"`
	Strength       uint8  `gorm:"not null" json:"strength"`
	Happiness      uint8  `gorm:"not null" json:"happiness"`
	Energy         uint8  `gorm:"not null" json:"energy"`
	LastObservedAt int64  `gorm:"not null" json:"last_observed_at"` // Unix秒
	PendingRewards int64  `gorm:"not null;default:0" json:"pending_rewards"`
}

// TableName 指定表名
func (Pet) TableName() string {
	return "pets"
}

// State 返回属性快照
func (p *Pet) State() pet.State {
	return pet.State{
		Hunger:         pet.Stat(p.Hunger),
		Strength:       pet.Stat(p.Strength),
		Happiness:      pet.Stat(p.Happiness),
		Energy:         pet.Stat(p.Energy),
		LastObservedAt: p.LastObservedAt,
	}
}

// SetState 写回属性快照
func (p *Pet) SetState(s pet.State) {
	p.Hunger = uint8(s.Hunger)
	p.Strength = uint8(s.Strength)
	p.Happiness = uint8(s.Happiness)
	p.Energy = uint8(s.Energy)
	p.LastObservedAt = s.LastObservedAt
}

// PetEvent 宠物互动记录
type PetEvent struct {
	BaseModel
	EventID    string `gorm:"uniqueIndex;size:64;not null" json:"event_id"`
	PetID      string `gorm:"size:128;not null;index" json:"pet_id"`
	Owner      string `gorm:"size:128;not null" json:"owner"`
	Action     string `gorm:"size:20;not null" json:"action"`
	Intervals  int    `json:"intervals"` // 本次结算的衰减周期数
	Direction  string `gorm:"size:10" json:"direction"`
	Amount     int64  `json:"amount"`
	Hunger     uint8  `json:"hunger"`
	Strength   uint8  `json:"strength"`
	Happiness  uint8  `json:"happiness"`
	Energy     uint8  `json:"energy"`
	OccurredAt int64  `gorm:"not null;index" json:"occurred_at"`
}

// TableName 指定表名
func (PetEvent) TableName() string {
	return "pet_events"
}
