package models

// 收藏品类型
const (
	CollectibleSkin       = "skin"
	CollectibleBackground = "background"
)

// Collectible 收藏品表
// (kind, owner, seed) 唯一，创建后不可修改
type Collectible struct {
	BaseModel
	Kind     string `gorm:"size:20;not null;uniqueIndex:idx_collectible_key,priority:1" json:"kind"`
	Owner    string `gorm:"size:128;not null;uniqueIndex:idx_collectible_key,priority:2;index" json:"owner"`
	Seed     string `gorm:"size:128;not null;uniqueIndex:idx_collectible_key,priority:3" json:"seed"`
	ItemID   string `gorm:"size:128;not null" json:"item_id"` // 皮肤变体ID或背景ID
	Tier     string `gorm:"size:32" json:"tier"`
	MintTime int64  `gorm:"not null" json:"mint_time"`
}

// TableName 指定表名
func (Collectible) TableName() string {
	return "collectibles"
}
