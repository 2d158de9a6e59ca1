package models

// 流水类型
const (
	TxTypeBurn  = "burn"  // 互动扣费
	TxTypeMint  = "mint"  // 互动奖励
	TxTypeGrant = "grant" // 管理员发放
)

// 流水状态
const (
	TxStatusSuccess = "success"
)

// Wallet 代币账户表
// 余额以最小单位存储
type Wallet struct {
	BaseModel
	Owner       string `gorm:"uniqueIndex;size:128;not null" json:"owner"`
	Balance     int64  `gorm:"not null;default:0" json:"balance"`
	TotalBurned int64  `gorm:"not null;default:0" json:"total_burned"`
	TotalMinted int64  `gorm:"not null;default:0" json:"total_minted"`
}

// TableName 指定表名
func (Wallet) TableName() string {
	return "wallets"
}

// Transaction 代币流水表
type Transaction struct {
	BaseModel
	Owner         string  `gorm:"size:128;not null;index" json:"owner"`
	OrderNo       string  `gorm:"uniqueIndex;size:64;not null" json:"order_no"`
	Type          string  `gorm:"size:20;not null;index" json:"type"` // burn, mint, grant
	Amount        int64   `gorm:"not null" json:"amount"`
	BeforeBalance int64   `json:"before_balance"`
	AfterBalance  int64   `json:"after_balance"`
	Status        string  `gorm:"size:20;default:'success';index" json:"status"`
	RefID         string  `gorm:"size:128;index" json:"ref_id"` // 关联ID（宠物ID）
	RefType       string  `gorm:"size:50" json:"ref_type"`
	Description   string  `gorm:"size:500" json:"description"`
	Metadata      JSONMap `gorm:"type:text" json:"metadata"`
}

// TableName 指定表名
func (Transaction) TableName() string {
	return "transactions"
}
