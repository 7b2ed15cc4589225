package model

import (
	"time"
)

// UserModel 用户名与钱包地址映射
type UserModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username      string `json:"username" gorm:"uniqueIndex;not null"`
	WalletAddress string `json:"wallet_address" gorm:"index;not null"`
	DiscordId     string `json:"discord_id"`
}

// TableName 自定义表名
func (UserModel) TableName() string {
	return "users"
}
