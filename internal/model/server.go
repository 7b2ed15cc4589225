package model

// ServerAccount 链上服务器账户，每个注册社区一条，只停用不删除。
// 合约保证 availableBalance == totalDeposited - totalSpent 恒成立。
type ServerAccount struct {
	GuildId          string `json:"guildId"`
	AdminId          string `json:"adminId"` // 有权提现的管理员外部ID
	IsActive         bool   `json:"isActive"`
	RegisteredAt     int64  `json:"registeredAt"`
	TotalDeposited   string `json:"totalDeposited"`
	TotalSpent       string `json:"totalSpent"`
	AvailableBalance string `json:"availableBalance"`
}

// Exists 服务器是否已注册过
func (s *ServerAccount) Exists() bool {
	return s.IsActive || s.RegisteredAt != 0
}

// ServerBalance 服务器余额三元组
type ServerBalance struct {
	TotalDeposited   string `json:"totalDeposited"`
	TotalSpent       string `json:"totalSpent"`
	AvailableBalance string `json:"availableBalance"`
}
