package handler

// 请求模型

// RegisterServerRequest 注册服务器请求
type RegisterServerRequest struct {
	GuildId string `json:"guildId" binding:"required"`
	AdminId string `json:"adminId" binding:"required"`
}

// AmountRequest 存入/提现金额请求，金额为人类可读的代币数
type AmountRequest struct {
	Amount    string `json:"amount" binding:"required"`
	Recipient string `json:"recipient"`
}

// SubmitWorkRequest 提交成果请求
type SubmitWorkRequest struct {
	GuildId        string `json:"guildId" binding:"required"`
	Description    string `json:"description"`
	DeliverableUrl string `json:"deliverableUrl"`
}

// QuoteDisputeRequest 争议质押报价请求
type QuoteDisputeRequest struct {
	GuildId string `json:"guildId" binding:"required"`
}

// OpenDisputeRequest 开争议请求，必须带确认令牌或回传的质押金额
type OpenDisputeRequest struct {
	GuildId      string `json:"guildId" binding:"required"`
	ConfirmToken string `json:"confirmToken"`
	StakeAmount  string `json:"stakeAmount"`
}

// ResolveDisputeRequest 仲裁请求
type ResolveDisputeRequest struct {
	FavorContributor *bool `json:"favorContributor" binding:"required"`
}

// BatchSettleRequest 批量结算请求
type BatchSettleRequest struct {
	CommitIds []int64 `json:"commitIds" binding:"required"`
}

// UpsertUserRequest 用户名绑定请求
type UpsertUserRequest struct {
	Username      string `json:"username" binding:"required"`
	WalletAddress string `json:"walletAddress" binding:"required"`
	DiscordId     string `json:"discordId"`
}
