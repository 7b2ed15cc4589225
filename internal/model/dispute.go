package model

// Dispute 链上争议记录，每个承诺至多一条，仲裁后不可变
type Dispute struct {
	CommitId         int64  `json:"commitId"`
	Disputer         string `json:"disputer"`
	StakeAmount      string `json:"stakeAmount"` // 按合约公式计算，非自选
	CreatedAt        int64  `json:"createdAt"`
	Resolved         bool   `json:"resolved"`
	FavorContributor bool   `json:"favorContributor"`
}

// Exists 争议是否存在
func (d *Dispute) Exists() bool {
	return d.Disputer != "" && d.Disputer != ZeroAddress
}
