package model

import (
	"time"
)

// CommitmentIndexModel 承诺二级索引。
// 链上只有一个全局数组，没有按服务器或按贡献者的索引，列表查询需要全量线性扫描；
// 该表由生命周期服务在写路径上增量维护，作为列表查询的快路径。权威数据始终在链上。
type CommitmentIndexModel struct {
	CommitId    int64     `json:"commit_id" gorm:"primaryKey;autoIncrement:false"`
	GuildId     string    `json:"guild_id" gorm:"index;not null"`
	Contributor string    `json:"contributor" gorm:"index;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName 自定义表名
func (CommitmentIndexModel) TableName() string {
	return "commitment_index"
}
