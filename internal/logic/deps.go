package logic

import (
	"context"
	"math/big"

	"github.com/blues/wcs/internal/model"
)

// Gateway 托管合约网关，由chain.Client实现。
// 对链的“执行权限”由合约只认relayer地址来保证，这里只负责“请求权限”之前的校验。
type Gateway interface {
	CanWrite() bool
	RelayerAddress() string
	ContractAddress() string
	ChainTime(ctx context.Context) (int64, error)

	RegisterServer(ctx context.Context, guildId, adminId string) (string, error)
	DepositToServer(ctx context.Context, guildId string, amount *big.Int) (string, error)
	WithdrawFromServer(ctx context.Context, guildId, to string, amount *big.Int) (string, error)
	GetServer(ctx context.Context, guildId string) (*model.ServerAccount, error)
	GetServerBalance(ctx context.Context, guildId string) (*model.ServerBalance, error)

	CreateCommitment(ctx context.Context, guildId, contributor, token string, amount *big.Int, deadline, disputeWindow int64, specCid string) (int64, string, error)
	SubmitWork(ctx context.Context, guildId string, commitId int64, evidenceCid string) (string, error)
	GetCommitment(ctx context.Context, commitId int64) (*model.Commitment, error)
	CommitmentCount(ctx context.Context) (int64, error)
	CommitmentToServer(ctx context.Context, commitId int64) (string, error)

	OpenDispute(ctx context.Context, guildId string, commitId int64, stake *big.Int) (string, error)
	GetDispute(ctx context.Context, commitId int64) (*model.Dispute, error)
	CalculateStake(ctx context.Context, commitId int64) (*big.Int, error)
	ResolveDispute(ctx context.Context, commitId int64, favorContributor bool) (string, error)

	Settle(ctx context.Context, commitId int64) (string, error)
	BatchSettle(ctx context.Context, commitIds []int64) (string, error)
	CanSettle(ctx context.Context, commitId int64) (bool, error)

	RegistrationFee(ctx context.Context) (*big.Int, error)
	BaseStake(ctx context.Context) (*big.Int, error)
	Arbitrator(ctx context.Context) (string, error)
	TokenAddress(ctx context.Context) (string, error)
	MaxBatchSize(ctx context.Context) (int, error)
}

// Directory 身份目录，由identity.Service实现
type Directory interface {
	Resolve(username string) (string, error)
}

// EvidenceStore 证据存储，由ipfs.Service实现
type EvidenceStore interface {
	UploadJSON(ctx context.Context, name string, data interface{}) (string, error)
}

// 链读取的并发上限，列表查询是全量线性扫描（链上没有索引），限制并发避免打爆RPC节点
const scanConcurrency = 8
