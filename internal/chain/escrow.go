package chain

import (
	"context"
	"math/big"

	"github.com/blues/wcs/internal/errs"
	"github.com/blues/wcs/internal/model"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// rawCommitment getCommitment返回的tuple布局
type rawCommitment struct {
	Creator       common.Address
	Contributor   common.Address
	Token         common.Address
	Amount        *big.Int
	Deadline      *big.Int
	DisputeWindow *big.Int
	SpecCid       string
	EvidenceCid   string
	State         uint8
	CreatedAt     *big.Int
	SubmittedAt   *big.Int
}

// rawDispute getDispute返回的tuple布局
type rawDispute struct {
	Disputer         common.Address
	StakeAmount      *big.Int
	CreatedAt        *big.Int
	Resolved         bool
	FavorContributor bool
}

// ============================================================================
// 服务器账户
// ============================================================================

// RegisterServer 注册服务器，合约会从relayer授权额度中扣除固定注册费
func (c *Client) RegisterServer(ctx context.Context, guildId, adminId string) (string, error) {
	gid, err := parseGuildId(guildId)
	if err != nil {
		return "", err
	}
	aid, ok := new(big.Int).SetString(adminId, 10)
	if !ok {
		return "", errs.Newf(errs.KindValidation, "invalid admin id: %q", adminId)
	}
	return c.transact(ctx, nil, "registerServer", gid, aid)
}

// DepositToServer 向服务器余额充值
func (c *Client) DepositToServer(ctx context.Context, guildId string, amount *big.Int) (string, error) {
	gid, err := parseGuildId(guildId)
	if err != nil {
		return "", err
	}
	return c.transact(ctx, nil, "depositToServer", gid, amount)
}

// WithdrawFromServer 从服务器余额提现到指定地址
func (c *Client) WithdrawFromServer(ctx context.Context, guildId, to string, amount *big.Int) (string, error) {
	gid, err := parseGuildId(guildId)
	if err != nil {
		return "", err
	}
	return c.transact(ctx, nil, "withdrawFromServer", gid, common.HexToAddress(to), amount)
}

// GetServer 读取服务器账户
func (c *Client) GetServer(ctx context.Context, guildId string) (*model.ServerAccount, error) {
	gid, err := parseGuildId(guildId)
	if err != nil {
		return nil, err
	}

	var out []interface{}
	if err := c.call(ctx, &out, "servers", gid); err != nil {
		return nil, err
	}

	return &model.ServerAccount{
		GuildId:          out[0].(*big.Int).String(),
		AdminId:          out[1].(*big.Int).String(),
		IsActive:         out[2].(bool),
		RegisteredAt:     out[3].(*big.Int).Int64(),
		TotalDeposited:   out[4].(*big.Int).String(),
		TotalSpent:       out[5].(*big.Int).String(),
		AvailableBalance: out[6].(*big.Int).String(),
	}, nil
}

// GetServerBalance 读取服务器余额三元组
func (c *Client) GetServerBalance(ctx context.Context, guildId string) (*model.ServerBalance, error) {
	gid, err := parseGuildId(guildId)
	if err != nil {
		return nil, err
	}

	var out []interface{}
	if err := c.call(ctx, &out, "getServerBalance", gid); err != nil {
		return nil, err
	}

	return &model.ServerBalance{
		TotalDeposited:   out[0].(*big.Int).String(),
		TotalSpent:       out[1].(*big.Int).String(),
		AvailableBalance: out[2].(*big.Int).String(),
	}, nil
}

// ============================================================================
// 承诺
// ============================================================================

// CreateCommitment 创建承诺并原子扣减服务器余额，返回新承诺ID。
// ID通过createCommitment之后读commitmentCount-1推导，而非解析事件；
// 这只在单写者串行化（writeMu）成立时安全，见Client注释。
func (c *Client) CreateCommitment(ctx context.Context, guildId, contributor, token string, amount *big.Int, deadline, disputeWindow int64, specCid string) (int64, string, error) {
	gid, err := parseGuildId(guildId)
	if err != nil {
		return 0, "", err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	txHash, err := c.transactLocked(ctx, nil, "createCommitment",
		gid,
		common.HexToAddress(contributor),
		common.HexToAddress(token),
		amount,
		big.NewInt(deadline),
		big.NewInt(disputeWindow),
		specCid,
	)
	if err != nil {
		return 0, "", err
	}

	count, err := c.commitmentCount(ctx)
	if err != nil {
		return 0, txHash, err
	}
	return count - 1, txHash, nil
}

// SubmitWork 提交工作成果，FUNDED -> SUBMITTED
func (c *Client) SubmitWork(ctx context.Context, guildId string, commitId int64, evidenceCid string) (string, error) {
	gid, err := parseGuildId(guildId)
	if err != nil {
		return "", err
	}
	return c.transact(ctx, nil, "submitWork", gid, big.NewInt(commitId), evidenceCid)
}

// GetCommitment 读取承诺
func (c *Client) GetCommitment(ctx context.Context, commitId int64) (*model.Commitment, error) {
	var out []interface{}
	if err := c.call(ctx, &out, "getCommitment", big.NewInt(commitId)); err != nil {
		return nil, err
	}

	raw := *abi.ConvertType(out[0], new(rawCommitment)).(*rawCommitment)
	state := model.CommitmentState(raw.State)
	return &model.Commitment{
		CommitId:      commitId,
		Creator:       raw.Creator.Hex(),
		Contributor:   raw.Contributor.Hex(),
		Token:         raw.Token.Hex(),
		Amount:        raw.Amount.String(),
		Deadline:      raw.Deadline.Int64(),
		DisputeWindow: raw.DisputeWindow.Int64(),
		SpecCid:       raw.SpecCid,
		EvidenceCid:   raw.EvidenceCid,
		State:         state,
		StateName:     state.String(),
		CreatedAt:     raw.CreatedAt.Int64(),
		SubmittedAt:   raw.SubmittedAt.Int64(),
	}, nil
}

// CommitmentCount 全局承诺计数
func (c *Client) CommitmentCount(ctx context.Context) (int64, error) {
	return c.commitmentCount(ctx)
}

func (c *Client) commitmentCount(ctx context.Context) (int64, error) {
	var out []interface{}
	if err := c.call(ctx, &out, "commitmentCount"); err != nil {
		return 0, err
	}
	return out[0].(*big.Int).Int64(), nil
}

// CommitmentToServer 承诺到服务器的旁路索引
func (c *Client) CommitmentToServer(ctx context.Context, commitId int64) (string, error) {
	var out []interface{}
	if err := c.call(ctx, &out, "commitmentToServer", big.NewInt(commitId)); err != nil {
		return "", err
	}
	return out[0].(*big.Int).String(), nil
}

// ============================================================================
// 争议
// ============================================================================

// OpenDispute 开启争议，需随交易转入质押，SUBMITTED -> DISPUTED
func (c *Client) OpenDispute(ctx context.Context, guildId string, commitId int64, stake *big.Int) (string, error) {
	gid, err := parseGuildId(guildId)
	if err != nil {
		return "", err
	}
	return c.transact(ctx, stake, "openDispute", gid, big.NewInt(commitId))
}

// GetDispute 读取争议
func (c *Client) GetDispute(ctx context.Context, commitId int64) (*model.Dispute, error) {
	var out []interface{}
	if err := c.call(ctx, &out, "getDispute", big.NewInt(commitId)); err != nil {
		return nil, err
	}

	raw := *abi.ConvertType(out[0], new(rawDispute)).(*rawDispute)
	return &model.Dispute{
		CommitId:         commitId,
		Disputer:         raw.Disputer.Hex(),
		StakeAmount:      raw.StakeAmount.String(),
		CreatedAt:        raw.CreatedAt.Int64(),
		Resolved:         raw.Resolved,
		FavorContributor: raw.FavorContributor,
	}, nil
}

// CalculateStake 链上权威的质押额计算
func (c *Client) CalculateStake(ctx context.Context, commitId int64) (*big.Int, error) {
	var out []interface{}
	if err := c.call(ctx, &out, "calculateStake", big.NewInt(commitId)); err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// ResolveDispute 仲裁争议，DISPUTED -> SETTLED/REFUNDED
func (c *Client) ResolveDispute(ctx context.Context, commitId int64, favorContributor bool) (string, error) {
	return c.transact(ctx, nil, "resolveDispute", big.NewInt(commitId), favorContributor)
}

// ============================================================================
// 结算
// ============================================================================

// Settle 结算单个承诺
func (c *Client) Settle(ctx context.Context, commitId int64) (string, error) {
	return c.transact(ctx, nil, "settle", big.NewInt(commitId))
}

// BatchSettle 批量结算，合约语义为整批原子：任一ID不可结算则整批回滚
func (c *Client) BatchSettle(ctx context.Context, commitIds []int64) (string, error) {
	ids := make([]*big.Int, len(commitIds))
	for i, id := range commitIds {
		ids[i] = big.NewInt(id)
	}
	return c.transact(ctx, nil, "batchSettle", ids)
}

// CanSettle 结算资格判定
func (c *Client) CanSettle(ctx context.Context, commitId int64) (bool, error) {
	var out []interface{}
	if err := c.call(ctx, &out, "canSettle", big.NewInt(commitId)); err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

// ============================================================================
// 协议常量
// ============================================================================

// RegistrationFee 注册费
func (c *Client) RegistrationFee(ctx context.Context) (*big.Int, error) {
	return c.bigIntConst(ctx, "registrationFee")
}

// BaseStake 质押额下限
func (c *Client) BaseStake(ctx context.Context) (*big.Int, error) {
	return c.bigIntConst(ctx, "baseStake")
}

// Arbitrator 仲裁人地址
func (c *Client) Arbitrator(ctx context.Context) (string, error) {
	var out []interface{}
	if err := c.call(ctx, &out, "arbitrator"); err != nil {
		return "", err
	}
	return out[0].(common.Address).Hex(), nil
}

// TokenAddress 结算代币地址
func (c *Client) TokenAddress(ctx context.Context) (string, error) {
	var out []interface{}
	if err := c.call(ctx, &out, "mneeToken"); err != nil {
		return "", err
	}
	return out[0].(common.Address).Hex(), nil
}

// MaxBatchSize 批量结算的合约上限
func (c *Client) MaxBatchSize(ctx context.Context) (int, error) {
	var out []interface{}
	if err := c.call(ctx, &out, "MAX_BATCH_SIZE"); err != nil {
		return 0, err
	}
	return int(out[0].(*big.Int).Int64()), nil
}

func (c *Client) bigIntConst(ctx context.Context, method string) (*big.Int, error) {
	var out []interface{}
	if err := c.call(ctx, &out, method); err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}
