package logic

import (
	"context"
	"sync"

	"github.com/blues/wcs/internal/errs"
	"golang.org/x/sync/errgroup"
)

// SettlementLogic 结算业务逻辑
type SettlementLogic struct {
	gw Gateway
}

// NewSettlementLogic 创建结算业务逻辑
func NewSettlementLogic(gw Gateway) *SettlementLogic {
	return &SettlementLogic{gw: gw}
}

// PendingSettlement 待结算承诺
type PendingSettlement struct {
	CommitId      int64  `json:"commitId"`
	Contributor   string `json:"contributor"`
	Amount        string `json:"amount"`
	Deadline      int64  `json:"deadline"`
	DisputeWindow int64  `json:"disputeWindow"`
}

// Pending 扫描全部承诺，返回当前满足结算条件的集合。
// 无持久状态，每次都从链上全量重算，天然幂等。
func (l *SettlementLogic) Pending(ctx context.Context) ([]PendingSettlement, error) {
	count, err := l.gw.CommitmentCount(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*PendingSettlement, count)
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)

	for id := int64(0); id < count; id++ {
		id := id
		g.Go(func() error {
			ok, err := l.gw.CanSettle(gctx, id)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			cm, err := l.gw.GetCommitment(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			results[id] = &PendingSettlement{
				CommitId:      id,
				Contributor:   cm.Contributor,
				Amount:        cm.Amount,
				Deadline:      cm.Deadline,
				DisputeWindow: cm.DisputeWindow,
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pending := make([]PendingSettlement, 0, len(results))
	for _, p := range results {
		if p != nil {
			pending = append(pending, *p)
		}
	}
	return pending, nil
}

// BatchResult 批量结算结果
type BatchResult struct {
	SettledCount int     `json:"settledCount"`
	TxHash       string  `json:"txHash"`
	CommitIds    []int64 `json:"commitIds"`
}

// BatchSettle 批量结算。合约的批量调用是整批原子的，
// 先逐个校验资格，避免一个过期ID拖垮整批交易。
func (l *SettlementLogic) BatchSettle(ctx context.Context, commitIds []int64) (*BatchResult, error) {
	if len(commitIds) == 0 {
		return nil, errs.New(errs.KindValidation, "commitIds must not be empty")
	}

	maxBatch, err := l.gw.MaxBatchSize(ctx)
	if err != nil {
		return nil, err
	}
	if len(commitIds) > maxBatch {
		return nil, errs.Newf(errs.KindValidation, "batch size %d exceeds maximum %d", len(commitIds), maxBatch)
	}

	var ineligible []int64
	for _, id := range commitIds {
		ok, err := l.gw.CanSettle(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			ineligible = append(ineligible, id)
		}
	}
	if len(ineligible) > 0 {
		return nil, errs.Newf(errs.KindValidation, "commitments not settlable: %v", ineligible)
	}

	txHash, err := l.gw.BatchSettle(ctx, commitIds)
	if err != nil {
		return nil, err
	}

	return &BatchResult{
		SettledCount: len(commitIds),
		TxHash:       txHash,
		CommitIds:    commitIds,
	}, nil
}

// ProtocolStats 协议统计与常量
type ProtocolStats struct {
	TotalCommitments int64  `json:"totalCommitments"`
	ContractAddress  string `json:"contractAddress"`
	TokenAddress     string `json:"tokenAddress"`
	RegistrationFee  string `json:"registrationFee"`
	BaseStake        string `json:"baseStake"`
	Arbitrator       string `json:"arbitrator"`
	RelayerAddress   string `json:"relayerAddress"`
	CanWrite         bool   `json:"canWrite"`
}

// Stats 读取协议统计信息
func (l *SettlementLogic) Stats(ctx context.Context) (*ProtocolStats, error) {
	count, err := l.gw.CommitmentCount(ctx)
	if err != nil {
		return nil, err
	}
	fee, err := l.gw.RegistrationFee(ctx)
	if err != nil {
		return nil, err
	}
	baseStake, err := l.gw.BaseStake(ctx)
	if err != nil {
		return nil, err
	}
	arbitrator, err := l.gw.Arbitrator(ctx)
	if err != nil {
		return nil, err
	}
	token, err := l.gw.TokenAddress(ctx)
	if err != nil {
		return nil, err
	}

	return &ProtocolStats{
		TotalCommitments: count,
		ContractAddress:  l.gw.ContractAddress(),
		TokenAddress:     token,
		RegistrationFee:  fee.String(),
		BaseStake:        baseStake.String(),
		Arbitrator:       arbitrator,
		RelayerAddress:   l.gw.RelayerAddress(),
		CanWrite:         l.gw.CanWrite(),
	}, nil
}

