package logic

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/blues/wcs/internal/errs"
	"github.com/blues/wcs/internal/model"
	"github.com/google/uuid"
)

// 质押确认的有效期。开争议是不可逆的资金转移，不能由一条
// 含糊的指令直接触发，必须先报价再在限时内确认。
const quoteTTL = 30 * time.Second

// DisputeLogic 争议业务逻辑
type DisputeLogic struct {
	gw Gateway

	mu     sync.Mutex
	quotes map[string]stakeQuote
	now    func() time.Time
}

type stakeQuote struct {
	guildId   string
	commitId  int64
	stake     *big.Int
	expiresAt time.Time
}

// NewDisputeLogic 创建争议业务逻辑
func NewDisputeLogic(gw Gateway) *DisputeLogic {
	return &DisputeLogic{
		gw:     gw,
		quotes: make(map[string]stakeQuote),
		now:    time.Now,
	}
}

// QuoteResult 质押报价
type QuoteResult struct {
	CommitId     int64  `json:"commitId"`
	StakeAmount  string `json:"stakeAmount"`
	ConfirmToken string `json:"confirmToken"`
	ExpiresInSec int64  `json:"expiresInSec"`
}

// Quote 计算开争议所需质押并发放一次性确认令牌
func (l *DisputeLogic) Quote(ctx context.Context, guildId string, commitId int64) (*QuoteResult, error) {
	if guildId == "" {
		return nil, errs.New(errs.KindValidation, "guildId is required")
	}

	cm, err := l.gw.GetCommitment(ctx, commitId)
	if err != nil {
		return nil, err
	}
	if !cm.Exists() {
		return nil, errs.Newf(errs.KindNotFound, "commitment #%d not found", commitId)
	}
	if cm.State != model.StateSubmitted {
		return nil, errs.Newf(errs.KindValidation, "commitment #%d is %s, disputes require submitted work", commitId, cm.State)
	}

	stake, err := l.gw.CalculateStake(ctx, commitId)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	l.mu.Lock()
	l.purgeExpiredLocked()
	l.quotes[token] = stakeQuote{
		guildId:   guildId,
		commitId:  commitId,
		stake:     stake,
		expiresAt: l.now().Add(quoteTTL),
	}
	l.mu.Unlock()

	return &QuoteResult{
		CommitId:     commitId,
		StakeAmount:  stake.String(),
		ConfirmToken: token,
		ExpiresInSec: int64(quoteTTL / time.Second),
	}, nil
}

// OpenResult 开争议结果
type OpenResult struct {
	CommitId    int64  `json:"commitId"`
	StakeAmount string `json:"stakeAmount"`
	TxHash      string `json:"txHash"`
}

// Open 开启争议。必须携带有效的确认令牌，或显式回传与链上报价一致的
// 质押金额作为确认；两者都没有就拒绝——没有确认的争议交易不允许上链。
func (l *DisputeLogic) Open(ctx context.Context, guildId string, commitId int64, confirmToken, stakeAmount string) (*OpenResult, error) {
	if guildId == "" {
		return nil, errs.New(errs.KindValidation, "guildId is required")
	}

	stake, err := l.confirmedStake(ctx, guildId, commitId, confirmToken, stakeAmount)
	if err != nil {
		return nil, err
	}

	cm, err := l.gw.GetCommitment(ctx, commitId)
	if err != nil {
		return nil, err
	}
	if !cm.Exists() {
		return nil, errs.Newf(errs.KindNotFound, "commitment #%d not found", commitId)
	}
	if cm.State != model.StateSubmitted {
		if cm.State.IsTerminal() || cm.State == model.StateDisputed {
			return nil, errs.Newf(errs.KindAlreadyFinal, "commitment #%d is already %s", commitId, cm.State)
		}
		return nil, errs.Newf(errs.KindValidation, "commitment #%d is %s, disputes require submitted work", commitId, cm.State)
	}

	// 争议窗口校验基于链时间，最终判定仍在合约
	chainTime, err := l.gw.ChainTime(ctx)
	if err != nil {
		return nil, err
	}
	if chainTime > cm.SubmittedAt+cm.DisputeWindow {
		return nil, errs.Newf(errs.KindValidation, "dispute window for commitment #%d has closed", commitId)
	}

	txHash, err := l.gw.OpenDispute(ctx, guildId, commitId, stake)
	if err != nil {
		return nil, err
	}

	return &OpenResult{
		CommitId:    commitId,
		StakeAmount: stake.String(),
		TxHash:      txHash,
	}, nil
}

// Get 读取争议详情
func (l *DisputeLogic) Get(ctx context.Context, commitId int64) (*model.Dispute, error) {
	dispute, err := l.gw.GetDispute(ctx, commitId)
	if err != nil {
		return nil, err
	}
	if !dispute.Exists() {
		return nil, errs.Newf(errs.KindNotFound, "no dispute found for commitment #%d", commitId)
	}
	return dispute, nil
}

// ResolveResult 仲裁结果
type ResolveResult struct {
	CommitId         int64  `json:"commitId"`
	FavorContributor bool   `json:"favorContributor"`
	TxHash           string `json:"txHash"`
}

// Resolve 仲裁争议，已仲裁过的争议再次仲裁必须失败而非静默成功
func (l *DisputeLogic) Resolve(ctx context.Context, commitId int64, favorContributor bool) (*ResolveResult, error) {
	dispute, err := l.Get(ctx, commitId)
	if err != nil {
		return nil, err
	}
	if dispute.Resolved {
		return nil, errs.Newf(errs.KindAlreadyFinal, "dispute for commitment #%d is already resolved", commitId)
	}

	txHash, err := l.gw.ResolveDispute(ctx, commitId, favorContributor)
	if err != nil {
		return nil, err
	}

	return &ResolveResult{
		CommitId:         commitId,
		FavorContributor: favorContributor,
		TxHash:           txHash,
	}, nil
}

// confirmedStake 校验确认令牌或显式质押金额，令牌单次有效。
// 显式金额必须与链上报价完全一致，错误的回声不值得一笔revert的gas。
func (l *DisputeLogic) confirmedStake(ctx context.Context, guildId string, commitId int64, confirmToken, stakeAmount string) (*big.Int, error) {
	if confirmToken != "" {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.purgeExpiredLocked()

		quote, ok := l.quotes[confirmToken]
		if !ok {
			return nil, errs.New(errs.KindValidation, "confirmation expired or unknown - request a new stake quote")
		}
		if quote.guildId != guildId || quote.commitId != commitId {
			return nil, errs.New(errs.KindValidation, "confirmation token does not match this dispute")
		}
		delete(l.quotes, confirmToken)
		return quote.stake, nil
	}

	if stakeAmount != "" {
		stake, ok := newBigInt(stakeAmount)
		if !ok || stake.Sign() <= 0 {
			return nil, errs.Newf(errs.KindValidation, "invalid stake amount: %q", stakeAmount)
		}
		required, err := l.gw.CalculateStake(ctx, commitId)
		if err != nil {
			return nil, err
		}
		if stake.Cmp(required) != 0 {
			return nil, errs.Newf(errs.KindValidation,
				"stake amount %s does not match required stake %s - request a new quote", stake, required)
		}
		return stake, nil
	}

	return nil, errs.New(errs.KindValidation, "stake confirmation required - request a quote first")
}

func (l *DisputeLogic) purgeExpiredLocked() {
	now := l.now()
	for token, quote := range l.quotes {
		if now.After(quote.expiresAt) {
			delete(l.quotes, token)
		}
	}
}
