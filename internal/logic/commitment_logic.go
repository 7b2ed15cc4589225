package logic

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blues/wcs/internal/errs"
	"github.com/blues/wcs/internal/logger"
	"github.com/blues/wcs/internal/model"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// CommitmentLogic 承诺生命周期业务逻辑
type CommitmentLogic struct {
	gw       Gateway
	dir      Directory
	store    EvidenceStore
	db       *gorm.DB // 二级索引，可为nil（索引缺失时回退全量扫描）
	token    string   // 结算代币地址
	decimals int
}

// NewCommitmentLogic 创建承诺业务逻辑
func NewCommitmentLogic(gw Gateway, dir Directory, store EvidenceStore, db *gorm.DB, tokenAddr string, decimals int) *CommitmentLogic {
	return &CommitmentLogic{
		gw:       gw,
		dir:      dir,
		store:    store,
		db:       db,
		token:    tokenAddr,
		decimals: decimals,
	}
}

// CreateRequest 创建承诺请求。Contributor可以是0x地址，也可以是已注册的用户名
type CreateRequest struct {
	GuildId         string  `json:"guildId"`
	Contributor     string  `json:"contributor"`
	AmountTokens    string  `json:"amount"`
	Task            string  `json:"task"`
	DeadlineDays    float64 `json:"deadlineDays"`
	DeadlineSeconds int64   `json:"deadlineSeconds"` // 提供时优先于deadlineDays
}

// CreateResult 创建承诺结果
type CreateResult struct {
	CommitId      int64  `json:"commitId"`
	TxHash        string `json:"txHash"`
	Contributor   string `json:"contributor"`
	Amount        string `json:"amount"`
	Deadline      int64  `json:"deadline"`
	DisputeWindow int64  `json:"disputeWindow"`
	SpecCid       string `json:"specCid"`
}

// specDocument 固定到IPFS的任务说明
type specDocument struct {
	Task        string `json:"task"`
	GuildId     string `json:"guildId"`
	Contributor string `json:"contributor"`
	Amount      string `json:"amount"`
	CreatedAt   int64  `json:"createdAt"`
}

// evidenceDocument 固定到IPFS的成果证据
type evidenceDocument struct {
	Description    string `json:"description"`
	DeliverableUrl string `json:"deliverableUrl"`
	SubmittedAt    int64  `json:"submittedAt"`
}

// Create 创建承诺：解析身份 -> 校验余额 -> 按链时间计算deadline ->
// 固定任务说明 -> 上链。disputeWindow与deadline偏移量取同一时长。
func (l *CommitmentLogic) Create(ctx context.Context, req *CreateRequest) (*CreateResult, error) {
	if req.GuildId == "" {
		return nil, errs.New(errs.KindValidation, "guildId is required")
	}
	if req.Task == "" {
		return nil, errs.New(errs.KindValidation, "task description is required")
	}

	offset := req.DeadlineSeconds
	if offset == 0 {
		offset = int64(req.DeadlineDays * 86400)
	}
	if offset <= 0 {
		return nil, errs.New(errs.KindValidation, "deadline must be a positive duration (deadlineDays or deadlineSeconds)")
	}

	// 身份解析：合约不认识用户名，必须先落到地址
	contributor, err := l.resolveContributor(req.Contributor)
	if err != nil {
		return nil, err
	}

	amount, err := ToBaseUnits(req.AmountTokens, l.decimals)
	if err != nil {
		return nil, err
	}
	if amount.Sign() <= 0 {
		return nil, errs.New(errs.KindValidation, "amount must be positive")
	}

	server, err := l.gw.GetServer(ctx, req.GuildId)
	if err != nil {
		return nil, err
	}
	if !server.Exists() {
		return nil, errs.Newf(errs.KindNotFound, "server %s is not registered", req.GuildId)
	}
	if available, ok := newBigInt(server.AvailableBalance); ok && amount.Cmp(available) > 0 {
		return nil, errs.Newf(errs.KindInsufficient,
			"insufficient server balance: requested %s, available %s", amount, available)
	}

	// deadline基于链时间计算，本地时钟与区块时间的偏差不可依赖
	chainTime, err := l.gw.ChainTime(ctx)
	if err != nil {
		return nil, err
	}
	deadline := chainTime + offset
	disputeWindow := offset

	specCid, err := l.store.UploadJSON(ctx, fmt.Sprintf("spec-%s-%d", req.GuildId, chainTime), &specDocument{
		Task:        req.Task,
		GuildId:     req.GuildId,
		Contributor: contributor,
		Amount:      amount.String(),
		CreatedAt:   chainTime,
	})
	if err != nil {
		return nil, err
	}

	commitId, txHash, err := l.gw.CreateCommitment(ctx, req.GuildId, contributor, l.token, amount, deadline, disputeWindow, specCid)
	if err != nil {
		return nil, err
	}

	l.indexCommitment(commitId, req.GuildId, contributor)

	return &CreateResult{
		CommitId:      commitId,
		TxHash:        txHash,
		Contributor:   contributor,
		Amount:        amount.String(),
		Deadline:      deadline,
		DisputeWindow: disputeWindow,
		SpecCid:       specCid,
	}, nil
}

// SubmitResult 提交成果结果
type SubmitResult struct {
	CommitId    int64  `json:"commitId"`
	TxHash      string `json:"txHash"`
	EvidenceCid string `json:"evidenceCid"`
}

// Submit 提交工作成果。验收代理由调用方在提交成功后另行触发，
// 代理失败不回滚也不阻塞链上状态。
func (l *CommitmentLogic) Submit(ctx context.Context, guildId string, commitId int64, description, deliverableUrl string) (*SubmitResult, error) {
	if guildId == "" {
		return nil, errs.New(errs.KindValidation, "guildId is required")
	}
	if description == "" && deliverableUrl == "" {
		return nil, errs.New(errs.KindValidation, "description or deliverableUrl is required")
	}

	cm, err := l.requireCommitment(ctx, commitId)
	if err != nil {
		return nil, err
	}
	switch cm.State {
	case model.StateFunded:
		// 正常路径
	case model.StateSubmitted:
		return nil, errs.Newf(errs.KindAlreadyFinal, "commitment #%d already has submitted work", commitId)
	default:
		return nil, errs.Newf(errs.KindAlreadyFinal, "commitment #%d is %s, cannot submit work", commitId, cm.State)
	}

	chainTime, err := l.gw.ChainTime(ctx)
	if err != nil {
		return nil, err
	}

	evidenceCid, err := l.store.UploadJSON(ctx, fmt.Sprintf("evidence-%d", commitId), &evidenceDocument{
		Description:    description,
		DeliverableUrl: deliverableUrl,
		SubmittedAt:    chainTime,
	})
	if err != nil {
		return nil, err
	}

	txHash, err := l.gw.SubmitWork(ctx, guildId, commitId, evidenceCid)
	if err != nil {
		return nil, err
	}

	return &SubmitResult{
		CommitId:    commitId,
		TxHash:      txHash,
		EvidenceCid: evidenceCid,
	}, nil
}

// Get 读取承诺详情
func (l *CommitmentLogic) Get(ctx context.Context, commitId int64) (*model.Commitment, error) {
	return l.requireCommitment(ctx, commitId)
}

// ListByServer 按服务器列出承诺。优先走二级索引，索引不完整或为空时
// 回退全量线性扫描——链上没有按服务器的索引，扫描复杂度是O(n)。
func (l *CommitmentLogic) ListByServer(ctx context.Context, guildId, filter string) ([]*model.Commitment, error) {
	if guildId == "" {
		return nil, errs.New(errs.KindValidation, "guildId is required")
	}
	if !model.ValidFilter(filter) {
		return nil, errs.Newf(errs.KindValidation, "invalid filter: %q", filter)
	}

	if ids := l.indexedIds(ctx, "guild_id = ?", guildId); ids != nil {
		return l.fetchByIds(ctx, ids, filter)
	}

	return l.scanAll(ctx, filter, func(ctx context.Context, commitId int64, cm *model.Commitment) (bool, error) {
		owner, err := l.gw.CommitmentToServer(ctx, commitId)
		if err != nil {
			return false, err
		}
		return owner == guildId, nil
	})
}

// ListByContributor 按贡献者列出承诺，同样是索引快路径加O(n)回退
func (l *CommitmentLogic) ListByContributor(ctx context.Context, address, filter string) ([]*model.Commitment, error) {
	if !isAddress(address) {
		return nil, errs.New(errs.KindValidation, "invalid contributor address")
	}
	if !model.ValidFilter(filter) {
		return nil, errs.Newf(errs.KindValidation, "invalid filter: %q", filter)
	}

	if ids := l.indexedIds(ctx, "lower(contributor) = ?", strings.ToLower(address)); ids != nil {
		return l.fetchByIds(ctx, ids, filter)
	}

	return l.scanAll(ctx, filter, func(ctx context.Context, commitId int64, cm *model.Commitment) (bool, error) {
		return strings.EqualFold(cm.Contributor, address), nil
	})
}

func (l *CommitmentLogic) resolveContributor(contributor string) (string, error) {
	if contributor == "" {
		return "", errs.New(errs.KindValidation, "contributor is required")
	}
	if isAddress(contributor) {
		return contributor, nil
	}

	address, err := l.dir.Resolve(contributor)
	if err != nil {
		if errs.KindOf(err) == errs.KindNotFound {
			return "", errs.Newf(errs.KindNotFound, "cannot resolve contributor %q to a wallet address", contributor)
		}
		return "", err
	}
	return address, nil
}

func (l *CommitmentLogic) requireCommitment(ctx context.Context, commitId int64) (*model.Commitment, error) {
	if commitId < 0 {
		return nil, errs.New(errs.KindValidation, "invalid commitment id")
	}

	cm, err := l.gw.GetCommitment(ctx, commitId)
	if err != nil {
		return nil, err
	}
	if !cm.Exists() {
		return nil, errs.Newf(errs.KindNotFound, "commitment #%d not found", commitId)
	}
	return cm, nil
}

// indexCommitment 写入二级索引。索引只是快路径，写失败不影响主流程
func (l *CommitmentLogic) indexCommitment(commitId int64, guildId, contributor string) {
	if l.db == nil {
		return
	}
	row := &model.CommitmentIndexModel{
		CommitId:    commitId,
		GuildId:     guildId,
		Contributor: contributor,
	}
	if err := l.db.Create(row).Error; err != nil {
		logger.Warn("Failed to index commitment %d: %v", commitId, err)
	}
}

// indexComplete 索引行数必须覆盖链上全部承诺，快路径才可信
func indexComplete(indexed, chainCount int64) bool {
	return indexed >= chainCount
}

// indexedIds 查询二级索引，索引不可用、不完整或为空返回nil触发全量扫描。
// 索引写入是尽力而为，漏写过承诺时快路径会静默丢结果，必须先对账。
func (l *CommitmentLogic) indexedIds(ctx context.Context, query string, arg interface{}) []int64 {
	if l.db == nil {
		return nil
	}

	chainCount, err := l.gw.CommitmentCount(ctx)
	if err != nil {
		logger.Warn("Commitment count query failed, falling back to chain scan: %v", err)
		return nil
	}
	var indexed int64
	if err := l.db.WithContext(ctx).Model(&model.CommitmentIndexModel{}).Count(&indexed).Error; err != nil {
		logger.Warn("Commitment index count failed, falling back to chain scan: %v", err)
		return nil
	}
	if !indexComplete(indexed, chainCount) {
		logger.Warn("Commitment index has %d of %d rows, falling back to chain scan", indexed, chainCount)
		return nil
	}

	var rows []model.CommitmentIndexModel
	if err := l.db.WithContext(ctx).Where(query, arg).Order("commit_id").Find(&rows).Error; err != nil {
		logger.Warn("Commitment index query failed, falling back to chain scan: %v", err)
		return nil
	}
	if len(rows) == 0 {
		return nil
	}

	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.CommitId
	}
	return ids
}

// fetchByIds 并发拉取指定承诺并按过滤条件筛选
func (l *CommitmentLogic) fetchByIds(ctx context.Context, ids []int64, filter string) ([]*model.Commitment, error) {
	results := make([]*model.Commitment, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			cm, err := l.gw.GetCommitment(gctx, id)
			if err != nil {
				return err
			}
			if cm.Exists() && model.ListFilter(filter).Match(cm.State) {
				results[i] = cm
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return compact(results), nil
}

// scanAll 全量线性扫描0..commitmentCount，keep决定归属
func (l *CommitmentLogic) scanAll(ctx context.Context, filter string, keep func(context.Context, int64, *model.Commitment) (bool, error)) ([]*model.Commitment, error) {
	count, err := l.gw.CommitmentCount(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*model.Commitment, count)
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)

	for id := int64(0); id < count; id++ {
		id := id
		g.Go(func() error {
			cm, err := l.gw.GetCommitment(gctx, id)
			if err != nil {
				return err
			}
			if !cm.Exists() {
				return nil
			}
			ok, err := keep(gctx, id, cm)
			if err != nil {
				return err
			}
			if ok && model.ListFilter(filter).Match(cm.State) {
				mu.Lock()
				results[id] = cm
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return compact(results), nil
}

func compact(in []*model.Commitment) []*model.Commitment {
	out := make([]*model.Commitment, 0, len(in))
	for _, cm := range in {
		if cm != nil {
			out = append(out, cm)
		}
	}
	return out
}
