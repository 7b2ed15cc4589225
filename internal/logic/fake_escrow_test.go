package logic

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/blues/wcs/internal/errs"
	"github.com/blues/wcs/internal/model"
)

const (
	testRelayer     = "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"
	testContract    = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	testToken       = "0x1000000000000000000000000000000000000001"
	testArbitrator  = "0x2000000000000000000000000000000000000002"
	testContributor = "0x3000AbCd0000000000000000000000000000Ef03"
)

// fakeEscrow 内存版托管合约，按合约语义维护余额与状态机，
// 供logic层测试使用。
type fakeEscrow struct {
	mu        sync.Mutex
	writable  bool
	chainTime int64
	baseStake *big.Int
	regFee    *big.Int
	maxBatch  int
	txSeq     int

	servers     map[string]*fakeServer
	commitments []*fakeCommitment
	disputes    map[int64]*model.Dispute
}

type fakeServer struct {
	adminId      string
	registeredAt int64
	deposited    *big.Int
	spent        *big.Int
}

type fakeCommitment struct {
	guildId       string
	contributor   string
	token         string
	amount        *big.Int
	deadline      int64
	disputeWindow int64
	specCid       string
	evidenceCid   string
	state         model.CommitmentState
	createdAt     int64
	submittedAt   int64
}

func newFakeEscrow() *fakeEscrow {
	return &fakeEscrow{
		writable:  true,
		chainTime: 1_700_000_000,
		baseStake: big.NewInt(1_000_000),
		regFee:    big.NewInt(500),
		maxBatch:  3,
		servers:   make(map[string]*fakeServer),
		disputes:  make(map[int64]*model.Dispute),
	}
}

func (f *fakeEscrow) nextTx() string {
	f.txSeq++
	return fmt.Sprintf("0xtx%04d", f.txSeq)
}

func (f *fakeEscrow) advance(seconds int64) {
	f.mu.Lock()
	f.chainTime += seconds
	f.mu.Unlock()
}

func (f *fakeEscrow) CanWrite() bool          { return f.writable }
func (f *fakeEscrow) RelayerAddress() string  { return testRelayer }
func (f *fakeEscrow) ContractAddress() string { return testContract }

func (f *fakeEscrow) ChainTime(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chainTime, nil
}

func (f *fakeEscrow) RegisterServer(ctx context.Context, guildId, adminId string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.servers[guildId]; ok {
		return "", errs.New(errs.KindReverted, "execution reverted: server already registered")
	}
	f.servers[guildId] = &fakeServer{
		adminId:      adminId,
		registeredAt: f.chainTime,
		deposited:    big.NewInt(0),
		spent:        big.NewInt(0),
	}
	return f.nextTx(), nil
}

func (f *fakeEscrow) DepositToServer(ctx context.Context, guildId string, amount *big.Int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	srv, ok := f.servers[guildId]
	if !ok {
		return "", errs.New(errs.KindReverted, "execution reverted: server not registered")
	}
	srv.deposited.Add(srv.deposited, amount)
	return f.nextTx(), nil
}

func (f *fakeEscrow) WithdrawFromServer(ctx context.Context, guildId, to string, amount *big.Int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	srv, ok := f.servers[guildId]
	if !ok {
		return "", errs.New(errs.KindReverted, "execution reverted: server not registered")
	}
	if f.availableLocked(srv).Cmp(amount) < 0 {
		return "", errs.New(errs.KindReverted, "execution reverted: insufficient balance")
	}
	srv.spent.Add(srv.spent, amount)
	return f.nextTx(), nil
}

// 任何时刻 available == deposited - spent
func (f *fakeEscrow) availableLocked(srv *fakeServer) *big.Int {
	return new(big.Int).Sub(srv.deposited, srv.spent)
}

func (f *fakeEscrow) GetServer(ctx context.Context, guildId string) (*model.ServerAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	srv, ok := f.servers[guildId]
	if !ok {
		return &model.ServerAccount{GuildId: guildId}, nil
	}
	return &model.ServerAccount{
		GuildId:          guildId,
		AdminId:          srv.adminId,
		IsActive:         true,
		RegisteredAt:     srv.registeredAt,
		TotalDeposited:   srv.deposited.String(),
		TotalSpent:       srv.spent.String(),
		AvailableBalance: f.availableLocked(srv).String(),
	}, nil
}

func (f *fakeEscrow) GetServerBalance(ctx context.Context, guildId string) (*model.ServerBalance, error) {
	srv, err := f.GetServer(ctx, guildId)
	if err != nil {
		return nil, err
	}
	return &model.ServerBalance{
		TotalDeposited:   srv.TotalDeposited,
		TotalSpent:       srv.TotalSpent,
		AvailableBalance: srv.AvailableBalance,
	}, nil
}

func (f *fakeEscrow) CreateCommitment(ctx context.Context, guildId, contributor, token string, amount *big.Int, deadline, disputeWindow int64, specCid string) (int64, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	srv, ok := f.servers[guildId]
	if !ok {
		return 0, "", errs.New(errs.KindReverted, "execution reverted: server not registered")
	}
	if f.availableLocked(srv).Cmp(amount) < 0 {
		return 0, "", errs.New(errs.KindReverted, "execution reverted: insufficient balance")
	}
	// 创建即记账：金额立刻计入支出，结算不再变动服务器账目
	srv.spent.Add(srv.spent, amount)
	f.commitments = append(f.commitments, &fakeCommitment{
		guildId:       guildId,
		contributor:   contributor,
		token:         token,
		amount:        new(big.Int).Set(amount),
		deadline:      deadline,
		disputeWindow: disputeWindow,
		specCid:       specCid,
		state:         model.StateFunded,
		createdAt:     f.chainTime,
	})
	return int64(len(f.commitments) - 1), f.nextTx(), nil
}

func (f *fakeEscrow) SubmitWork(ctx context.Context, guildId string, commitId int64, evidenceCid string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cm, err := f.commitmentLocked(commitId)
	if err != nil {
		return "", err
	}
	if cm.state != model.StateFunded {
		return "", errs.New(errs.KindReverted, "execution reverted: invalid state")
	}
	cm.state = model.StateSubmitted
	cm.evidenceCid = evidenceCid
	cm.submittedAt = f.chainTime
	return f.nextTx(), nil
}

func (f *fakeEscrow) commitmentLocked(commitId int64) (*fakeCommitment, error) {
	if commitId < 0 || commitId >= int64(len(f.commitments)) {
		return nil, errs.New(errs.KindReverted, "execution reverted: invalid commitment")
	}
	return f.commitments[commitId], nil
}

func (f *fakeEscrow) GetCommitment(ctx context.Context, commitId int64) (*model.Commitment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if commitId < 0 || commitId >= int64(len(f.commitments)) {
		return &model.Commitment{CommitId: commitId, Creator: model.ZeroAddress}, nil
	}
	cm := f.commitments[commitId]
	return &model.Commitment{
		CommitId:      commitId,
		Creator:       testRelayer,
		Contributor:   cm.contributor,
		Token:         cm.token,
		Amount:        cm.amount.String(),
		Deadline:      cm.deadline,
		DisputeWindow: cm.disputeWindow,
		SpecCid:       cm.specCid,
		EvidenceCid:   cm.evidenceCid,
		State:         cm.state,
		StateName:     cm.state.String(),
		CreatedAt:     cm.createdAt,
		SubmittedAt:   cm.submittedAt,
	}, nil
}

func (f *fakeEscrow) CommitmentCount(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.commitments)), nil
}

func (f *fakeEscrow) CommitmentToServer(ctx context.Context, commitId int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cm, err := f.commitmentLocked(commitId)
	if err != nil {
		return "", err
	}
	return cm.guildId, nil
}

func (f *fakeEscrow) OpenDispute(ctx context.Context, guildId string, commitId int64, stake *big.Int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cm, err := f.commitmentLocked(commitId)
	if err != nil {
		return "", err
	}
	if cm.state != model.StateSubmitted {
		return "", errs.New(errs.KindReverted, "execution reverted: invalid state")
	}
	if f.chainTime > cm.submittedAt+cm.disputeWindow {
		return "", errs.New(errs.KindReverted, "execution reverted: dispute window closed")
	}
	cm.state = model.StateDisputed
	f.disputes[commitId] = &model.Dispute{
		CommitId:    commitId,
		Disputer:    testRelayer,
		StakeAmount: stake.String(),
		CreatedAt:   f.chainTime,
	}
	return f.nextTx(), nil
}

func (f *fakeEscrow) GetDispute(ctx context.Context, commitId int64) (*model.Dispute, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.disputes[commitId]; ok {
		copied := *d
		return &copied, nil
	}
	return &model.Dispute{CommitId: commitId, Disputer: model.ZeroAddress}, nil
}

func (f *fakeEscrow) CalculateStake(ctx context.Context, commitId int64) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cm, err := f.commitmentLocked(commitId)
	if err != nil {
		return nil, err
	}
	return MirrorStake(cm.amount, f.baseStake), nil
}

func (f *fakeEscrow) ResolveDispute(ctx context.Context, commitId int64, favorContributor bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.disputes[commitId]
	if !ok || d.Resolved {
		return "", errs.New(errs.KindReverted, "execution reverted: no open dispute")
	}
	d.Resolved = true
	d.FavorContributor = favorContributor
	cm := f.commitments[commitId]
	if favorContributor {
		cm.state = model.StateSettled
	} else {
		cm.state = model.StateRefunded
		// 本金从存入侧退回，deposited与spent保持单调不减
		srv := f.servers[cm.guildId]
		srv.deposited.Add(srv.deposited, cm.amount)
	}
	return f.nextTx(), nil
}

func (f *fakeEscrow) Settle(ctx context.Context, commitId int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.canSettleLocked(commitId) {
		return "", errs.New(errs.KindReverted, "execution reverted: not settlable")
	}
	// 支出在创建时已入账，结算只推进状态
	f.commitments[commitId].state = model.StateSettled
	return f.nextTx(), nil
}

func (f *fakeEscrow) BatchSettle(ctx context.Context, commitIds []int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// 整批原子：先全部校验，再全部落账
	for _, id := range commitIds {
		if !f.canSettleLocked(id) {
			return "", errs.Newf(errs.KindReverted, "execution reverted: commitment %d not settlable", id)
		}
	}
	for _, id := range commitIds {
		f.commitments[id].state = model.StateSettled
	}
	return f.nextTx(), nil
}

func (f *fakeEscrow) canSettleLocked(commitId int64) bool {
	if commitId < 0 || commitId >= int64(len(f.commitments)) {
		return false
	}
	cm := f.commitments[commitId]
	return cm.state == model.StateSubmitted && f.chainTime > cm.submittedAt+cm.disputeWindow
}

func (f *fakeEscrow) CanSettle(ctx context.Context, commitId int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canSettleLocked(commitId), nil
}

func (f *fakeEscrow) RegistrationFee(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(f.regFee), nil
}

func (f *fakeEscrow) BaseStake(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(f.baseStake), nil
}

func (f *fakeEscrow) Arbitrator(ctx context.Context) (string, error) {
	return testArbitrator, nil
}

func (f *fakeEscrow) TokenAddress(ctx context.Context) (string, error) {
	return testToken, nil
}

func (f *fakeEscrow) MaxBatchSize(ctx context.Context) (int, error) {
	return f.maxBatch, nil
}

// fakeStore 记录上传内容的证据存储
type fakeStore struct {
	mu      sync.Mutex
	uploads []string
}

func (s *fakeStore) UploadJSON(ctx context.Context, name string, data interface{}) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, name)
	return fmt.Sprintf("Qm%s", strings.ReplaceAll(name, "-", "")), nil
}

// fakeDirectory 静态用户名目录
type fakeDirectory struct {
	users map[string]string
}

func (d *fakeDirectory) Resolve(username string) (string, error) {
	if addr, ok := d.users[strings.ToLower(username)]; ok {
		return addr, nil
	}
	return "", errs.Newf(errs.KindNotFound, "user %q not found", username)
}
