package logic

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/blues/wcs/internal/errs"
	"github.com/blues/wcs/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommitmentLogic(t *testing.T) (*CommitmentLogic, *fakeEscrow, *fakeStore) {
	t.Helper()
	escrow := newFakeEscrow()
	store := &fakeStore{}
	dir := &fakeDirectory{users: map[string]string{"alice": testContributor}}
	return NewCommitmentLogic(escrow, dir, store, nil, testToken, 18), escrow, store
}

func fundServer(t *testing.T, escrow *fakeEscrow, guildId, tokens string) {
	t.Helper()
	ctx := context.Background()
	_, err := escrow.RegisterServer(ctx, guildId, "admin-1")
	require.NoError(t, err)
	amount, err := ToBaseUnits(tokens, 18)
	require.NoError(t, err)
	_, err = escrow.DepositToServer(ctx, guildId, amount)
	require.NoError(t, err)
}

func TestCreateCommitment(t *testing.T) {
	cl, escrow, store := newTestCommitmentLogic(t)
	fundServer(t, escrow, "guild-1", "1000")
	ctx := context.Background()

	result, err := cl.Create(ctx, &CreateRequest{
		GuildId:      "guild-1",
		Contributor:  "alice",
		AmountTokens: "500",
		Task:         "build the landing page",
		DeadlineDays: 7,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), result.CommitId)
	assert.Equal(t, testContributor, result.Contributor, "username must resolve to wallet address")
	assert.Equal(t, "500000000000000000000", result.Amount)
	assert.NotEmpty(t, result.SpecCid)
	require.Len(t, store.uploads, 1)

	// deadline基于链时间而非本地时钟
	assert.Equal(t, escrow.chainTime+7*86400, result.Deadline)
	assert.Equal(t, int64(7*86400), result.DisputeWindow)

	cm, err := cl.Get(ctx, result.CommitId)
	require.NoError(t, err)
	assert.Equal(t, model.StateFunded, cm.State)

	// 创建原子地扣减可用余额并计入支出
	server, err := escrow.GetServer(ctx, "guild-1")
	require.NoError(t, err)
	assert.Equal(t, "500000000000000000000", server.AvailableBalance)
	assert.Equal(t, "500000000000000000000", server.TotalSpent)
}

func TestCreateCommitmentValidation(t *testing.T) {
	cl, escrow, _ := newTestCommitmentLogic(t)
	fundServer(t, escrow, "guild-1", "1000")
	ctx := context.Background()

	base := CreateRequest{
		GuildId:      "guild-1",
		Contributor:  testContributor,
		AmountTokens: "10",
		Task:         "task",
		DeadlineDays: 1,
	}

	tests := []struct {
		name   string
		mutate func(*CreateRequest)
		kind   errs.Kind
	}{
		{"missing guild", func(r *CreateRequest) { r.GuildId = "" }, errs.KindValidation},
		{"missing task", func(r *CreateRequest) { r.Task = "" }, errs.KindValidation},
		{"zero deadline", func(r *CreateRequest) { r.DeadlineDays = 0 }, errs.KindValidation},
		{"negative deadline", func(r *CreateRequest) { r.DeadlineSeconds = -60 }, errs.KindValidation},
		{"unknown username", func(r *CreateRequest) { r.Contributor = "nobody" }, errs.KindNotFound},
		{"unregistered server", func(r *CreateRequest) { r.GuildId = "guild-x" }, errs.KindNotFound},
		{"insufficient balance", func(r *CreateRequest) { r.AmountTokens = "1001" }, errs.KindInsufficient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := cl.Create(ctx, &req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, errs.KindOf(err))
		})
	}
}

func TestSubmitWork(t *testing.T) {
	cl, escrow, _ := newTestCommitmentLogic(t)
	fundServer(t, escrow, "guild-1", "1000")
	ctx := context.Background()

	created, err := cl.Create(ctx, &CreateRequest{
		GuildId: "guild-1", Contributor: testContributor,
		AmountTokens: "100", Task: "task", DeadlineDays: 7,
	})
	require.NoError(t, err)

	result, err := cl.Submit(ctx, "guild-1", created.CommitId, "done", "https://example.com/pr/1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.EvidenceCid)

	cm, err := cl.Get(ctx, created.CommitId)
	require.NoError(t, err)
	assert.Equal(t, model.StateSubmitted, cm.State)
	assert.Equal(t, escrow.chainTime, cm.SubmittedAt)

	// 重复提交必须报已提交，而不是覆盖
	_, err = cl.Submit(ctx, "guild-1", created.CommitId, "again", "")
	require.Error(t, err)
	assert.Equal(t, errs.KindAlreadyFinal, errs.KindOf(err))
}

func TestCreateCommitmentConcurrentIds(t *testing.T) {
	// 并发创建必须得到互不相同的连续ID，串行化由网关保证
	cl, escrow, _ := newTestCommitmentLogic(t)
	fundServer(t, escrow, "guild-1", "1000")
	ctx := context.Background()

	const n = 10
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := cl.Create(ctx, &CreateRequest{
				GuildId: "guild-1", Contributor: testContributor,
				AmountTokens: "1", Task: "task", DeadlineDays: 1,
			})
			if err != nil {
				t.Error(err)
				return
			}
			ids <- result.CommitId
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate commit id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestIndexCompleteness(t *testing.T) {
	// 索引行数少于链上承诺总数说明有漏写，快路径不可信
	assert.True(t, indexComplete(0, 0))
	assert.True(t, indexComplete(3, 3))
	assert.True(t, indexComplete(4, 3))
	assert.False(t, indexComplete(2, 3))
	assert.False(t, indexComplete(0, 1))
}

func TestSubmitWorkUnknownCommitment(t *testing.T) {
	cl, _, _ := newTestCommitmentLogic(t)

	_, err := cl.Submit(context.Background(), "guild-1", 42, "done", "")
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestListByServerScansChain(t *testing.T) {
	// db为nil，必然走全量扫描路径
	cl, escrow, _ := newTestCommitmentLogic(t)
	fundServer(t, escrow, "guild-1", "1000")
	fundServer(t, escrow, "guild-2", "1000")
	ctx := context.Background()

	for _, guild := range []string{"guild-1", "guild-2", "guild-1"} {
		_, err := cl.Create(ctx, &CreateRequest{
			GuildId: guild, Contributor: testContributor,
			AmountTokens: "10", Task: "task", DeadlineDays: 1,
		})
		require.NoError(t, err)
	}

	list, err := cl.ListByServer(ctx, "guild-1", "all")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = cl.ListByServer(ctx, "guild-2", "all")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = cl.ListByServer(ctx, "guild-1", "bogus")
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestListByContributorFilters(t *testing.T) {
	cl, escrow, _ := newTestCommitmentLogic(t)
	fundServer(t, escrow, "guild-1", "1000")
	ctx := context.Background()

	first, err := cl.Create(ctx, &CreateRequest{
		GuildId: "guild-1", Contributor: testContributor,
		AmountTokens: "10", Task: "task a", DeadlineDays: 1,
	})
	require.NoError(t, err)
	_, err = cl.Create(ctx, &CreateRequest{
		GuildId: "guild-1", Contributor: testContributor,
		AmountTokens: "10", Task: "task b", DeadlineDays: 1,
	})
	require.NoError(t, err)

	_, err = cl.Submit(ctx, "guild-1", first.CommitId, "done", "")
	require.NoError(t, err)

	all, err := cl.ListByContributor(ctx, testContributor, "all")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// 大小写不同的地址也要匹配
	mixed, err := cl.ListByContributor(ctx, strings.ToLower(testContributor), "active")
	require.NoError(t, err)
	assert.Len(t, mixed, 2)

	// 结算后退出active
	escrow.advance(2 * 86400)
	_, err = escrow.Settle(ctx, first.CommitId)
	require.NoError(t, err)

	active, err := cl.ListByContributor(ctx, testContributor, "active")
	require.NoError(t, err)
	assert.Len(t, active, 1)

	completed, err := cl.ListByContributor(ctx, testContributor, "completed")
	require.NoError(t, err)
	assert.Len(t, completed, 1)
}
